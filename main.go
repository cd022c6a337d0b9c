package main

import (
	"os"

	"github.com/abhisek/coderush/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
