package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:         "play",
	Short:       "Start a game in the terminal UI",
	Annotations: map[string]string{annotationTUI: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

// addPlayFlags registers the flags shared by the root and play commands.
func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("nickname", "n", "", "Nickname to play as; skips the lobby (overrides CODERUSH_NICKNAME)")
	cmd.Flags().Bool("generate", false, "Ask the server to generate a fresh problem set instead of the ready-made one")
}

// applyPlayFlags copies play flags into the loaded config and reports
// whether a nickname was given on the command line.
func applyPlayFlags(cmd *cobra.Command) (nicknameFlag bool) {
	if v, _ := cmd.Flags().GetString("nickname"); v != "" {
		rt.cfg.Game.Nickname = v
		nicknameFlag = true
	}
	if cmd.Flags().Changed("generate") {
		rt.cfg.Game.UseGeneration, _ = cmd.Flags().GetBool("generate")
	}
	return nicknameFlag
}
