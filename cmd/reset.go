package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coderush/internal/logging"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the local session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Fprint(cmd.OutOrStdout(), "Delete all recorded sessions? Type 'yes' to confirm: ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.SessionRepo().Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		logging.FromContext(cmd.Context()).Info().Int64("sessions", n).Msg("history cleared")
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d session(s).\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
