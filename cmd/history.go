package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coderush/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		showMissed, _ := cmd.Flags().GetBool("missed")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.SessionRepo().RecentSessions(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		printHistory(cmd.OutOrStdout(), records, showMissed)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show (0 for all)")
	historyCmd.Flags().BoolP("missed", "m", false, "List the problems missed in each session")
}

func printHistory(w io.Writer, records []store.SessionRecord, showMissed bool) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-16s  %-16s  %-8s  %-8s  %-6s  %s\n",
		"Seq", "Finished", "Nickname", "Score", "Accuracy", "Time", "Session")
	fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, r := range records {
		dur := r.FinishedAt.Sub(r.StartedAt)
		if dur < 0 {
			dur = 0
		}
		nickname := r.Nickname
		if len(nickname) > 16 {
			nickname = nickname[:16]
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-16s  %-8s  %7.0f%%  %-6s  %s\n",
			r.Sequence,
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
			nickname,
			fmt.Sprintf("%d/%d", r.Correct, r.Total),
			r.Accuracy()*100,
			fmt.Sprintf("%d:%02d", int(dur.Minutes()), int(dur.Seconds())%60),
			r.SessionID,
		)
		if showMissed {
			for _, p := range r.Missed {
				fmt.Fprintf(w, "       ✗ #%d %s (%s)\n", p.ID, p.Title, p.Category)
			}
		}
	}
}
