package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/gateway"
	"github.com/abhisek/coderush/internal/logging"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/poll"
	"github.com/abhisek/coderush/internal/problem"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Register a player and print a problem set without the UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyPlayFlags(cmd)
		asJSON, _ := cmd.Flags().GetBool("json")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		nickname := rt.cfg.Game.Nickname
		if nickname == "" {
			nickname = "coderush-cli"
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		problems, err := fetchProblemSet(ctx, nickname)
		if err != nil {
			return err
		}
		if asJSON {
			return printProblemsJSON(cmd.OutOrStdout(), problems)
		}
		printProblems(cmd.OutOrStdout(), problems)
		return nil
	},
}

func init() {
	addPlayFlags(fetchCmd)
	fetchCmd.Flags().Bool("json", false, "Print the normalized problems as JSON")
	fetchCmd.Flags().Duration("timeout", 2*time.Minute, "Give up when no set arrives within this time")
}

// fetchProblemSet runs a headless session on its own loop until a set is
// loaded, acquisition fails or ctx expires.
func fetchProblemSet(ctx context.Context, nickname string) ([]problem.Problem, error) {
	cfg := rt.cfg
	logger := logging.FromContext(ctx)

	l := loop.New()
	client := api.NewClient(cfg.Server.URL, api.Options{
		Timeout: cfg.Server.RequestTimeout,
		Logger:  logger.With().Str("component", "api").Logger(),
		Metrics: rt.metrics,
	})
	logger.Debug().Str("api", client.BaseURL()).Msg("fetching problem set")

	gw := gateway.NewAsync(client, l, gateway.Options{
		Timeout: cfg.Server.RequestTimeout,
		Logger:  logger.With().Str("component", "gateway").Logger(),
	})
	defer gw.Close()

	orch := game.New(game.Deps{
		Gateway:   gw,
		Scheduler: loop.NewTimers(l),
		Phases:    phase.NewController(nil, logger.With().Str("component", "phase").Logger()),
		Logger:    logger.With().Str("component", "game").Logger(),
		Metrics:   rt.metrics,
	}, game.Config{
		SettleDelay:   cfg.Game.SettleDelay,
		UseGeneration: cfg.Game.UseGeneration,
		Poll: poll.Config{
			Interval: cfg.Game.PollInterval,
			MaxPolls: cfg.Game.MaxPolls,
		},
	})

	var (
		problems []problem.Problem
		failure  error
	)
	bus := orch.Events()
	bus.ProblemSetLoaded.Subscribe(func(events.ProblemSetLoaded) {
		problems = orch.Problems()
		l.Stop()
	})
	bus.Failure.Subscribe(func(f events.Failure) {
		failure = fmt.Errorf("%s failed: %w", f.Op, f.Err)
		l.Stop()
	})

	l.Dispatch(func() {
		if err := orch.StartSession(nickname); err != nil {
			failure = err
			l.Stop()
		}
	})

	if err := l.Run(ctx); err != nil {
		return nil, fmt.Errorf("waiting for problem set: %w", err)
	}
	if failure != nil {
		return nil, failure
	}
	return problems, nil
}

func printProblems(w io.Writer, problems []problem.Problem) {
	for i, p := range problems {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "#%d  [%s] %s\n", p.ID, p.Category, p.Title)
		if p.Description != "" {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(p.Description, "\n", "\n    "))
		}
		if p.TargetSnippet != "" {
			fmt.Fprintln(w, "    ---")
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(p.TargetSnippet, "\n", "\n    "))
			fmt.Fprintln(w, "    ---")
		}
		for j, c := range p.Choices {
			fmt.Fprintf(w, "    %c) %s\n", 'A'+j, c)
		}
	}
	fmt.Fprintf(w, "\n%d problem(s)\n", len(problems))
}

func printProblemsJSON(w io.Writer, problems []problem.Problem) error {
	raw := make([]json.RawMessage, 0, len(problems))
	for _, p := range problems {
		raw = append(raw, p.Raw())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}
