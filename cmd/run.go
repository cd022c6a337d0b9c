package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/coderush/internal/app"
	"github.com/abhisek/coderush/internal/logging"
)

// runApp opens the store and launches the terminal UI.
func runApp(cmd *cobra.Command) error {
	autoStart := applyPlayFlags(cmd)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := logging.FromContext(cmd.Context())
	logger.Info().
		Str("server", rt.cfg.Server.URL).
		Bool("generate", rt.cfg.Game.UseGeneration).
		Msg("starting terminal ui")

	return app.Run(app.Options{
		Config:    rt.cfg,
		Logger:    logger,
		Metrics:   rt.metrics,
		History:   st.SessionRepo(),
		AutoStart: autoStart,
	})
}
