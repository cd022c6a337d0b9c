package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/coderush/internal/config"
	"github.com/abhisek/coderush/internal/logging"
	"github.com/abhisek/coderush/internal/metrics"
	"github.com/abhisek/coderush/internal/store"
)

// annotationTUI marks commands that run the terminal UI.
const annotationTUI = "coderush/tui"

var rootCmd = &cobra.Command{
	Use:   "coderush",
	Short: "Terminal coding-quiz client",
	Long:  "CodeRush: a terminal client for the coding challenge server: spot bugs, pick answers, track your runs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	Annotations:  map[string]string{annotationTUI: "true"},
	SilenceUsage: true,
}

// rt is what setup builds for every command.
var rt struct {
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	metrics   *metrics.Set
	server    *http.Server
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides CODERUSH_DB env var)")
	flags.String("server", "", "Backend base URL (overrides CODERUSH_SERVER_URL)")
	flags.String("log-file", "", `Log file path, "-" for stderr (overrides CODERUSH_LOG_FILE)`)
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error (overrides CODERUSH_LOG_LEVEL)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides and builds the logger
// and metrics.
func setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(func(c *config.Config) {
		if v, _ := flags.GetString("server"); v != "" {
			c.Server.URL = v
		}
		if v, _ := flags.GetString("log-file"); v != "" {
			c.Log.File = v
		}
		if v, _ := flags.GetString("log-level"); v != "" {
			c.Log.Level = v
		}
		if v, _ := flags.GetString("db"); v != "" {
			c.Store.DBPath = v
		}
	})
	if err != nil {
		return err
	}
	// The terminal UI owns the screen, so its logs default to a file.
	if cfg.Log.File == "" && cmd.Annotations[annotationTUI] == "true" {
		if f, err := logging.DefaultFile(); err == nil {
			cfg.Log.File = f
		}
	}

	logger, closer, err := logging.New(logging.Options{
		App:        "coderush",
		Env:        cfg.Env,
		Production: cfg.IsProduction(),
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	rt.cfg = cfg
	rt.logger = logger.With().Str("command", cmd.Name()).Logger()
	rt.logCloser = closer
	rt.metrics = metrics.New(reg)
	cmd.SetContext(logging.IntoContext(cmd.Context(), rt.logger))

	if addr, _ := flags.GetString("metrics-addr"); addr != "" {
		return serveMetrics(addr, reg)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	rt.server = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	rt.logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	return nil
}

func teardown() error {
	if rt.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rt.server.Shutdown(ctx)
		rt.server = nil
	}
	if rt.logCloser != nil {
		return rt.logCloser.Close()
	}
	return nil
}

// resolveDBPath returns the database path using --db / CODERUSH_DB first,
// then the default XDG path.
func resolveDBPath() (string, error) {
	if p := rt.cfg.Store.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the session history database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
