// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the client needs to run a session.
type Config struct {
	Env string `env:"CODERUSH_ENV" envDefault:"development"`

	Server Server
	Game   Game
	Store  Store
	Log    Log
}

// Server describes the backend.
type Server struct {
	// URL is the backend root; the client adds the /api prefix.
	URL            string        `env:"CODERUSH_SERVER_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"CODERUSH_REQUEST_TIMEOUT" envDefault:"60s"`
}

// Game tunes the session flow.
type Game struct {
	Nickname      string        `env:"CODERUSH_NICKNAME"`
	SettleDelay   time.Duration `env:"CODERUSH_SETTLE_DELAY" envDefault:"1s"`
	UseGeneration bool          `env:"CODERUSH_USE_GENERATION" envDefault:"false"`
	PollInterval  time.Duration `env:"CODERUSH_POLL_INTERVAL" envDefault:"3s"`
	MaxPolls      int           `env:"CODERUSH_MAX_POLLS" envDefault:"0"`
}

// Store locates the session history database. An empty path means the
// default per-user location.
type Store struct {
	DBPath string `env:"CODERUSH_DB"`
}

// Log configures the logger. File "-" logs to stderr.
type Log struct {
	File  string `env:"CODERUSH_LOG_FILE"`
	Level string `env:"CODERUSH_LOG_LEVEL" envDefault:"info"`
}

// DefaultConfig returns the envDefault values, ignoring the process
// environment.
func DefaultConfig() *Config {
	cfg := &Config{}
	// The defaults are literals in the tags above; parsing them cannot fail.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: bad default: %v", err))
	}
	return cfg
}

// Load reads an optional .env file from the working directory and the
// environment, applies overrides in order, then validates the result.
// Variables already set take precedence over .env.
func Load(overrides ...func(*Config)) (*Config, error) {
	cfg, err := LoadFiles(".env")
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFiles parses dotenv files and the environment without validating.
// Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid server url %q", c.Server.URL)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Game.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Game.PollInterval)
	}
	if c.Game.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %s", c.Game.SettleDelay)
	}
	if c.Game.MaxPolls < 0 {
		return fmt.Errorf("max polls must not be negative, got %d", c.Game.MaxPolls)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// IsProduction reports whether CODERUSH_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
