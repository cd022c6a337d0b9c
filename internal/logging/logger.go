// Package logging builds the process logger.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Stderr is the File value that sends logs to the terminal.
const Stderr = "-"

// Options configures New.
type Options struct {
	App   string
	Env   string
	Level string

	// Production turns off console colors.
	Production bool

	// File is the log file path, Stderr for console output, or empty to
	// discard logs.
	File string
}

// New builds a structured logger. File output is JSON and rotated; console
// output is human readable. The returned closer flushes the file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch opts.File {
	case "":
		return zerolog.Nop(), closer, nil
	case Stderr:
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
			NoColor:    opts.Production,
		}
	default:
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), closer, err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out = rotator
		closer = rotator
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", opts.App).
		Str("env", opts.Env).
		Logger()
	return logger, closer, nil
}

// DefaultFile returns the per-user log file path.
func DefaultFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "coderush", "coderush.log"), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type loggerKey struct{}

// IntoContext injects a logger into context for downstream use.
func IntoContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return zerolog.Nop()
	}
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}
