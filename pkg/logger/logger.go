// Package logger builds the process-wide slog.Logger and provides the
// attribute helpers used across domain packages.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"
)

// Module provides the shared logger.
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)

// NewLogger constructs a slog.Logger from LOG_LEVEL and GO_ENV.
// Production environments get JSON output, everything else text.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Scope returns the component-scope attribute attached via log.With.
func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Error returns the standard error attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
