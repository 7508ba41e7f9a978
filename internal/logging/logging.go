// Package logging builds the slog.Logger used across the demo binaries,
// the one ambient concern every component threads through its constructors
// (nil logger -> slog.Default()).
package logging

import (
	"log"
	"log/slog"
	"os"

	"github.com/ruslanhut/ocpp-engine/internal/config"
)

// New builds a text- or JSON-handler logger per cfg.Logging, writing to
// stdout, stderr, or a file path.
func New(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	var out *os.File
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("logging: opening log file %s: %v", cfg.Output, err)
		}
		out = f
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}
