package app

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/config"
)

// NewLogger builds the application logger. Format "console" gives
// human-readable output; anything else is JSON. An unknown level means info.
func NewLogger(cfg config.LoggingConfig, out io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	return &logger
}
