package app

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the base logger. An unknown level falls back to info.
func NewLogger(service, level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// NewConsoleLogger is NewLogger with human readable output for CLIs.
func NewConsoleLogger(service, level string, w io.Writer) zerolog.Logger {
	return NewLogger(service, level, zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
}
