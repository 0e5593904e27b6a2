// Package logging provides structured logging with zerolog.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, etc.
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global zerolog logger.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

// WithRun returns a logger with pipeline-run context.
func WithRun(runId, roomName, egressId string) zerolog.Logger {
	return log.With().
		Str("runId", runId).
		Str("roomName", roomName).
		Str("egressId", egressId).
		Logger()
}

// WithStage returns a logger with stage context within a run.
func WithStage(runId, stage string) zerolog.Logger {
	return log.With().
		Str("runId", runId).
		Str("stage", stage).
		Logger()
}

// WithChannel returns a logger with per-channel transcription context.
func WithChannel(runId, channel, provider string) zerolog.Logger {
	return log.With().
		Str("runId", runId).
		Str("channel", channel).
		Str("sttProvider", provider).
		Logger()
}
