// Package stt defines the interface for batch speech-to-text providers.
package stt

import (
	"context"

	"github.com/rs/zerolog/log"

	"voice-agent-bridge/internal/transcript"
)

// Adapter transcribes a mono audio file into word-level timings.
// Implementations exist per provider (Deepgram, Google, mock).
type Adapter interface {
	// TranscribeFile reads the audio file at path and returns recognized
	// words in chronological order.
	TranscribeFile(ctx context.Context, path string) ([]transcript.Word, error)

	// Provider returns the provider name used in logs and metrics.
	Provider() string
}

// Noop is the adapter used when no transcription credential is configured.
// It returns no words and no error: a missing credential is a deployment
// choice, not a runtime fault.
type Noop struct {
	reason string
}

// NewNoop creates a no-op adapter. The reason is logged once per call so
// operators can tell why transcripts come back empty.
func NewNoop(reason string) *Noop {
	return &Noop{reason: reason}
}

func (n *Noop) Provider() string { return "none" }

func (n *Noop) TranscribeFile(_ context.Context, path string) ([]transcript.Word, error) {
	log.Debug().Str("path", path).Str("reason", n.reason).Msg("transcription skipped")
	return nil, nil
}
