package audio

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestBuildArgs(t *testing.T) {
	got := buildArgs("/tmp/in.ogg", "/tmp/agent.wav", "FL")
	want := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", "/tmp/in.ogg",
		"-af", "pan=mono|c0=FL",
		"-ar", "16000",
		"-ac", "1",
		"/tmp/agent.wav",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSplit_OutputPaths(t *testing.T) {
	// "true" exits zero without reading the input, which is enough to
	// verify the path wiring without requiring ffmpeg on the test host.
	s := NewSplitter("true", zerolog.Nop())
	dir := t.TempDir()

	agent, human, err := s.Split(context.Background(), "/tmp/in.ogg", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent != filepath.Join(dir, "agent.wav") {
		t.Errorf("unexpected agent path: %s", agent)
	}
	if human != filepath.Join(dir, "caller.wav") {
		t.Errorf("unexpected human path: %s", human)
	}
}

func TestSplit_NonZeroExit(t *testing.T) {
	s := NewSplitter("false", zerolog.Nop())

	_, _, err := s.Split(context.Background(), "/tmp/in.ogg", t.TempDir())
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	var splitErr *SplitError
	if !errors.As(err, &splitErr) {
		t.Errorf("expected SplitError, got %T: %v", err, err)
	}
}

func TestSplit_CancelledContext(t *testing.T) {
	s := NewSplitter("sleep", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Split(ctx, "10", t.TempDir())
	if err == nil {
		t.Fatal("expected error when context is cancelled")
	}
}

func TestNewSplitter_DefaultBin(t *testing.T) {
	s := NewSplitter("", zerolog.Nop())
	if s.binPath != "ffmpeg" {
		t.Errorf("expected default bin 'ffmpeg', got %q", s.binPath)
	}
}
