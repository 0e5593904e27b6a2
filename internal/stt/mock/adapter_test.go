package mock

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"voice-agent-bridge/internal/transcript"
)

func TestAdapter_Fallback(t *testing.T) {
	a := New()

	words, err := a.TranscribeFile(context.Background(), "/tmp/any.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(words, DefaultWords) {
		t.Errorf("expected default words, got %v", words)
	}
}

func TestAdapter_PerPathWords(t *testing.T) {
	a := New()
	agentWords := []transcript.Word{{Start: 0.0, End: 0.3, Text: "Hi"}}
	a.SetWords("/tmp/agent.wav", agentWords)

	words, err := a.TranscribeFile(context.Background(), "/tmp/agent.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(words, agentWords) {
		t.Errorf("expected configured words, got %v", words)
	}

	calls := a.Calls()
	if len(calls) != 1 || calls[0] != "/tmp/agent.wav" {
		t.Errorf("expected recorded call, got %v", calls)
	}
}

func TestAdapter_Error(t *testing.T) {
	a := New()
	boom := errors.New("provider unavailable")
	a.SetError(boom)

	if _, err := a.TranscribeFile(context.Background(), "x.wav"); !errors.Is(err, boom) {
		t.Errorf("expected configured error, got %v", err)
	}
}

func TestAdapter_CancelledContext(t *testing.T) {
	a := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.TranscribeFile(ctx, "x.wav"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
