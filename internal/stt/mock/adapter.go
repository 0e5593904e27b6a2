// Package mock provides a deterministic STT adapter for testing without
// cloud credentials. Word timings are canned, keyed by file path.
package mock

import (
	"context"
	"sync"

	"voice-agent-bridge/internal/transcript"
)

// DefaultWords is a short sample conversation turn used when no per-path
// words have been configured.
var DefaultWords = []transcript.Word{
	{Start: 0.0, End: 0.4, Text: "Thanks"},
	{Start: 0.5, End: 0.8, Text: "for"},
	{Start: 0.9, End: 1.3, Text: "calling"},
	{Start: 2.8, End: 3.2, Text: "Goodbye"},
}

// Adapter implements stt.Adapter with canned responses.
type Adapter struct {
	mu       sync.Mutex
	byPath   map[string][]transcript.Word
	fallback []transcript.Word
	err      error
	calls    []string
}

// New creates a mock adapter that returns DefaultWords for every file.
func New() *Adapter {
	return &Adapter{
		byPath:   make(map[string][]transcript.Word),
		fallback: DefaultWords,
	}
}

func (a *Adapter) Provider() string { return "mock" }

// SetWords configures the words returned for a specific file path.
func (a *Adapter) SetWords(path string, words []transcript.Word) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byPath[path] = words
}

// SetFallback configures the words returned for unconfigured paths.
func (a *Adapter) SetFallback(words []transcript.Word) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fallback = words
}

// SetError makes every subsequent TranscribeFile call fail with err.
func (a *Adapter) SetError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// Calls returns the file paths transcribed so far, in order.
func (a *Adapter) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	copy(out, a.calls)
	return out
}

func (a *Adapter) TranscribeFile(ctx context.Context, path string) ([]transcript.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, path)

	if a.err != nil {
		return nil, a.err
	}
	if words, ok := a.byPath[path]; ok {
		return words, nil
	}
	return a.fallback, nil
}
