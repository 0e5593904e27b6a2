// Package transcript turns word-level speech-to-text output into a
// chronological, speaker-labeled call transcript.
package transcript

import (
	"math"
	"sort"
	"strings"
)

// Speaker identifies which side of the call produced an utterance.
type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerHuman Speaker = "human"
)

// Label returns the display label used in flattened transcripts.
func (s Speaker) Label() string {
	switch s {
	case SpeakerAgent:
		return "Agent"
	case SpeakerHuman:
		return "Caller"
	default:
		return string(s)
	}
}

// Word is a single recognized word with its timing, as returned by a
// speech-to-text provider.
type Word struct {
	Start float64
	End   float64
	Text  string
}

// Segment is one contiguous utterance by one speaker.
type Segment struct {
	Speaker Speaker `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// DefaultGapSeconds is the silence gap that closes an utterance. A new
// segment starts only when the gap to the next word strictly exceeds it.
const DefaultGapSeconds = 1.0

// GroupWords groups word timings into segments for one channel using a
// greedy single pass: the first word opens a segment, and each subsequent
// word either extends it or, when word.Start - segment.End > gapSeconds,
// closes it and opens a new one. Word text is space-joined.
func GroupWords(words []Word, speaker Speaker, gapSeconds float64) []Segment {
	if gapSeconds <= 0 {
		gapSeconds = DefaultGapSeconds
	}
	if len(words) == 0 {
		return nil
	}

	var segments []Segment
	current := Segment{
		Speaker: speaker,
		Start:   words[0].Start,
		End:     words[0].End,
		Text:    words[0].Text,
	}

	for _, w := range words[1:] {
		if w.Start-current.End > gapSeconds {
			segments = append(segments, current)
			current = Segment{Speaker: speaker, Start: w.Start, End: w.End, Text: w.Text}
			continue
		}
		current.End = w.End
		current.Text = current.Text + " " + w.Text
	}

	return append(segments, current)
}

// Merge interleaves the agent and human segment sequences into one
// transcript: deduplicated, sorted by start time, with adjacent
// same-speaker segments closer than gapSeconds merged into a single turn.
//
// Duplicates are segments whose start and end (rounded to 2 decimals) and
// trimmed text all match; the first occurrence in agent-then-human order
// wins. Ties on start time sort agent before human, then by end time, so
// the output is deterministic regardless of input order.
//
// Merge is idempotent: running it on its own output is a no-op.
func Merge(agent, human []Segment, gapSeconds float64) []Segment {
	if gapSeconds <= 0 {
		gapSeconds = DefaultGapSeconds
	}

	combined := make([]Segment, 0, len(agent)+len(human))
	combined = append(combined, agent...)
	combined = append(combined, human...)

	type key struct {
		start, end float64
		text       string
	}
	seen := make(map[key]struct{}, len(combined))
	deduped := combined[:0]
	for _, s := range combined {
		k := key{round2(s.Start), round2(s.End), strings.TrimSpace(s.Text)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, s)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Speaker != b.Speaker {
			return a.Speaker == SpeakerAgent
		}
		return a.End < b.End
	})

	var merged []Segment
	for _, s := range deduped {
		if n := len(merged); n > 0 {
			prev := &merged[n-1]
			if prev.Speaker == s.Speaker && s.Start-prev.End < gapSeconds {
				prev.Text = prev.Text + " " + s.Text
				if s.End > prev.End {
					prev.End = s.End
				}
				continue
			}
		}
		merged = append(merged, s)
	}

	return merged
}

// Flatten renders a transcript as readable dialogue, one turn per line.
func Flatten(segments []Segment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.Speaker.Label())
		b.WriteString(": ")
		b.WriteString(s.Text)
	}
	return b.String()
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
