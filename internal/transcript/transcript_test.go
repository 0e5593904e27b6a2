package transcript

import (
	"reflect"
	"testing"
)

func TestGroupWords_Empty(t *testing.T) {
	if got := GroupWords(nil, SpeakerAgent, 1.0); got != nil {
		t.Errorf("expected nil for no words, got %v", got)
	}
}

func TestGroupWords_SingleSegment(t *testing.T) {
	words := []Word{
		{Start: 0.0, End: 0.3, Text: "Hi"},
		{Start: 0.4, End: 0.7, Text: "there"},
	}

	got := GroupWords(words, SpeakerAgent, 1.0)
	want := []Segment{{Speaker: SpeakerAgent, Start: 0.0, End: 0.7, Text: "Hi there"}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGroupWords_GapBoundary(t *testing.T) {
	// A new segment starts iff the gap is strictly greater than the threshold.
	tests := []struct {
		name     string
		words    []Word
		segments int
	}{
		{
			name: "gap exactly at threshold stays in segment",
			words: []Word{
				{Start: 0.0, End: 1.0, Text: "one"},
				{Start: 2.0, End: 2.5, Text: "two"},
			},
			segments: 1,
		},
		{
			name: "gap above threshold splits",
			words: []Word{
				{Start: 0.0, End: 1.0, Text: "one"},
				{Start: 2.01, End: 2.5, Text: "two"},
			},
			segments: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupWords(tt.words, SpeakerHuman, 1.0)
			if len(got) != tt.segments {
				t.Errorf("expected %d segments, got %d: %v", tt.segments, len(got), got)
			}
		})
	}
}

func TestGroupWords_Deterministic(t *testing.T) {
	words := []Word{
		{Start: 0.0, End: 0.5, Text: "hello"},
		{Start: 0.6, End: 0.9, Text: "world"},
		{Start: 2.5, End: 3.0, Text: "again"},
	}

	first := GroupWords(words, SpeakerAgent, 1.0)
	for i := 0; i < 10; i++ {
		if got := GroupWords(words, SpeakerAgent, 1.0); !reflect.DeepEqual(got, first) {
			t.Fatalf("grouping not deterministic: run %d got %v, want %v", i, got, first)
		}
	}

	if len(first) != 2 {
		t.Errorf("expected 2 segments, got %d", len(first))
	}
}

func TestMerge_FullConversation(t *testing.T) {
	agentWords := []Word{
		{Start: 0.0, End: 0.3, Text: "Hi"},
		{Start: 0.4, End: 0.7, Text: "there"},
	}
	humanWords := []Word{
		{Start: 0.5, End: 0.9, Text: "Hello"},
	}

	agent := GroupWords(agentWords, SpeakerAgent, 1.0)
	human := GroupWords(humanWords, SpeakerHuman, 1.0)

	got := Merge(agent, human, 1.0)
	want := []Segment{
		{Speaker: SpeakerAgent, Start: 0.0, End: 0.7, Text: "Hi there"},
		{Speaker: SpeakerHuman, Start: 0.5, End: 0.9, Text: "Hello"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMerge_Dedup(t *testing.T) {
	dup := Segment{Speaker: SpeakerAgent, Start: 1.0, End: 2.0, Text: "same thing"}
	trimmed := Segment{Speaker: SpeakerAgent, Start: 1.001, End: 2.004, Text: "  same thing  "}

	got := Merge([]Segment{dup, trimmed}, nil, 1.0)
	if len(got) != 1 {
		t.Fatalf("expected 1 segment after dedup, got %d: %v", len(got), got)
	}
	if got[0].Text != "same thing" {
		t.Errorf("expected first occurrence to win, got %q", got[0].Text)
	}
}

func TestMerge_OrderingInvariant(t *testing.T) {
	agent := []Segment{
		{Speaker: SpeakerAgent, Start: 10.0, End: 11.0, Text: "later"},
		{Speaker: SpeakerAgent, Start: 0.0, End: 0.5, Text: "first"},
	}
	human := []Segment{
		{Speaker: SpeakerHuman, Start: 5.0, End: 6.0, Text: "middle"},
		{Speaker: SpeakerHuman, Start: 10.0, End: 10.5, Text: "tied"},
	}

	got := Merge(agent, human, 1.0)
	for i := 1; i < len(got); i++ {
		if got[i-1].Start > got[i].Start {
			t.Errorf("output not sorted at %d: %v", i, got)
		}
	}
}

func TestMerge_TieBreakAgentFirst(t *testing.T) {
	agent := []Segment{{Speaker: SpeakerAgent, Start: 3.0, End: 4.0, Text: "a"}}
	human := []Segment{{Speaker: SpeakerHuman, Start: 3.0, End: 3.5, Text: "h"}}

	// Input order must not matter.
	got := Merge(agent, human, 1.0)
	if got[0].Speaker != SpeakerAgent {
		t.Errorf("expected agent first on start-time tie, got %v", got)
	}
}

func TestMerge_SameSpeakerTurns(t *testing.T) {
	agent := []Segment{
		{Speaker: SpeakerAgent, Start: 0.0, End: 1.0, Text: "how can"},
		{Speaker: SpeakerAgent, Start: 1.5, End: 2.0, Text: "I help"},
		{Speaker: SpeakerAgent, Start: 5.0, End: 6.0, Text: "hello?"},
	}

	got := Merge(agent, nil, 1.0)
	want := []Segment{
		{Speaker: SpeakerAgent, Start: 0.0, End: 2.0, Text: "how can I help"},
		{Speaker: SpeakerAgent, Start: 5.0, End: 6.0, Text: "hello?"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	agent := []Segment{
		{Speaker: SpeakerAgent, Start: 0.0, End: 0.7, Text: "Hi there"},
		{Speaker: SpeakerAgent, Start: 1.2, End: 1.8, Text: "how are you"},
	}
	human := []Segment{
		{Speaker: SpeakerHuman, Start: 0.5, End: 0.9, Text: "Hello"},
		{Speaker: SpeakerHuman, Start: 2.5, End: 3.1, Text: "fine thanks"},
	}

	once := Merge(agent, human, 1.0)

	var agentOut, humanOut []Segment
	for _, s := range once {
		if s.Speaker == SpeakerAgent {
			agentOut = append(agentOut, s)
		} else {
			humanOut = append(humanOut, s)
		}
	}
	twice := Merge(agentOut, humanOut, 1.0)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\n once: %v\ntwice: %v", once, twice)
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, nil, 1.0); got != nil {
		t.Errorf("expected nil transcript for empty inputs, got %v", got)
	}
}

func TestFlatten(t *testing.T) {
	segs := []Segment{
		{Speaker: SpeakerAgent, Start: 0.0, End: 0.7, Text: "Hi there"},
		{Speaker: SpeakerHuman, Start: 0.5, End: 0.9, Text: "Hello"},
	}

	got := Flatten(segs)
	want := "Agent: Hi there\nCaller: Hello"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if Flatten(nil) != "" {
		t.Error("expected empty string for empty transcript")
	}
}
