// Package deepgram provides a Deepgram prerecorded-audio STT adapter.
package deepgram

import (
	"context"
	"fmt"

	listenv1 "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"voice-agent-bridge/internal/transcript"
)

// Adapter implements stt.Adapter using the Deepgram prerecorded REST API.
type Adapter struct {
	client *listenv1.Client
	model  string
}

// New creates a Deepgram adapter. The model selects the recognition model
// ("nova-2" by default upstream).
func New(apiKey, model string) *Adapter {
	c := listen.NewREST(apiKey, &interfaces.ClientOptions{})
	return &Adapter{client: listenv1.New(c), model: model}
}

func (a *Adapter) Provider() string { return "deepgram" }

// TranscribeFile submits the audio file and returns word-level timings.
// The input is mono, so only the first response channel is consumed.
func (a *Adapter) TranscribeFile(ctx context.Context, path string) ([]transcript.Word, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       a.model,
		Punctuate:   true,
		SmartFormat: true,
	}

	res, err := a.client.FromFile(ctx, path, options)
	if err != nil {
		return nil, fmt.Errorf("deepgram transcription: %w", err)
	}
	if res == nil || len(res.Results.Channels) == 0 {
		return nil, nil
	}

	channel := res.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return nil, nil
	}

	alt := channel.Alternatives[0]
	words := make([]transcript.Word, 0, len(alt.Words))
	for _, w := range alt.Words {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		words = append(words, transcript.Word{
			Start: w.Start,
			End:   w.End,
			Text:  text,
		})
	}
	return words, nil
}
