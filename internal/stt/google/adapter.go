// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"fmt"
	"os"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"voice-agent-bridge/internal/transcript"
)

// Adapter implements stt.Adapter using Google Cloud Speech-to-Text batch
// recognition with word time offsets enabled.
type Adapter struct {
	client       *speech.Client
	languageCode string
	sampleRateHz int32
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, languageCode string, sampleRateHz int32) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Adapter{
		client:       c,
		languageCode: languageCode,
		sampleRateHz: sampleRateHz,
	}, nil
}

func (a *Adapter) Provider() string { return "google" }

// TranscribeFile runs synchronous recognition on the audio file and
// returns word-level timings from the top alternative of each result.
func (a *Adapter) TranscribeFile(ctx context.Context, path string) ([]transcript.Word, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:              speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:       a.sampleRateHz,
			LanguageCode:          a.languageCode,
			EnableWordTimeOffsets: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google recognize: %w", err)
	}

	var words []transcript.Word
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		for _, w := range result.Alternatives[0].Words {
			words = append(words, transcript.Word{
				Start: w.StartTime.AsDuration().Seconds(),
				End:   w.EndTime.AsDuration().Seconds(),
				Text:  w.Word,
			})
		}
	}
	return words, nil
}

// Close releases the underlying client connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}
