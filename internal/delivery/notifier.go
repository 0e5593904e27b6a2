// Package delivery reports finished call transcripts to the downstream
// workflow webhook.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"voice-agent-bridge/internal/observability/metrics"
	"voice-agent-bridge/internal/transcript"
)

// Payload is the JSON body posted to the downstream endpoint. It carries
// both the flattened dialogue and the structured segment list so the
// consumer can choose either representation.
type Payload struct {
	RoomName     string               `json:"roomName"`
	EgressID     string               `json:"egressId"`
	PhoneNumber  string               `json:"phoneNumber,omitempty"`
	FirstName    string               `json:"firstName,omitempty"`
	LastName     string               `json:"lastName,omitempty"`
	RecordingURL string               `json:"recordingUrl"`
	Transcript   string               `json:"transcript"`
	Segments     []transcript.Segment `json:"segments"`
}

// Notifier delivers payloads over HTTP. Transient failures are retried a
// bounded number of times with exponential backoff; after that the report
// is lost, since nothing persists it elsewhere.
type Notifier struct {
	endpoint      string
	client        *http.Client
	metrics       *metrics.Metrics
	maxRetries    uint64
	retryInterval time.Duration
}

// New creates a Notifier. An empty endpoint disables delivery: Notify
// becomes a logged no-op, not an error.
func New(endpoint string, timeout time.Duration, maxRetries int) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Notifier{
		endpoint:      endpoint,
		client:        &http.Client{Timeout: timeout},
		metrics:       metrics.DefaultMetrics,
		maxRetries:    uint64(maxRetries),
		retryInterval: 500 * time.Millisecond,
	}
}

// Notify posts the payload to the configured endpoint. A non-2xx response
// counts as a failure. Delivery is at-most-once per recording: callers do
// not re-run the pipeline on delivery failure.
func (n *Notifier) Notify(ctx context.Context, p Payload) error {
	if n.endpoint == "" {
		log.Info().
			Str("roomName", p.RoomName).
			Str("egressId", p.EgressID).
			Msg("No delivery endpoint configured, skipping transcript delivery")
		return nil
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal delivery payload: %w", err)
	}

	start := time.Now()
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Transcript delivery attempt failed")
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err := fmt.Errorf("delivery endpoint returned %s", resp.Status)
			log.Warn().Err(err).Int("attempt", attempt).Msg("Transcript delivery attempt failed")
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = n.retryInterval
	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, n.maxRetries), ctx))

	n.metrics.RecordDelivery(err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("deliver transcript: %w", err)
	}

	log.Info().
		Str("roomName", p.RoomName).
		Str("egressId", p.EgressID).
		Int("segments", len(p.Segments)).
		Msg("Transcript delivered")
	return nil
}
