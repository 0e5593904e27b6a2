// Package pipeline runs the post-call processing sequence for one
// recording: fetch, channel split, per-channel transcription, merge,
// delivery. Runs for different calls are independent and interleave
// freely; stages within one run are strictly sequential.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voice-agent-bridge/internal/delivery"
	"voice-agent-bridge/internal/events"
	"voice-agent-bridge/internal/observability/logging"
	"voice-agent-bridge/internal/observability/metrics"
	"voice-agent-bridge/internal/recording"
	"voice-agent-bridge/internal/session"
	"voice-agent-bridge/internal/stt"
	"voice-agent-bridge/internal/transcript"
)

// Stage names used in logs and metrics.
const (
	StageLocate     = "locate"
	StageFetch      = "fetch"
	StageSplit      = "split"
	StageTranscribe = "transcribe"
	StageDeliver    = "deliver"
)

// Fetcher downloads a recording object into dir and returns its local path.
type Fetcher interface {
	Fetch(ctx context.Context, ref recording.Reference, dir string) (string, error)
}

// Splitter demuxes a stereo recording into agent and human mono files.
type Splitter interface {
	Split(ctx context.Context, input, dir string) (agent, human string, err error)
}

// Notifier delivers the finished transcript downstream.
type Notifier interface {
	Notify(ctx context.Context, p delivery.Payload) error
}

// Publisher emits completion events; a disabled publisher is a no-op.
type Publisher interface {
	PublishCompleted(ctx context.Context, key string, event any) error
}

// Config holds pipeline tuning.
type Config struct {
	// StageTimeout bounds each network call and the split subprocess.
	// Zero disables per-stage timeouts.
	StageTimeout time.Duration
	// ScratchDir is where run-scoped temp dirs are created; empty means
	// the OS default.
	ScratchDir string
	// GapSeconds is the silence threshold for segment grouping and merge.
	GapSeconds float64
	// StorageEndpoint is used to derive playback URLs for direct-path
	// locations.
	StorageEndpoint string
}

// Job describes one accepted recording-finished event.
type Job struct {
	EgressID string
	RoomName string
	Location string
}

// Runner executes pipeline runs.
type Runner struct {
	fetcher   Fetcher
	splitter  Splitter
	stt       stt.Adapter
	notifier  Notifier
	publisher Publisher
	sessions  *session.Store
	metrics   *metrics.Metrics
	cfg       Config
}

// NewRunner wires a Runner from its stage implementations.
func NewRunner(
	fetcher Fetcher,
	splitter Splitter,
	adapter stt.Adapter,
	notifier Notifier,
	publisher Publisher,
	sessions *session.Store,
	cfg Config,
) *Runner {
	if cfg.GapSeconds <= 0 {
		cfg.GapSeconds = transcript.DefaultGapSeconds
	}
	return &Runner{
		fetcher:   fetcher,
		splitter:  splitter,
		stt:       adapter,
		notifier:  notifier,
		publisher: publisher,
		sessions:  sessions,
		metrics:   metrics.DefaultMetrics,
		cfg:       cfg,
	}
}

// Schedule starts a run in its own goroutine so the webhook response is
// never blocked on pipeline work.
func (r *Runner) Schedule(job Job) {
	go r.Run(context.Background(), job)
}

// Run executes the pipeline for one recording. All failures stop at the
// run boundary: they are logged and counted, never propagated to the
// notification path or to other runs.
func (r *Runner) Run(ctx context.Context, job Job) {
	runId := uuid.NewString()
	logger := logging.WithRun(runId, job.RoomName, job.EgressID)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("Pipeline run panicked")
			r.metrics.RecordRunEnd(false, 0)
		}
	}()

	logger.Info().Str("location", job.Location).Msg("Pipeline run started")
	r.metrics.RecordRunStart()
	start := time.Now()

	err := r.run(ctx, job, runId, logger)
	r.metrics.RecordRunEnd(err == nil, time.Since(start).Seconds())

	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Pipeline run failed")
		return
	}
	logger.Info().Dur("duration", time.Since(start)).Msg("Pipeline run completed")
}

func (r *Runner) run(ctx context.Context, job Job, runId string, logger zerolog.Logger) error {
	// Locate before creating any scratch state: an unparseable location is
	// a configuration error and must leave no temp files behind.
	ref, err := r.stageLocate(job.Location)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp(r.cfg.ScratchDir, "recording-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove scratch dir")
		}
	}()

	local, err := r.stageFetch(ctx, ref, dir)
	if err != nil {
		return err
	}

	agentFile, humanFile, err := r.stageSplit(ctx, local, dir)
	if err != nil {
		return err
	}

	// Channel transcription failures degrade to an empty channel; they
	// never abort the run or the other channel.
	agentWords := r.transcribeChannel(ctx, runId, agentFile, string(transcript.SpeakerAgent))
	humanWords := r.transcribeChannel(ctx, runId, humanFile, string(transcript.SpeakerHuman))

	agentSegs := transcript.GroupWords(agentWords, transcript.SpeakerAgent, r.cfg.GapSeconds)
	humanSegs := transcript.GroupWords(humanWords, transcript.SpeakerHuman, r.cfg.GapSeconds)
	merged := transcript.Merge(agentSegs, humanSegs, r.cfg.GapSeconds)

	playbackURL := recording.PlaybackURL(job.Location)
	if playbackURL == job.Location && r.cfg.StorageEndpoint != "" {
		playbackURL = ref.PublicURL(r.cfg.StorageEndpoint)
	}

	caller, _ := r.sessions.Take(job.RoomName)
	payload := delivery.Payload{
		RoomName:     job.RoomName,
		EgressID:     job.EgressID,
		PhoneNumber:  caller.PhoneNumber,
		FirstName:    caller.FirstName,
		LastName:     caller.LastName,
		RecordingURL: playbackURL,
		Transcript:   transcript.Flatten(merged),
		Segments:     merged,
	}

	r.publishCompleted(ctx, job, playbackURL, merged, logger)

	return r.stageDeliver(ctx, payload)
}

func (r *Runner) stageLocate(location string) (recording.Reference, error) {
	start := time.Now()
	ref, err := recording.Parse(location)
	r.metrics.RecordStage(StageLocate, err, time.Since(start).Seconds())
	return ref, err
}

func (r *Runner) stageFetch(ctx context.Context, ref recording.Reference, dir string) (string, error) {
	sctx, cancel := r.stageContext(ctx)
	defer cancel()

	start := time.Now()
	local, err := r.fetcher.Fetch(sctx, ref, dir)
	r.metrics.RecordStage(StageFetch, err, time.Since(start).Seconds())
	return local, err
}

func (r *Runner) stageSplit(ctx context.Context, input, dir string) (string, string, error) {
	sctx, cancel := r.stageContext(ctx)
	defer cancel()

	start := time.Now()
	agent, human, err := r.splitter.Split(sctx, input, dir)
	r.metrics.RecordStage(StageSplit, err, time.Since(start).Seconds())
	return agent, human, err
}

func (r *Runner) transcribeChannel(ctx context.Context, runId, path, channel string) []transcript.Word {
	sctx, cancel := r.stageContext(ctx)
	defer cancel()

	logger := logging.WithChannel(runId, channel, r.stt.Provider())

	start := time.Now()
	words, err := r.stt.TranscribeFile(sctx, path)
	elapsed := time.Since(start)
	r.metrics.RecordTranscription(r.stt.Provider(), channel, err, elapsed.Seconds(), len(words))
	r.metrics.RecordStage(StageTranscribe, err, elapsed.Seconds())

	if err != nil {
		logger.Error().Err(err).Msg("Channel transcription failed, continuing with empty channel")
		return nil
	}
	logger.Debug().Int("words", len(words)).Dur("duration", elapsed).Msg("Channel transcribed")
	return words
}

func (r *Runner) stageDeliver(ctx context.Context, payload delivery.Payload) error {
	sctx, cancel := r.stageContext(ctx)
	defer cancel()

	start := time.Now()
	err := r.notifier.Notify(sctx, payload)
	r.metrics.RecordStage(StageDeliver, err, time.Since(start).Seconds())
	return err
}

func (r *Runner) publishCompleted(ctx context.Context, job Job, playbackURL string, merged []transcript.Segment, logger zerolog.Logger) {
	if r.publisher == nil {
		return
	}
	event := events.CallCompleted{
		EventType:    events.EventTypeCompleted,
		RoomName:     job.RoomName,
		EgressID:     job.EgressID,
		RecordingURL: playbackURL,
		SegmentCount: len(merged),
		Segments:     merged,
		Timestamp:    time.Now().UnixMilli(),
	}
	if err := r.publisher.PublishCompleted(ctx, job.RoomName, event); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish completion event")
	}
}

func (r *Runner) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.StageTimeout)
}
