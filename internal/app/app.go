// Package app wires configuration into the running service: storage,
// audio tooling, the STT provider, downstream delivery, and the HTTP
// handlers.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"voice-agent-bridge/internal/audio"
	"voice-agent-bridge/internal/config"
	"voice-agent-bridge/internal/delivery"
	"voice-agent-bridge/internal/events"
	httpapi "voice-agent-bridge/internal/http"
	"voice-agent-bridge/internal/observability/logging"
	"voice-agent-bridge/internal/pipeline"
	"voice-agent-bridge/internal/session"
	"voice-agent-bridge/internal/storage"
	"voice-agent-bridge/internal/stt"
	"voice-agent-bridge/internal/stt/deepgram"
	"voice-agent-bridge/internal/stt/google"
	"voice-agent-bridge/internal/stt/mock"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Router      http.Handler

	publisher *events.Publisher
	googleSTT *google.Adapter
}

// New constructs the Application and all of its components. A missing
// storage or STT configuration degrades the relevant component rather
// than failing startup, so the webhook surface is always available.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}

	fetcher, err := a.setupFetcher(ctx)
	if err != nil {
		return nil, err
	}
	adapter, err := a.setupSTT(ctx)
	if err != nil {
		return nil, err
	}

	splitter := audio.NewSplitter(cfg.Pipeline.FFmpegPath, logging.WithComponent("audio"))
	notifier := delivery.New(cfg.Delivery.Endpoint, cfg.Delivery.Timeout, cfg.Delivery.MaxRetries)
	a.publisher = events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.TopicCompleted,
		Principal: cfg.Kafka.Principal,
	})

	sessions := session.NewStore()
	runner := pipeline.NewRunner(fetcher, splitter, adapter, notifier, a.publisher, sessions, pipeline.Config{
		StageTimeout:    cfg.Pipeline.StageTimeout,
		ScratchDir:      cfg.Pipeline.ScratchDir,
		GapSeconds:      cfg.Pipeline.GapSeconds,
		StorageEndpoint: cfg.Storage.Endpoint,
	})

	handler := httpapi.NewHandler(runner, session.NewProcessedSet(), sessions)
	a.Router = httpapi.NewRouter(handler)

	a.Logger.Info().Msg("Voice agent bridge application created")
	return a, nil
}

func (a *Application) setupFetcher(ctx context.Context) (pipeline.Fetcher, error) {
	if !a.Cfg.Storage.Configured() {
		// Events still dedupe and respond; runs will fail at the fetch
		// stage with a clear error.
		a.Logger.Warn().Msg("Storage not configured, recording fetch disabled")
		return storage.Disabled{}, nil
	}
	fetcher, err := storage.New(ctx, storage.Config{
		Endpoint:       a.Cfg.Storage.Endpoint,
		Region:         a.Cfg.Storage.Region,
		AccessKey:      a.Cfg.Storage.AccessKey,
		Secret:         a.Cfg.Storage.Secret,
		ForcePathStyle: a.Cfg.Storage.ForcePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("setup storage fetcher: %w", err)
	}
	return fetcher, nil
}

func (a *Application) setupSTT(ctx context.Context) (stt.Adapter, error) {
	sttCfg := a.Cfg.STT
	switch sttCfg.Provider {
	case "deepgram":
		if sttCfg.DeepgramAPIKey == "" {
			a.Logger.Warn().Msg("DEEPGRAM_API_KEY not set, transcription disabled")
			return stt.NewNoop("missing Deepgram API key"), nil
		}
		return deepgram.New(sttCfg.DeepgramAPIKey, sttCfg.DeepgramModel), nil
	case "google":
		adapter, err := google.New(ctx, sttCfg.LanguageCode, sttCfg.SampleRateHz)
		if err != nil {
			return nil, fmt.Errorf("setup google stt: %w", err)
		}
		a.googleSTT = adapter
		return adapter, nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", sttCfg.Provider)
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Str("sttProvider", a.Cfg.STT.Provider).
		Msg("Voice agent bridge starting")
	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("Voice agent bridge shutting down")
	if err := a.publisher.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close event publisher")
	}
	if a.googleSTT != nil {
		if err := a.googleSTT.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close STT client")
		}
	}
}
