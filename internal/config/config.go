// Package config loads service configuration from environment variables.
// Every setting has a default; invalid values fall back rather than fail.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Service       ServiceConfig
	Storage       StorageConfig
	STT           STTConfig
	Pipeline      PipelineConfig
	Delivery      DeliveryConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	MetricsPort string
}

// StorageConfig points at the S3-compatible bucket recordings are written
// to. Supabase storage needs path-style addressing.
type StorageConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	Secret         string
	ForcePathStyle bool
}

// Configured reports whether enough is set to fetch recordings.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.Secret != ""
}

type STTConfig struct {
	Provider       string // deepgram, google, mock
	DeepgramAPIKey string
	DeepgramModel  string
	LanguageCode   string
	SampleRateHz   int32
}

type PipelineConfig struct {
	FFmpegPath   string
	ScratchDir   string
	StageTimeout time.Duration
	GapSeconds   float64
}

type DeliveryConfig struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
}

type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicCompleted string
	Principal      string
}

type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-voice-agent-bridge")

	return &Config{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Storage: StorageConfig{
			Endpoint:       envOrDefault("STORAGE_ENDPOINT", ""),
			Region:         envOrDefault("STORAGE_REGION", "eu-north-1"),
			Bucket:         envOrDefault("STORAGE_BUCKET", "Recordings"),
			AccessKey:      envOrDefault("STORAGE_ACCESS_KEY", ""),
			Secret:         envOrDefault("STORAGE_SECRET", ""),
			ForcePathStyle: envOrDefaultBool("STORAGE_FORCE_PATH_STYLE", true),
		},
		STT: STTConfig{
			Provider:       envOrDefault("STT_PROVIDER", "deepgram"),
			DeepgramAPIKey: envOrDefault("DEEPGRAM_API_KEY", ""),
			DeepgramModel:  envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			LanguageCode:   envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   int32(envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000)),
		},
		Pipeline: PipelineConfig{
			FFmpegPath:   envOrDefault("FFMPEG_PATH", "ffmpeg"),
			ScratchDir:   envOrDefault("PIPELINE_SCRATCH_DIR", ""),
			StageTimeout: envOrDefaultDuration("PIPELINE_STAGE_TIMEOUT", 120*time.Second),
			GapSeconds:   envOrDefaultFloat("PIPELINE_GAP_SECONDS", 1.0),
		},
		Delivery: DeliveryConfig{
			Endpoint:   envOrDefault("DELIVERY_WEBHOOK_URL", ""),
			Timeout:    envOrDefaultDuration("DELIVERY_TIMEOUT", 10*time.Second),
			MaxRetries: envOrDefaultInt("DELIVERY_MAX_RETRIES", 3),
		},
		Kafka: KafkaConfig{
			Enabled:        envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:        envOrDefaultList("KAFKA_BROKERS", []string{"localhost:9092"}),
			TopicCompleted: envOrDefault("KAFKA_TOPIC_COMPLETED", "call.transcript.completed"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
