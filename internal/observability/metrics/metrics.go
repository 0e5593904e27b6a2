// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_agent_bridge"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline run metrics
	RunsTotal   prometheus.Counter
	RunsActive  prometheus.Gauge
	RunsSuccess prometheus.Counter
	RunsFailed  prometheus.Counter
	RunDuration prometheus.Histogram

	// Per-stage metrics
	StageDuration *prometheus.HistogramVec
	StageFailures *prometheus.CounterVec

	// Webhook intake metrics
	EventsAccepted  prometheus.Counter
	EventsDuplicate prometheus.Counter
	EventsEmpty     prometheus.Counter
	EventsIgnored   prometheus.Counter

	// Transcription metrics
	TranscribeLatency *prometheus.HistogramVec
	TranscribeErrors  *prometheus.CounterVec
	WordsTranscribed  *prometheus.CounterVec

	// Delivery metrics
	DeliveryTotal   prometheus.Counter
	DeliveryErrors  prometheus.Counter
	DeliveryLatency prometheus.Histogram

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// HTTP server metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs started",
		}),
		RunsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_active",
			Help:      "Number of currently running pipelines",
		}),
		RunsSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_success_total",
			Help:      "Total number of pipeline runs that completed successfully",
		}),
		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_failed_total",
			Help:      "Total number of pipeline runs that failed",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of complete pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_failures_total",
			Help:      "Total number of stage failures",
		}, []string{"stage"}),

		EventsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_accepted_total",
			Help:      "Total number of recording events accepted for processing",
		}),
		EventsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_duplicate_total",
			Help:      "Total number of duplicate recording events discarded",
		}),
		EventsEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_empty_total",
			Help:      "Total number of recording events carrying no file results",
		}),
		EventsIgnored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_ignored_total",
			Help:      "Total number of webhook events of other kinds",
		}),

		TranscribeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcribe_latency_seconds",
			Help:      "Per-channel transcription latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "channel"}),
		TranscribeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_errors_total",
			Help:      "Total number of per-channel transcription errors",
		}, []string{"provider", "channel"}),
		WordsTranscribed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_words_total",
			Help:      "Total number of words returned by transcription",
		}, []string{"provider", "channel"}),

		DeliveryTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_total",
			Help:      "Total number of transcript deliveries attempted",
		}),
		DeliveryErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_errors_total",
			Help:      "Total number of transcript deliveries that failed",
		}),
		DeliveryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_latency_seconds",
			Help:      "Transcript delivery latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"method", "path", "code"}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "path"}),
	}
}

// RecordRunStart records a pipeline run starting.
func (m *Metrics) RecordRunStart() {
	m.RunsTotal.Inc()
	m.RunsActive.Inc()
}

// RecordRunEnd records a pipeline run ending.
func (m *Metrics) RecordRunEnd(success bool, durationSeconds float64) {
	m.RunsActive.Dec()
	m.RunDuration.Observe(durationSeconds)
	if success {
		m.RunsSuccess.Inc()
	} else {
		m.RunsFailed.Inc()
	}
}

// RecordStage records one stage execution.
func (m *Metrics) RecordStage(stage string, err error, durationSeconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// RecordEventAccepted records a recording event accepted for processing.
func (m *Metrics) RecordEventAccepted() { m.EventsAccepted.Inc() }

// RecordEventDuplicate records a duplicate recording event discarded.
func (m *Metrics) RecordEventDuplicate() { m.EventsDuplicate.Inc() }

// RecordEventEmpty records an event with no file results.
func (m *Metrics) RecordEventEmpty() { m.EventsEmpty.Inc() }

// RecordEventIgnored records a webhook event of a kind the service ignores.
func (m *Metrics) RecordEventIgnored() { m.EventsIgnored.Inc() }

// RecordTranscription records one per-channel transcription attempt.
func (m *Metrics) RecordTranscription(provider, channel string, err error, durationSeconds float64, words int) {
	m.TranscribeLatency.WithLabelValues(provider, channel).Observe(durationSeconds)
	if err != nil {
		m.TranscribeErrors.WithLabelValues(provider, channel).Inc()
		return
	}
	m.WordsTranscribed.WithLabelValues(provider, channel).Add(float64(words))
}

// RecordDelivery records one transcript delivery attempt.
func (m *Metrics) RecordDelivery(err error, durationSeconds float64) {
	m.DeliveryTotal.Inc()
	m.DeliveryLatency.Observe(durationSeconds)
	if err != nil {
		m.DeliveryErrors.Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}

// RecordHTTPRequest records a handled HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, code int, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.HTTPLatency.WithLabelValues(method, path).Observe(durationSeconds)
}
