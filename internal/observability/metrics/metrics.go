// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting_transcription"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Job metrics
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    *prometheus.CounterVec
	PollsTotal    *prometheus.CounterVec

	// Audio metrics
	UploadBytes       prometheus.Counter
	StagedBytes       prometheus.Counter
	TranscodeDuration prometheus.Histogram

	// Extraction metrics
	ExtractionFallback prometheus.Counter
	ExtractionRelists  prometheus.Counter

	// Touch-up metrics
	TouchupFallbacks prometheus.Counter

	// Cleanup metrics; swallowed best-effort delete failures surface here.
	CleanupErrors *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		JobsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_submitted_total",
			Help:      "Total number of batch recognition jobs submitted",
		}),
		JobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that returned a transcript",
		}),
		JobsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_failed_total",
			Help:      "Total number of pipeline failures by stage",
		}, []string{"stage"}),
		PollsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of status polls by result",
		}, []string{"result"}),

		UploadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Total raw audio bytes received from clients",
		}),
		StagedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staged_bytes_total",
			Help:      "Total canonical audio bytes uploaded to blob storage",
		}),
		TranscodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcode_duration_seconds",
			Help:      "Duration of ffmpeg transcodes in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		ExtractionFallback: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_fallback_total",
			Help:      "Total number of result documents handled by the fallback scan",
		}),
		ExtractionRelists: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_relists_total",
			Help:      "Total number of grace-period re-lists of the result prefix",
		}),

		TouchupFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "touchup_fallbacks_total",
			Help:      "Total number of touch-up calls that fell back to raw text",
		}),

		CleanupErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_errors_total",
			Help:      "Total number of swallowed cleanup failures by kind",
		}, []string{"kind"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"route", "code"}),
	}
}

// RecordJobSubmitted records a successfully submitted batch job.
func (m *Metrics) RecordJobSubmitted() {
	m.JobsSubmitted.Inc()
}

// RecordJobCompleted records a job that returned a transcript.
func (m *Metrics) RecordJobCompleted() {
	m.JobsCompleted.Inc()
}

// RecordJobFailed records a pipeline failure at a given stage.
func (m *Metrics) RecordJobFailed(stage string) {
	m.JobsFailed.WithLabelValues(stage).Inc()
}

// RecordPoll records a poll by result: pending, completed or failed.
func (m *Metrics) RecordPoll(result string) {
	m.PollsTotal.WithLabelValues(result).Inc()
}

// RecordTranscode records a completed transcode.
func (m *Metrics) RecordTranscode(durationSeconds float64) {
	m.TranscodeDuration.Observe(durationSeconds)
}

// RecordCleanupError records a swallowed cleanup failure.
func (m *Metrics) RecordCleanupError(kind string) {
	m.CleanupErrors.WithLabelValues(kind).Inc()
}

// RecordTouchupFallback records a touch-up call that fell back to raw text.
func (m *Metrics) RecordTouchupFallback() {
	m.TouchupFallbacks.Inc()
}

// RecordFallbackScan records a document handled by the fallback extraction path.
func (m *Metrics) RecordFallbackScan() {
	m.ExtractionFallback.Inc()
}

// RecordRelist records a grace-period re-list of the result prefix.
func (m *Metrics) RecordRelist() {
	m.ExtractionRelists.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordRequest records an HTTP request duration.
func (m *Metrics) RecordRequest(route, code string, durationSeconds float64) {
	m.RequestDuration.WithLabelValues(route, code).Observe(durationSeconds)
}
