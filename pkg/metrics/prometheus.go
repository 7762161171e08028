package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastValue    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenenergy_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "indicator"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenenergy_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "greenenergy_last_reading",
				Help: "Last recorded value for an indicator",
			},
			[]string{"indicator"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenenergy_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, indicator string) {
	r.messagesSent.WithLabelValues(backend, indicator).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastValue records the last observed value for an indicator.
func (r *Recorder) RecordLastValue(indicator string, value float64) {
	r.lastValue.WithLabelValues(indicator).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
