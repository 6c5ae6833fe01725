// Package prometheus provides a Prometheus implementation of the metrics
// interface.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"payconf/metrics"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
type PrometheusMetrics struct {
	// Run metrics
	runStartedTotal   *prometheus.CounterVec
	runCompletedTotal *prometheus.CounterVec
	runFailedTotal    *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec

	// Stage metrics
	stageStartedTotal   *prometheus.CounterVec
	stageCompletedTotal *prometheus.CounterVec
	stageFailedTotal    *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec

	// Polling metrics
	pollAttemptsTotal  *prometheus.CounterVec
	pollExhaustedTotal *prometheus.CounterVec

	// Cancellation metrics
	cancelRequestedTotal    *prometheus.CounterVec
	cancelAcknowledgedTotal *prometheus.CounterVec

	// Settlement safety valve
	settlementInconsistentTotal prometheus.Counter
}

var _ metrics.Metrics = (*PrometheusMetrics)(nil)

// Config holds configuration for PrometheusMetrics.
type Config struct {
	// Namespace is the prefix for all metrics (e.g., "payconf")
	Namespace string
	// Subsystem is an optional subsystem name
	Subsystem string
	// Registry is the Prometheus registry to use. If nil, the default registry is used.
	Registry prometheus.Registerer
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Namespace: "payconf",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// New creates a new PrometheusMetrics instance with the given configuration.
func New(cfg Config) *PrometheusMetrics {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(cfg.Registry)

	return &PrometheusMetrics{
		runStartedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "run_started_total",
			Help:      "Total number of conformance runs started",
		}, []string{"currency"}),

		runCompletedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "run_completed_total",
			Help:      "Total number of conformance runs completed",
		}, []string{"currency", "final_state"}),

		runFailedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "run_failed_total",
			Help:      "Total number of conformance runs failed",
		}, []string{"currency", "reason"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "run_duration_seconds",
			Help:      "Run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
		}, []string{"currency"}),

		stageStartedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "stage_started_total",
			Help:      "Total number of stages started",
		}, []string{"stage"}),

		stageCompletedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "stage_completed_total",
			Help:      "Total number of stages completed successfully",
		}, []string{"stage"}),

		stageFailedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "stage_failed_total",
			Help:      "Total number of stages failed",
		}, []string{"stage", "reason"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "stage_duration_seconds",
			Help:      "Stage duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}, []string{"stage"}),

		pollAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "poll_attempts_total",
			Help:      "Total number of poll fetches issued",
		}, []string{"target"}),

		pollExhaustedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "poll_exhausted_total",
			Help:      "Total number of polls that exhausted their budget",
		}, []string{"target"}),

		cancelRequestedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cancel_requested_total",
			Help:      "Total number of cancellation requests issued",
		}, []string{"trigger"}),

		cancelAcknowledgedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cancel_acknowledged_total",
			Help:      "Total number of cancellations acknowledged by the gateway",
		}, []string{"trigger"}),

		settlementInconsistentTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "settlement_inconsistent_total",
			Help:      "Total number of settlements flagged inconsistent",
		}),
	}
}

// Run metrics

func (p *PrometheusMetrics) RunStarted(currency string) {
	p.runStartedTotal.WithLabelValues(currency).Inc()
}

func (p *PrometheusMetrics) RunCompleted(currency, finalState string, duration time.Duration) {
	p.runCompletedTotal.WithLabelValues(currency, finalState).Inc()
	p.runDuration.WithLabelValues(currency).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) RunFailed(currency, reason string) {
	p.runFailedTotal.WithLabelValues(currency, reason).Inc()
}

// Stage metrics

func (p *PrometheusMetrics) StageStarted(stage string) {
	p.stageStartedTotal.WithLabelValues(stage).Inc()
}

func (p *PrometheusMetrics) StageCompleted(stage string, duration time.Duration) {
	p.stageCompletedTotal.WithLabelValues(stage).Inc()
	p.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) StageFailed(stage, reason string) {
	p.stageFailedTotal.WithLabelValues(stage, reason).Inc()
}

// Polling metrics

func (p *PrometheusMetrics) PollAttempt(target string) {
	p.pollAttemptsTotal.WithLabelValues(target).Inc()
}

func (p *PrometheusMetrics) PollExhausted(target string) {
	p.pollExhaustedTotal.WithLabelValues(target).Inc()
}

// Cancellation metrics

func (p *PrometheusMetrics) CancelRequested(trigger string) {
	p.cancelRequestedTotal.WithLabelValues(trigger).Inc()
}

func (p *PrometheusMetrics) CancelAcknowledged(trigger string) {
	p.cancelAcknowledgedTotal.WithLabelValues(trigger).Inc()
}

// Settlement safety valve

func (p *PrometheusMetrics) SettlementInconsistent() {
	p.settlementInconsistentTotal.Inc()
}
