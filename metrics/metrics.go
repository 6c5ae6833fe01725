// Package metrics provides the metrics interface for the conformance
// harness.
package metrics

import "time"

// Metrics defines the interface for collecting observability metrics.
// Implementations can use Prometheus or other metrics backends.
type Metrics interface {
	// Run metrics
	RunStarted(currency string)
	RunCompleted(currency, finalState string, duration time.Duration)
	RunFailed(currency, reason string)

	// Stage metrics
	StageStarted(stage string)
	StageCompleted(stage string, duration time.Duration)
	StageFailed(stage, reason string)

	// Polling metrics
	PollAttempt(target string)
	PollExhausted(target string)

	// Cancellation metrics
	CancelRequested(trigger string)
	CancelAcknowledged(trigger string)

	// Settlement safety valve
	SettlementInconsistent()
}

// NoopMetrics is a no-op implementation of Metrics.
type NoopMetrics struct{}

var _ Metrics = (*NoopMetrics)(nil)

func (n *NoopMetrics) RunStarted(currency string)                                      {}
func (n *NoopMetrics) RunCompleted(currency, finalState string, duration time.Duration) {}
func (n *NoopMetrics) RunFailed(currency, reason string)                               {}
func (n *NoopMetrics) StageStarted(stage string)                                       {}
func (n *NoopMetrics) StageCompleted(stage string, duration time.Duration)             {}
func (n *NoopMetrics) StageFailed(stage, reason string)                                {}
func (n *NoopMetrics) PollAttempt(target string)                                       {}
func (n *NoopMetrics) PollExhausted(target string)                                     {}
func (n *NoopMetrics) CancelRequested(trigger string)                                  {}
func (n *NoopMetrics) CancelAcknowledged(trigger string)                               {}
func (n *NoopMetrics) SettlementInconsistent()                                         {}
