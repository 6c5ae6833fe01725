// Package event provides event definitions and the event bus for the
// conformance harness. The orchestrator publishes run, stage, poll, and
// cancellation lifecycle events; subscribers render logs or feed metrics.
package event

import (
	"time"
)

// EventType identifies a lifecycle event.
type EventType string

const (
	// Run lifecycle events
	EventRunStarted   EventType = "run.started"
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"

	// Stage lifecycle events
	EventStageStarted   EventType = "stage.started"
	EventStageCompleted EventType = "stage.completed"
	EventStageFailed    EventType = "stage.failed"

	// Polling events
	EventPollAttempt   EventType = "poll.attempt"
	EventPollExhausted EventType = "poll.exhausted"

	// Cancellation events
	EventCancelRequested    EventType = "cancel.requested"
	EventCancelAcknowledged EventType = "cancel.acknowledged"

	// Settlement safety valve
	EventSettlementInconsistent EventType = "settlement.inconsistent"

	// Expectation diagnostics
	EventExpectationMismatch EventType = "expectation.mismatch"

	// Alert events
	EventAlertWarning EventType = "alert.warning"
)

// Event is one lifecycle observation.
type Event struct {
	Type        EventType      // Event type
	RunID       string         // Run identifier
	Stage       string         // Stage name, for stage and poll events
	MerchantRef string         // Merchant reference of the run
	Timestamp   time.Time      // Event timestamp
	Data        map[string]any // Additional data
	Error       error          // Error, for failure events
}

// NewEvent creates an event of the given type with the timestamp set.
func NewEvent(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      make(map[string]any),
	}
}

// WithRunID sets the run identifier.
func (e Event) WithRunID(runID string) Event {
	e.RunID = runID
	return e
}

// WithStage sets the stage name.
func (e Event) WithStage(stage string) Event {
	e.Stage = stage
	return e
}

// WithMerchantRef sets the merchant reference.
func (e Event) WithMerchantRef(ref string) Event {
	e.MerchantRef = ref
	return e
}

// WithError sets the error.
func (e Event) WithError(err error) Event {
	e.Error = err
	return e
}

// WithData sets a key-value pair in the event data.
func (e Event) WithData(key string, value any) Event {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}
