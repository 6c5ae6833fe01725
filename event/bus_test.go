package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// testLogger captures bus log lines.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *testLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func TestMemoryEventBus_SubscribeAndPublish(t *testing.T) {
	bus := NewMemoryEventBus()

	var got []Event
	err := bus.Subscribe(EventRunStarted, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	e := NewEvent(EventRunStarted).WithRunID("run-1").WithData("currency", "USD")
	if err := bus.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	// A different type does not reach the handler.
	if err := bus.Publish(context.Background(), NewEvent(EventRunCompleted)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].RunID != "run-1" || got[0].Data["currency"] != "USD" {
		t.Errorf("unexpected event: %+v", got[0])
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected the timestamp stamped at creation")
	}
}

func TestMemoryEventBus_SubscribeAll(t *testing.T) {
	bus := NewMemoryEventBus()

	count := 0
	if err := bus.SubscribeAll(func(context.Context, Event) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("SubscribeAll failed: %v", err)
	}

	types := []EventType{EventRunStarted, EventPollAttempt, EventCancelRequested, EventRunCompleted}
	for _, et := range types {
		if err := bus.Publish(context.Background(), NewEvent(et)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	if count != len(types) {
		t.Errorf("expected %d events, got %d", len(types), count)
	}
}

func TestMemoryEventBus_HandlerErrorIsLoggedNotPropagated(t *testing.T) {
	logger := &testLogger{}
	bus := NewMemoryEventBus(WithLogger(logger))

	_ = bus.Subscribe(EventRunFailed, func(context.Context, Event) error {
		return errors.New("handler broke")
	})

	if err := bus.Publish(context.Background(), NewEvent(EventRunFailed)); err != nil {
		t.Fatalf("handler error must not propagate: %v", err)
	}
	if logger.count() != 1 {
		t.Errorf("expected 1 logged error, got %d", logger.count())
	}
}

func TestMemoryEventBus_HandlerPanicIsRecovered(t *testing.T) {
	logger := &testLogger{}
	bus := NewMemoryEventBus(WithLogger(logger))

	_ = bus.Subscribe(EventRunFailed, func(context.Context, Event) error {
		panic("handler panic")
	})
	reached := false
	_ = bus.Subscribe(EventRunFailed, func(context.Context, Event) error {
		reached = true
		return nil
	})

	if err := bus.Publish(context.Background(), NewEvent(EventRunFailed)); err != nil {
		t.Fatalf("panic must not propagate: %v", err)
	}
	if !reached {
		t.Error("a panicking handler must not block later handlers")
	}
	if logger.count() != 1 {
		t.Errorf("expected 1 logged panic, got %d", logger.count())
	}
}

func TestMemoryEventBus_HandlerCount(t *testing.T) {
	bus := NewMemoryEventBus()
	_ = bus.Subscribe(EventRunStarted, func(context.Context, Event) error { return nil })
	_ = bus.Subscribe(EventRunStarted, func(context.Context, Event) error { return nil })

	if bus.HandlerCount(EventRunStarted) != 2 {
		t.Errorf("expected 2 handlers, got %d", bus.HandlerCount(EventRunStarted))
	}
	if bus.HandlerCount(EventRunFailed) != 0 {
		t.Errorf("expected 0 handlers, got %d", bus.HandlerCount(EventRunFailed))
	}
}

func TestEventBuilders(t *testing.T) {
	e := NewEvent(EventStageFailed).
		WithRunID("run-1").
		WithStage("settlement").
		WithMerchantRef("ref-1").
		WithError(errors.New("boom")).
		WithData("attempt", 3)

	if e.Type != EventStageFailed || e.RunID != "run-1" || e.Stage != "settlement" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.MerchantRef != "ref-1" || e.Error == nil || e.Data["attempt"] != 3 {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestNoOpEventBus(t *testing.T) {
	bus := NewNoOpEventBus()
	if err := bus.Publish(context.Background(), NewEvent(EventRunStarted)); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
	if err := bus.Subscribe(EventRunStarted, nil); err != nil {
		t.Errorf("Subscribe failed: %v", err)
	}
	if err := bus.SubscribeAll(nil); err != nil {
		t.Errorf("SubscribeAll failed: %v", err)
	}
}
