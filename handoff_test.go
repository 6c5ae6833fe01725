package payconf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// ============================================================================
// Handoff Unit Tests
// ============================================================================

func TestHandoff_PublishThenAwait(t *testing.T) {
	h := NewHandoff()
	h.Publish("pay-123")

	id, err := h.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if id != "pay-123" {
		t.Errorf("expected pay-123, got %s", id)
	}
}

func TestHandoff_AwaitBlocksUntilPublish(t *testing.T) {
	h := NewHandoff()

	done := make(chan string)
	go func() {
		id, err := h.Await(context.Background())
		if err != nil {
			t.Errorf("Await failed: %v", err)
		}
		done <- id
	}()

	select {
	case <-done:
		t.Fatal("Await returned before Publish")
	case <-time.After(20 * time.Millisecond):
	}

	h.Publish("pay-456")

	select {
	case id := <-done:
		if id != "pay-456" {
			t.Errorf("expected pay-456, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Await did not unblock after Publish")
	}
}

func TestHandoff_MultipleWaiters(t *testing.T) {
	h := NewHandoff()

	const waiters = 5
	var wg sync.WaitGroup
	ids := make(chan string, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := h.Await(context.Background())
			if err != nil {
				t.Errorf("Await failed: %v", err)
				return
			}
			ids <- id
		}()
	}

	h.Publish("pay-789")
	wg.Wait()
	close(ids)

	count := 0
	for id := range ids {
		count++
		if id != "pay-789" {
			t.Errorf("expected pay-789, got %s", id)
		}
	}
	if count != waiters {
		t.Errorf("expected %d waiters released, got %d", waiters, count)
	}
}

func TestHandoff_DoublePublishPanics(t *testing.T) {
	h := NewHandoff()
	h.Publish("pay-1")

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected second Publish to panic")
		}
	}()
	h.Publish("pay-2")
}

func TestHandoff_AwaitAbandoned(t *testing.T) {
	h := NewHandoff()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Await(ctx)
	if !errors.Is(err, ErrHandoffAbandoned) {
		t.Errorf("expected ErrHandoffAbandoned, got %v", err)
	}
}

func TestHandoff_TryGet(t *testing.T) {
	h := NewHandoff()

	if _, ok := h.TryGet(); ok {
		t.Error("expected TryGet to miss before Publish")
	}

	h.Publish("pay-123")

	id, ok := h.TryGet()
	if !ok {
		t.Fatal("expected TryGet to hit after Publish")
	}
	if id != "pay-123" {
		t.Errorf("expected pay-123, got %s", id)
	}
}

// ============================================================================
// Property-Based Tests
// ============================================================================

func TestHandoff_ConcurrentAwaitProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		waiters := rapid.IntRange(1, 16).Draw(rt, "waiters")
		published := rapid.StringMatching(`pay-[a-z0-9]{6}`).Draw(rt, "id")

		h := NewHandoff()
		var wg sync.WaitGroup
		results := make([]string, waiters)
		for i := 0; i < waiters; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				id, err := h.Await(context.Background())
				if err != nil {
					rt.Errorf("Await failed: %v", err)
					return
				}
				results[slot] = id
			}(i)
		}

		h.Publish(published)
		wg.Wait()

		for _, got := range results {
			if got != published {
				rt.Errorf("expected every waiter to read %s, got %s", published, got)
			}
		}
	})
}
