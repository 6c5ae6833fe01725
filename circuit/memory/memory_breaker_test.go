package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"payconf/circuit"
)

func testConfig() circuit.BreakerConfig {
	return circuit.BreakerConfig{
		Threshold:       3,
		Timeout:         50 * time.Millisecond,
		HalfOpenMaxReqs: 1,
	}
}

func failN(cb circuit.CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(context.Background(), func() error {
			return errors.New("boom")
		})
	}
}

func TestMemoryBreaker_PerEndpointIsolation(t *testing.T) {
	b := NewMemoryBreakerWithConfig(testConfig())

	payments := b.Get("payments")
	monitor := b.Get("monitor")
	if payments == monitor {
		t.Fatal("expected distinct breakers per endpoint class")
	}
	if b.Get("payments") != payments {
		t.Error("expected the same breaker on repeated Get")
	}

	failN(payments, 3)
	if payments.State() != circuit.StateOpen {
		t.Errorf("expected payments open, got %s", payments.State())
	}
	if monitor.State() != circuit.StateClosed {
		t.Errorf("expected monitor unaffected, got %s", monitor.State())
	}
}

func TestMemoryBreaker_OpensAtThreshold(t *testing.T) {
	cb := NewMemoryBreakerWithConfig(testConfig()).Get("payments")

	failN(cb, 2)
	if cb.State() != circuit.StateClosed {
		t.Errorf("expected closed below threshold, got %s", cb.State())
	}

	failN(cb, 1)
	if cb.State() != circuit.StateOpen {
		t.Errorf("expected open at threshold, got %s", cb.State())
	}

	err := cb.Execute(context.Background(), func() error {
		t.Error("fn must not run while open")
		return nil
	})
	if !errors.Is(err, circuit.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestMemoryBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewMemoryBreakerWithConfig(testConfig()).Get("payments")

	failN(cb, 2)
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	failN(cb, 2)
	if cb.State() != circuit.StateClosed {
		t.Errorf("expected success to reset the streak, got %s", cb.State())
	}
}

func TestMemoryBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewMemoryBreakerWithConfig(testConfig()).Get("payments")

	failN(cb, 3)
	time.Sleep(60 * time.Millisecond)

	// First probe succeeds: closed again.
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != circuit.StateClosed {
		t.Errorf("expected closed after a successful probe, got %s", cb.State())
	}
}

func TestMemoryBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewMemoryBreakerWithConfig(testConfig()).Get("payments")

	failN(cb, 3)
	time.Sleep(60 * time.Millisecond)

	failN(cb, 1)
	if cb.State() != circuit.StateOpen {
		t.Errorf("expected a failing probe to reopen, got %s", cb.State())
	}
}

func TestMemoryBreaker_Reset(t *testing.T) {
	cb := NewMemoryBreakerWithConfig(testConfig()).Get("payments")

	failN(cb, 3)
	cb.Reset()
	if cb.State() != circuit.StateClosed {
		t.Errorf("expected closed after Reset, got %s", cb.State())
	}
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Execute after Reset failed: %v", err)
	}
}
