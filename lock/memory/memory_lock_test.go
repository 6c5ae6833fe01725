package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"payconf/lock"
)

func TestMemoryLocker_AcquireAndRelease(t *testing.T) {
	locker := NewMemoryLocker()

	handle, err := locker.Acquire(context.Background(), "acct-usd", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if handle.Key() != "acct-usd" {
		t.Errorf("expected key acct-usd, got %s", handle.Key())
	}

	if _, err := locker.Acquire(context.Background(), "acct-usd", time.Minute); !errors.Is(err, lock.ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got %v", err)
	}

	if err := handle.Release(context.Background()); err != nil {
		t.Errorf("Release failed: %v", err)
	}
	if _, err := locker.Acquire(context.Background(), "acct-usd", time.Minute); err != nil {
		t.Errorf("expected re-acquire after release, got %v", err)
	}
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()

	if _, err := locker.Acquire(context.Background(), "acct-usd", time.Minute); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := locker.Acquire(context.Background(), "acct-gbp", time.Minute); err != nil {
		t.Errorf("expected independent accounts, got %v", err)
	}
}

func TestMemoryLocker_ExpiryAllowsTakeover(t *testing.T) {
	locker := NewMemoryLocker()

	now := time.Now()
	locker.now = func() time.Time { return now }

	handle, err := locker.Acquire(context.Background(), "acct-usd", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Advance past the TTL: the lock is considered free.
	locker.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := locker.Acquire(context.Background(), "acct-usd", time.Minute); err != nil {
		t.Errorf("expected takeover after expiry, got %v", err)
	}

	// The original holder's release fails: the lock is not theirs anymore.
	if err := handle.Release(context.Background()); !errors.Is(err, lock.ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld after expiry, got %v", err)
	}
}

func TestMemoryLocker_DoubleRelease(t *testing.T) {
	locker := NewMemoryLocker()

	handle, err := locker.Acquire(context.Background(), "acct-usd", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := handle.Release(context.Background()); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := handle.Release(context.Background()); !errors.Is(err, lock.ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld on double release, got %v", err)
	}
}
