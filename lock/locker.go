// Package lock serializes harness runs against a shared sandbox account.
// Sandbox merchant accounts are shared between operators; two interleaved
// runs against one account pollute each other's simulated state.
package lock

import (
	"context"
	"errors"
	"time"
)

// Lock errors
var (
	// ErrLockHeld indicates another run already holds the account lock
	ErrLockHeld = errors.New("account lock held by another run")

	// ErrLockNotHeld indicates a release for a lock this run does not hold
	ErrLockNotHeld = errors.New("account lock not held")
)

// Locker acquires a run lock for one sandbox account.
type Locker interface {
	// Acquire acquires the lock on the given account key with a TTL.
	// Returns ErrLockHeld if another run holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockHandle, error)
}

// LockHandle represents a held account lock.
type LockHandle interface {
	// Release releases the lock. Returns ErrLockNotHeld if the lock
	// expired or was taken over.
	Release(ctx context.Context) error

	// Key returns the locked account key.
	Key() string
}
