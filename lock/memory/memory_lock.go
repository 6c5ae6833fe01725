// Package memory provides an in-process implementation of the lock.Locker
// interface, sufficient when all runs share one process.
package memory

import (
	"context"
	"sync"
	"time"

	"payconf/lock"
)

var _ lock.Locker = (*MemoryLocker)(nil)

type heldLock struct {
	expiry time.Time
	gen    uint64
}

// MemoryLocker implements the account lock with an in-process map. Each
// acquisition gets a generation number so a stale handle cannot release a
// successor's lock after expiry.
type MemoryLocker struct {
	mu      sync.Mutex
	locks   map[string]heldLock
	nextGen uint64
	now     func() time.Time
}

// NewMemoryLocker creates a new in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]heldLock),
		now:   time.Now,
	}
}

// Acquire acquires the lock on the given account key.
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (lock.LockHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && l.now().Before(held.expiry) {
		return nil, lock.ErrLockHeld
	}
	l.nextGen++
	l.locks[key] = heldLock{expiry: l.now().Add(ttl), gen: l.nextGen}
	return &memoryLockHandle{locker: l, key: key, gen: l.nextGen}, nil
}

type memoryLockHandle struct {
	locker *MemoryLocker
	key    string
	gen    uint64
}

// Release releases the lock if this handle still owns it.
func (h *memoryLockHandle) Release(_ context.Context) error {
	h.locker.mu.Lock()
	defer h.locker.mu.Unlock()

	held, ok := h.locker.locks[h.key]
	if !ok || held.gen != h.gen || h.locker.now().After(held.expiry) {
		return lock.ErrLockNotHeld
	}
	delete(h.locker.locks, h.key)
	return nil
}

// Key returns the locked account key.
func (h *memoryLockHandle) Key() string {
	return h.key
}
