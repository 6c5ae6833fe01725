package payconf

import (
	"context"
	"sync"
)

// Handoff is a single-assignment cell carrying the transaction identifier
// from the settlement task to the cancellation task. It is written exactly
// once and read with a blocking wait; the identifier, once published, never
// changes. This is the only state shared across the two post-submission
// tasks.
type Handoff struct {
	once  sync.Once
	ready chan struct{}
	id    string
}

// NewHandoff creates an empty handoff.
func NewHandoff() *Handoff {
	return &Handoff{ready: make(chan struct{})}
}

// Publish stores the identifier and unblocks all waiters. Calling Publish
// twice is a programming error and panics.
func (h *Handoff) Publish(id string) {
	published := false
	h.once.Do(func() {
		h.id = id
		close(h.ready)
		published = true
	})
	if !published {
		panic("payconf: handoff published twice")
	}
}

// Await blocks until the identifier is published or the context ends.
// The cancellation task must read the identifier through this and no other
// channel.
func (h *Handoff) Await(ctx context.Context) (string, error) {
	select {
	case <-h.ready:
		return h.id, nil
	case <-ctx.Done():
		return "", ErrHandoffAbandoned
	}
}

// TryGet returns the identifier without blocking.
func (h *Handoff) TryGet() (string, bool) {
	select {
	case <-h.ready:
		return h.id, true
	default:
		return "", false
	}
}
