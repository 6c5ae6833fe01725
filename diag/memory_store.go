package diag

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps traces in memory. Used in tests and when no durable
// sink is configured. Oldest traces are dropped past maxTraces.
type MemoryStore struct {
	mu        sync.Mutex
	traces    []*Trace
	maxTraces int
	nextID    int64
}

var _ TraceStore = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore holding at most maxTraces entries.
// maxTraces <= 0 means unbounded.
func NewMemoryStore(maxTraces int) *MemoryStore {
	return &MemoryStore{maxTraces: maxTraces}
}

// Save stores the trace and returns a memory: location.
func (s *MemoryStore) Save(_ context.Context, trace *Trace) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.traces = append(s.traces, trace)
	if s.maxTraces > 0 && len(s.traces) > s.maxTraces {
		s.traces = s.traces[len(s.traces)-s.maxTraces:]
	}
	return fmt.Sprintf("memory:%d", s.nextID), nil
}

// Traces returns a copy of the stored traces.
func (s *MemoryStore) Traces() []*Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Trace, len(s.traces))
	copy(out, s.traces)
	return out
}

// Len returns the number of stored traces.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.traces)
}
