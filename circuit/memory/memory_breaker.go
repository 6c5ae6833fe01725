// Package memory provides the in-memory implementation of circuit.Breaker.
package memory

import (
	"context"
	"sync"
	"time"

	"payconf/circuit"
)

// MemoryBreaker hands out in-memory circuit breakers keyed by endpoint class.
type MemoryBreaker struct {
	mu            sync.Mutex
	breakers      map[string]*memoryCircuitBreaker
	defaultConfig circuit.BreakerConfig
}

var _ circuit.Breaker = (*MemoryBreaker)(nil)

// NewMemoryBreaker creates a MemoryBreaker with the default configuration.
func NewMemoryBreaker() *MemoryBreaker {
	return NewMemoryBreakerWithConfig(circuit.DefaultBreakerConfig())
}

// NewMemoryBreakerWithConfig creates a MemoryBreaker with a custom default
// configuration.
func NewMemoryBreakerWithConfig(config circuit.BreakerConfig) *MemoryBreaker {
	return &MemoryBreaker{
		breakers:      make(map[string]*memoryCircuitBreaker),
		defaultConfig: config,
	}
}

// Get returns the breaker for the endpoint class with the default config.
func (m *MemoryBreaker) Get(endpoint string) circuit.CircuitBreaker {
	return m.GetWithConfig(endpoint, m.defaultConfig)
}

// GetWithConfig returns the breaker for the endpoint class, creating it with
// the given config on first use.
func (m *MemoryBreaker) GetWithConfig(endpoint string, config circuit.BreakerConfig) circuit.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[endpoint]; ok {
		return cb
	}
	cb := &memoryCircuitBreaker{config: config, state: circuit.StateClosed}
	m.breakers[endpoint] = cb
	return cb
}

// memoryCircuitBreaker tracks consecutive failures for one endpoint class.
type memoryCircuitBreaker struct {
	mu     sync.Mutex
	config circuit.BreakerConfig
	state  circuit.State

	consecutiveFailures int
	halfOpenInFlight    int
	openedAt            time.Time
}

var _ circuit.CircuitBreaker = (*memoryCircuitBreaker)(nil)

// Execute runs fn under breaker protection.
func (cb *memoryCircuitBreaker) Execute(_ context.Context, fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	cb.afterRequest(err == nil)
	return err
}

func (cb *memoryCircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuit.StateClosed:
		return nil
	case circuit.StateOpen:
		if time.Since(cb.openedAt) < cb.config.Timeout {
			return circuit.ErrCircuitOpen
		}
		cb.state = circuit.StateHalfOpen
		cb.halfOpenInFlight = 0
		fallthrough
	case circuit.StateHalfOpen:
		if cb.halfOpenInFlight >= cb.config.HalfOpenMaxReqs {
			return circuit.ErrCircuitOpen
		}
		cb.halfOpenInFlight++
		return nil
	default:
		return circuit.ErrCircuitOpen
	}
}

func (cb *memoryCircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == circuit.StateHalfOpen {
		cb.halfOpenInFlight--
	}

	if success {
		cb.consecutiveFailures = 0
		if cb.state == circuit.StateHalfOpen {
			cb.state = circuit.StateClosed
		}
		return
	}

	cb.consecutiveFailures++
	switch cb.state {
	case circuit.StateClosed:
		if cb.consecutiveFailures >= cb.config.Threshold {
			cb.open()
		}
	case circuit.StateHalfOpen:
		cb.open()
	}
}

func (cb *memoryCircuitBreaker) open() {
	cb.state = circuit.StateOpen
	cb.openedAt = time.Now()
}

// State returns the current state.
func (cb *memoryCircuitBreaker) State() circuit.State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker back to closed.
func (cb *memoryCircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = circuit.StateClosed
	cb.consecutiveFailures = 0
	cb.halfOpenInFlight = 0
}
