// Package circuit provides circuit breaker protection for gateway endpoint
// classes, keeping a misbehaving sandbox endpoint from burning the whole
// poll budget on connection errors.
package circuit

import (
	"context"
	"errors"
	"time"
)

// ErrCircuitOpen indicates the breaker for an endpoint class is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed is the normal state where requests are allowed
	StateClosed State = iota
	// StateOpen is the state where requests are blocked
	StateOpen
	// StateHalfOpen is the state where limited requests probe recovery
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig holds the configuration for a circuit breaker.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures before opening
	Threshold int
	// Timeout is the wait before transitioning from OPEN to HALF_OPEN
	Timeout time.Duration
	// HalfOpenMaxReqs is the number of probe requests allowed in HALF_OPEN
	HalfOpenMaxReqs int
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Threshold:       5,
		Timeout:         30 * time.Second,
		HalfOpenMaxReqs: 2,
	}
}

// Breaker hands out one circuit breaker per endpoint class (for this
// harness: monitor, paymentmethods, paymenthandles, payments, settlements,
// refunds).
type Breaker interface {
	// Get returns the breaker for the endpoint class with default config
	Get(endpoint string) CircuitBreaker
	// GetWithConfig returns the breaker for the endpoint class with custom config
	GetWithConfig(endpoint string, config BreakerConfig) CircuitBreaker
}

// CircuitBreaker is a single endpoint-class breaker.
type CircuitBreaker interface {
	// Execute runs fn under breaker protection. Returns ErrCircuitOpen
	// without invoking fn when the circuit is open.
	Execute(ctx context.Context, fn func() error) error
	// State returns the current state
	State() State
	// Reset forces the breaker back to closed
	Reset()
}
