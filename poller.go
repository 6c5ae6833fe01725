package payconf

import (
	"context"
	"time"
)

// PollResult carries the outcome of a bounded poll.
type PollResult[T any] struct {
	// Outcome is the last fetched outcome. When Terminal is false it is
	// the final non-terminal observation (useful for reporting), or the
	// zero value if no fetch succeeded.
	Outcome T
	// Terminal reports whether the predicate held on a fetched outcome.
	Terminal bool
	// Attempts is the number of fetches issued.
	Attempts int
}

// Exhausted reports whether the poll budget was spent without a terminal
// outcome. Callers must treat this as a soft timeout, not a hard failure.
func (r PollResult[T]) Exhausted() bool {
	return !r.Terminal
}

// Poller is a bounded-retry "poll until predicate or exhausted" primitive.
// It issues at most Attempts fetches, sleeping Interval between non-terminal
// attempts, and never sleeps after the final attempt or a terminal result.
type Poller[T any] struct {
	attempts int
	interval time.Duration

	// sleep is injectable for tests; nil means real time.
	sleep func(ctx context.Context, d time.Duration) error

	// onAttempt, if set, is invoked before each fetch with the 1-based
	// attempt number. Used to drive metrics and events.
	onAttempt func(attempt int)
}

// PollerOption configures a Poller.
type PollerOption[T any] func(*Poller[T])

// WithSleeper overrides the sleep function. Intended for tests.
func WithSleeper[T any](sleep func(ctx context.Context, d time.Duration) error) PollerOption[T] {
	return func(p *Poller[T]) {
		p.sleep = sleep
	}
}

// WithOnAttempt sets a hook invoked before each fetch.
func WithOnAttempt[T any](hook func(attempt int)) PollerOption[T] {
	return func(p *Poller[T]) {
		p.onAttempt = hook
	}
}

// NewPoller creates a poller with the given attempt budget and interval.
func NewPoller[T any](attempts int, interval time.Duration, opts ...PollerOption[T]) *Poller[T] {
	p := &Poller[T]{
		attempts: attempts,
		interval: interval,
		sleep:    sleepFor,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll invokes fetch until isTerminal holds, the attempt budget is spent, or
// fetch fails. Fetch failures are not swallowed: they abort the loop and
// propagate immediately, distinct from "not yet terminal".
func (p *Poller[T]) Poll(ctx context.Context, fetch func(context.Context) (T, error), isTerminal func(T) bool) (PollResult[T], error) {
	var result PollResult[T]

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if p.onAttempt != nil {
			p.onAttempt(attempt)
		}

		outcome, err := fetch(ctx)
		result.Attempts = attempt
		if err != nil {
			return result, err
		}
		result.Outcome = outcome

		if isTerminal(outcome) {
			result.Terminal = true
			return result, nil
		}

		// No sleep after the final attempt.
		if attempt == p.attempts {
			break
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return result, err
		}
	}

	return result, nil
}

// sleepFor sleeps for d or until the context ends.
func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
