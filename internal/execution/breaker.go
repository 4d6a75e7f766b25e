// Package execution is the safety layer between a trade decision and the
// chain. Nothing in here decides whether a trade is worth making; it decides
// whether an already-approved trade is allowed to proceed, runs the two swap
// legs, and records what happened.
package execution

import (
	"log/slog"
	"sync"
	"time"

	"bnb-arb-agent/internal/domain"
)

// CircuitBreaker halts trading after repeated consecutive failures.
// Two states: closed (trading allowed) and open (trading blocked until the
// cooldown elapses). A blocked attempt is not itself a failure.
type CircuitBreaker struct {
	mu sync.Mutex

	maxFailures int
	cooldown    time.Duration
	logger      *slog.Logger
	now         func() time.Time

	failures  int
	open      bool
	trippedAt time.Time
}

// BreakerOption configures a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithBreakerClock overrides the time source.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *CircuitBreaker) {
		b.now = now
	}
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration, logger *slog.Logger, opts ...BreakerOption) *CircuitBreaker {
	b := &CircuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AllowTrade reports whether a trade may proceed. An open breaker whose
// cooldown has elapsed resets to closed and allows the trade.
func (b *CircuitBreaker) AllowTrade() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}

	if b.now().Sub(b.trippedAt) >= b.cooldown {
		b.logger.Info("circuit breaker cooldown elapsed, resetting",
			"tripped_at", b.trippedAt,
		)
		b.reset()
		return true
	}

	return false
}

// RecordSuccess closes the breaker and clears the failure count.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

// RecordFailure counts one failed attempt; reaching the limit trips the
// breaker open.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.failures >= b.maxFailures && !b.open {
		b.open = true
		b.trippedAt = b.now()
		b.logger.Warn("circuit breaker tripped",
			"consecutive_failures", b.failures,
			"cooldown", b.cooldown,
		)
	}
}

// Status returns a snapshot of the breaker state.
func (b *CircuitBreaker) Status() domain.BreakerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := domain.BreakerStatus{
		IsOpen:              b.open,
		ConsecutiveFailures: b.failures,
	}
	if b.open {
		t := b.trippedAt
		st.TrippedAt = &t
	}
	return st
}

// reset assumes the lock is held.
func (b *CircuitBreaker) reset() {
	b.failures = 0
	b.open = false
	b.trippedAt = time.Time{}
}
