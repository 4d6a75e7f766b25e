package execution

import (
	"log/slog"
	"testing"
	"time"
)

func testBreaker(maxFailures int, cooldown time.Duration, now *time.Time) *CircuitBreaker {
	return NewCircuitBreaker(maxFailures, cooldown, slog.New(slog.DiscardHandler),
		WithBreakerClock(func() time.Time { return *now }))
}

func TestBreaker_StartsClosed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := testBreaker(3, 15*time.Minute, &now)

	if !b.AllowTrade() {
		t.Error("new breaker must allow trades")
	}
	st := b.Status()
	if st.IsOpen || st.ConsecutiveFailures != 0 || st.TrippedAt != nil {
		t.Errorf("unexpected initial status: %+v", st)
	}
}

func TestBreaker_TripsAtMaxFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := testBreaker(3, 15*time.Minute, &now)

	b.RecordFailure()
	b.RecordFailure()
	if !b.AllowTrade() {
		t.Fatal("breaker must stay closed below the failure limit")
	}

	b.RecordFailure()
	if b.AllowTrade() {
		t.Fatal("breaker must open at the failure limit")
	}

	st := b.Status()
	if !st.IsOpen || st.ConsecutiveFailures != 3 {
		t.Errorf("unexpected status after trip: %+v", st)
	}
	if st.TrippedAt == nil || !st.TrippedAt.Equal(now) {
		t.Errorf("TrippedAt not stamped: %v", st.TrippedAt)
	}
}

func TestBreaker_SuccessResets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := testBreaker(3, 15*time.Minute, &now)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if !b.AllowTrade() {
		t.Error("success must clear the consecutive failure count")
	}
}

func TestBreaker_CooldownReopens(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := testBreaker(3, 15*time.Minute, &now)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	if b.AllowTrade() {
		t.Fatal("breaker should be open")
	}

	now = now.Add(14 * time.Minute)
	if b.AllowTrade() {
		t.Fatal("breaker must stay open inside the cooldown window")
	}

	now = now.Add(time.Minute)
	if !b.AllowTrade() {
		t.Fatal("breaker must reset once the cooldown elapses")
	}

	st := b.Status()
	if st.IsOpen || st.ConsecutiveFailures != 0 || st.TrippedAt != nil {
		t.Errorf("breaker did not fully reset: %+v", st)
	}
}

func TestBreaker_BlockedCheckIsNotAFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := testBreaker(3, 15*time.Minute, &now)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	for i := 0; i < 10; i++ {
		b.AllowTrade()
	}

	if got := b.Status().ConsecutiveFailures; got != 3 {
		t.Errorf("denied checks must not increment failures, got %d", got)
	}
}
