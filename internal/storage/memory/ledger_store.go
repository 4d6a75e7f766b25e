package memory

import (
	"context"
	"sync"
	"time"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry
	ids     map[string]struct{}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{ids: make(map[string]struct{})}
}

// Append adds one entry. Returns ErrDuplicateKey if attempt_id exists.
func (s *LedgerStore) Append(_ context.Context, e *domain.LedgerEntry) error {
	if e == nil || e.AttemptID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.AttemptID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *e
	cp.LoggedAt = time.Now().UTC()
	s.entries = append(s.entries, &cp)
	s.ids[cp.AttemptID] = struct{}{}
	return nil
}

// Recent returns the last n entries, oldest first. n <= 0 returns all.
func (s *LedgerStore) Recent(_ context.Context, n int) ([]*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if n > 0 && n < len(s.entries) {
		start = len(s.entries) - n
	}

	out := make([]*domain.LedgerEntry, 0, len(s.entries)-start)
	for _, e := range s.entries[start:] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
