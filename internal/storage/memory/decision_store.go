package memory

import (
	"context"
	"sync"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

// DecisionStore is an in-memory implementation of storage.DecisionStore.
type DecisionStore struct {
	mu   sync.RWMutex
	recs []*domain.DecisionRecord
}

// Compile-time interface check.
var _ storage.DecisionStore = (*DecisionStore)(nil)

// NewDecisionStore creates a new in-memory decision store.
func NewDecisionStore() *DecisionStore {
	return &DecisionStore{}
}

// InsertBulk appends a batch of decision records.
func (s *DecisionStore) InsertBulk(_ context.Context, recs []*domain.DecisionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for _, r := range recs {
		if r == nil || r.Token == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		cp := *r
		s.recs = append(s.recs, &cp)
	}
	return nil
}

// GetByToken retrieves all stored decisions for a token, oldest first.
func (s *DecisionStore) GetByToken(_ context.Context, token string) ([]*domain.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.DecisionRecord
	for _, r := range s.recs {
		if r.Token == token {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
