// Package storage defines the persistence interfaces for the trade ledger and
// the decision history, with file, memory, postgres and clickhouse backends.
package storage

import (
	"context"

	"bnb-arb-agent/internal/domain"
)

// LedgerStore is the append-only trade ledger. Entries are immutable once
// appended; there is no update or delete surface.
type LedgerStore interface {
	// Append persists one entry. The entry's LoggedAt is stamped by the store.
	// Returns ErrDuplicateKey if attempt_id already exists.
	Append(ctx context.Context, e *domain.LedgerEntry) error

	// Recent returns the last n entries, oldest first (newest last).
	// n <= 0 returns all entries.
	Recent(ctx context.Context, n int) ([]*domain.LedgerEntry, error)
}

// DecisionStore is the decision-history analytics sink.
type DecisionStore interface {
	// InsertBulk appends a batch of decision records.
	InsertBulk(ctx context.Context, recs []*domain.DecisionRecord) error

	// GetByToken retrieves all stored decisions for a token, oldest first.
	GetByToken(ctx context.Context, token string) ([]*domain.DecisionRecord, error)
}
