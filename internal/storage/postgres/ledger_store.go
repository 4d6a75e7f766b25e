package postgres

import (
	"context"
	"fmt"
	"time"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// Append persists one entry. Returns ErrDuplicateKey if attempt_id exists.
func (s *LedgerStore) Append(ctx context.Context, e *domain.LedgerEntry) error {
	if e == nil || e.AttemptID == "" {
		return storage.ErrInvalidInput
	}

	loggedAt := time.Now().UTC()

	query := `
		INSERT INTO trade_ledger (
			attempt_id, token, direction, status, reason,
			token_in, token_out, amount,
			buy_tx_hash, sell_tx_hash, profit_estimate_pct,
			market_phase, sentiment_signal, confidence_score, risk_level,
			breaker_is_open, breaker_failures, breaker_tripped_at,
			executed_at, logged_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20
		)
	`

	_, err := s.pool.Exec(ctx, query,
		e.AttemptID, e.Token, e.Direction, e.Status, e.Reason,
		e.TokenIn, e.TokenOut, e.Amount,
		e.BuyTxHash, e.SellTxHash, e.ProfitEstimatePct,
		e.MarketPhase, e.SentimentSignal, e.ConfidenceScore, e.RiskLevel,
		e.Breaker.IsOpen, e.Breaker.ConsecutiveFailures, e.Breaker.TrippedAt,
		e.ExecutedAt, loggedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}

	e.LoggedAt = loggedAt
	return nil
}

// Recent returns the last n entries, oldest first. n <= 0 returns all.
func (s *LedgerStore) Recent(ctx context.Context, n int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT attempt_id, token, direction, status, reason,
		       token_in, token_out, amount,
		       buy_tx_hash, sell_tx_hash, profit_estimate_pct,
		       market_phase, sentiment_signal, confidence_score, risk_level,
		       breaker_is_open, breaker_failures, breaker_tripped_at,
		       executed_at, logged_at
		FROM trade_ledger
		ORDER BY logged_at DESC, attempt_id DESC
	`
	args := []any{}
	if n > 0 {
		query += " LIMIT $1"
		args = append(args, n)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		e := &domain.LedgerEntry{}
		err := rows.Scan(
			&e.AttemptID, &e.Token, &e.Direction, &e.Status, &e.Reason,
			&e.TokenIn, &e.TokenOut, &e.Amount,
			&e.BuyTxHash, &e.SellTxHash, &e.ProfitEstimatePct,
			&e.MarketPhase, &e.SentimentSignal, &e.ConfidenceScore, &e.RiskLevel,
			&e.Breaker.IsOpen, &e.Breaker.ConsecutiveFailures, &e.Breaker.TrippedAt,
			&e.ExecutedAt, &e.LoggedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}

	// Query returns newest first; callers expect oldest first, newest last.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
