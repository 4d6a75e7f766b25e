package clickhouse

import (
	"context"
	"fmt"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

// DecisionStore implements storage.DecisionStore using ClickHouse.
// Decision history is analytics data: high-volume, insert-heavy, queried in
// aggregate, which is what the columnar backend is for.
type DecisionStore struct {
	conn *Conn
}

// NewDecisionStore creates a new DecisionStore.
func NewDecisionStore(conn *Conn) *DecisionStore {
	return &DecisionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DecisionStore = (*DecisionStore)(nil)

// InsertBulk appends a batch of decision records.
func (s *DecisionStore) InsertBulk(ctx context.Context, recs []*domain.DecisionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for _, r := range recs {
		if r == nil || r.Token == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO decision_history (
			token, timestamp, cex_price, dex_price,
			sentiment_signal, signal_type, urgency, market_phase, risk_level,
			price_diff_pct, direction, confidence_score, arb_confirmed, action
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range recs {
		err = batch.Append(
			r.Token, r.Timestamp, r.CEXPrice, r.DEXPrice,
			r.SentimentSignal, string(r.SignalType), string(r.Urgency),
			string(r.MarketPhase), string(r.RiskLevel),
			r.PriceDiffPct, string(r.Direction),
			int32(r.ConfidenceScore), r.ArbConfirmed, string(r.Action),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves all stored decisions for a token, oldest first.
func (s *DecisionStore) GetByToken(ctx context.Context, token string) ([]*domain.DecisionRecord, error) {
	query := `
		SELECT token, timestamp, cex_price, dex_price,
		       sentiment_signal, signal_type, urgency, market_phase, risk_level,
		       price_diff_pct, direction, confidence_score, arb_confirmed, action
		FROM decision_history
		WHERE token = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("query decision history: %w", err)
	}
	defer rows.Close()

	var recs []*domain.DecisionRecord
	for rows.Next() {
		r := &domain.DecisionRecord{}
		var signalType, urgency, phase, risk, direction, action string
		var confidence int32
		err := rows.Scan(
			&r.Token, &r.Timestamp, &r.CEXPrice, &r.DEXPrice,
			&r.SentimentSignal, &signalType, &urgency, &phase, &risk,
			&r.PriceDiffPct, &direction, &confidence, &r.ArbConfirmed, &action,
		)
		if err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		r.SignalType = domain.SignalType(signalType)
		r.Urgency = domain.Urgency(urgency)
		r.MarketPhase = domain.MarketPhase(phase)
		r.RiskLevel = domain.RiskLevel(risk)
		r.Direction = domain.Direction(direction)
		r.ConfidenceScore = int(confidence)
		r.Action = domain.Action(action)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision rows: %w", err)
	}

	return recs, nil
}
