// Package decision implements the confidence-scoring and action-selection
// core: a bounded confidence score, an arbitrage confirmation gate, and a
// priority decision table, assembled into immutable decision records.
package decision

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
)

// Engine assembles DecisionRecords from normalized signal inputs.
// Scoring, gating and selection are pure; the only mutable state is the
// append-only history, which is mutex-guarded.
type Engine struct {
	scorer   *Scorer
	gate     *Gate
	selector *Selector
	logger   *slog.Logger

	now func() time.Time

	mu      sync.Mutex
	history []*domain.DecisionRecord
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a decision engine from configured policy.
func NewEngine(cfg *config.Config, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		scorer:   NewScorer(cfg.Weights),
		gate:     NewGate(cfg.Thresholds),
		selector: NewSelector(cfg.Actions),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate produces one immutable DecisionRecord from the cycle's inputs and
// appends it to the history. Price comparison is only meaningful when both
// sides are known: if either price is 0, the gap is 0 and direction is NONE.
func (e *Engine) Evaluate(in domain.SignalInputs) *domain.DecisionRecord {
	priceDiff := 0.0
	direction := domain.DirectionNone
	if in.CEXPrice > 0 && in.DEXPrice > 0 {
		priceDiff = math.Abs(in.CEXPrice-in.DEXPrice) / in.CEXPrice
		if in.DEXPrice < in.CEXPrice {
			direction = domain.DirectionBuyDEXSellCEX
		} else {
			direction = domain.DirectionBuyCEXSellDEX
		}
	}

	confidence := e.scorer.Score(
		in.SentimentSignal, priceDiff, in.Urgency, in.ArbOpportunity,
		in.PredictedPhase, in.RiskLevel,
	)

	confirmed := e.gate.Confirmed(GateInput{
		Sentiment:      in.SentimentSignal,
		PriceDiffPct:   priceDiff,
		DEXPrice:       in.DEXPrice,
		ArbOpportunity: in.ArbOpportunity,
		Confidence:     confidence,
		Phase:          in.PredictedPhase,
	})

	action := e.selector.Select(confirmed, confidence, in.RiskLevel)

	rec := &domain.DecisionRecord{
		Token:           in.Token,
		Timestamp:       e.now().UTC(),
		CEXPrice:        in.CEXPrice,
		DEXPrice:        in.DEXPrice,
		SentimentSignal: in.SentimentSignal,
		SignalType:      in.SignalType,
		Urgency:         in.Urgency,
		MarketPhase:     in.PredictedPhase,
		RiskLevel:       in.RiskLevel,
		PriceDiffPct:    priceDiff,
		Direction:       direction,
		ConfidenceScore: confidence,
		ArbConfirmed:    confirmed,
		Action:          action,
		Reason: fmt.Sprintf("sentiment=%.3f price_diff=%.2f%% phase=%s risk=%s",
			in.SentimentSignal, priceDiff*100, in.PredictedPhase, in.RiskLevel),
	}

	e.mu.Lock()
	e.history = append(e.history, rec)
	e.mu.Unlock()

	e.logger.Info("decision",
		"token", rec.Token,
		"cex_price", rec.CEXPrice,
		"dex_price", rec.DEXPrice,
		"price_diff_pct", rec.PriceDiffPct*100,
		"sentiment", rec.SentimentSignal,
		"confidence", rec.ConfidenceScore,
		"arb_confirmed", rec.ArbConfirmed,
		"action", rec.Action,
	)

	return rec
}

// History returns a copy of the decision history, oldest first.
func (e *Engine) History() []*domain.DecisionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*domain.DecisionRecord, len(e.history))
	copy(out, e.history)
	return out
}
