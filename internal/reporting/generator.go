package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

// Keep the recent-attempts table readable.
const recentAttemptsLimit = 10

// Generator builds audit reports from the trade ledger.
type Generator struct {
	ledger storage.LedgerStore
	now    func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorClock overrides the timestamp source.
func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator over a ledger store.
func NewGenerator(ledger storage.LedgerStore, opts ...GeneratorOption) *Generator {
	g := &Generator{ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a report over the last window entries. window <= 0 covers
// the whole ledger.
func (g *Generator) Generate(ctx context.Context, window int) (*Report, error) {
	entries, err := g.ledger.Recent(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	r := &Report{
		GeneratedAt: g.now().UTC(),
		WindowSize:  window,
		Summary: Summary{
			TotalAttempts: len(entries),
			ByStatus:      make(map[domain.ExecutionStatus]int),
		},
	}

	byToken := make(map[string]*TokenBreakdownRow)
	var settled, successes int

	for _, e := range entries {
		r.Summary.ByStatus[e.Status]++

		switch e.Status {
		case domain.StatusSuccess:
			settled++
			successes++
		case domain.StatusPartial, domain.StatusFailed:
			settled++
		case domain.StatusBlockedBreaker:
			r.Summary.BreakerBlocks++
		case domain.StatusPreflightFailed:
			r.Summary.PreflightRejects++
		}

		row, ok := byToken[e.Token]
		if !ok {
			row = &TokenBreakdownRow{Token: e.Token}
			byToken[e.Token] = row
		}
		row.Attempts++
		row.AvgConfidence += float64(e.ConfidenceScore)
		row.AvgProfitPct += e.ProfitEstimatePct
		switch e.Status {
		case domain.StatusSuccess:
			row.Successes++
		case domain.StatusPartial:
			row.Partials++
		case domain.StatusFailed:
			row.Failures++
		}

		if e.Status == domain.StatusPartial {
			r.StuckCapital = append(r.StuckCapital, StuckCapitalRow{
				AttemptID:  e.AttemptID,
				Token:      e.Token,
				BuyTxHash:  e.BuyTxHash,
				Amount:     e.Amount,
				ExecutedAt: e.ExecutedAt,
			})
		}
	}

	if settled > 0 {
		r.Summary.SuccessRate = float64(successes) / float64(settled)
	}

	for _, row := range byToken {
		row.AvgConfidence /= float64(row.Attempts)
		row.AvgProfitPct /= float64(row.Attempts)
		r.TokenBreakdown = append(r.TokenBreakdown, *row)
	}
	sort.Slice(r.TokenBreakdown, func(i, j int) bool {
		return r.TokenBreakdown[i].Token < r.TokenBreakdown[j].Token
	})

	recent := entries
	if len(recent) > recentAttemptsLimit {
		recent = recent[len(recent)-recentAttemptsLimit:]
	}
	for _, e := range recent {
		r.RecentAttempts = append(r.RecentAttempts, AttemptRow{
			AttemptID:  e.AttemptID,
			Token:      e.Token,
			Direction:  e.Direction,
			Status:     e.Status,
			Confidence: e.ConfidenceScore,
			ProfitPct:  e.ProfitEstimatePct,
			ExecutedAt: e.ExecutedAt,
		})
	}

	return r, nil
}
