// Package reporting renders the trade ledger into an audit report.
package reporting

import (
	"time"

	"bnb-arb-agent/internal/domain"
)

// Report is the ledger audit report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	WindowSize  int // number of ledger entries covered; 0 = all

	// Attempt summary
	Summary Summary

	// Per-token breakdown (sorted by token)
	TokenBreakdown []TokenBreakdownRow

	// PARTIAL attempts with capital parked in the target token
	StuckCapital []StuckCapitalRow

	// Most recent attempts, newest last
	RecentAttempts []AttemptRow
}

// Summary aggregates attempt outcomes across the window.
type Summary struct {
	TotalAttempts int
	ByStatus      map[domain.ExecutionStatus]int

	// SuccessRate is successes over attempts that reached the swap legs
	// (SUCCESS + PARTIAL + FAILED). 0 when nothing reached them.
	SuccessRate float64

	BreakerBlocks    int
	PreflightRejects int
}

// TokenBreakdownRow is one row in the per-token table.
type TokenBreakdownRow struct {
	Token         string
	Attempts      int
	Successes     int
	Partials      int
	Failures      int
	AvgConfidence float64
	AvgProfitPct  float64 // mean profit estimate, fraction
}

// StuckCapitalRow flags a PARTIAL attempt for manual recovery.
type StuckCapitalRow struct {
	AttemptID  string
	Token      string
	BuyTxHash  string
	Amount     float64
	ExecutedAt time.Time
}

// AttemptRow is one row in the recent-attempts table.
type AttemptRow struct {
	AttemptID  string
	Token      string
	Direction  domain.Direction
	Status     domain.ExecutionStatus
	Confidence int
	ProfitPct  float64
	ExecutedAt time.Time
}
