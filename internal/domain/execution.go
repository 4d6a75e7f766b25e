package domain

import "time"

// ExecutionStatus classifies the terminal state of one execution attempt.
type ExecutionStatus string

const (
	// StatusSuccess means both swap legs confirmed.
	StatusSuccess ExecutionStatus = "SUCCESS"

	// StatusPartial means the buy leg confirmed but the sell leg failed;
	// capital is stuck in the intermediate asset and the buy tx reference
	// is retained for manual recovery.
	StatusPartial ExecutionStatus = "PARTIAL"

	// StatusFailed means the buy leg never succeeded.
	StatusFailed ExecutionStatus = "FAILED"

	// StatusPreflightFailed means a pre-flight validation rejected the attempt
	// before any swap was submitted.
	StatusPreflightFailed ExecutionStatus = "PREFLIGHT_FAILED"

	// StatusBlockedBreaker means the circuit breaker refused the attempt.
	// Not a failure of this cycle's decision; does not penalize the breaker.
	StatusBlockedBreaker ExecutionStatus = "BLOCKED_CIRCUIT_BREAKER"

	// StatusDisabled means the execution kill switch is off; the coordinator
	// was never invoked.
	StatusDisabled ExecutionStatus = "DISABLED"
)

// ExecutionResult is the tagged outcome of one execution attempt.
type ExecutionResult struct {
	AttemptID string          `json:"attempt_id"`
	Token     string          `json:"token"`
	Direction Direction       `json:"direction"`
	Status    ExecutionStatus `json:"status"`
	Reason    string          `json:"reason,omitempty"`

	TokenIn  string  `json:"token_in"`
	TokenOut string  `json:"token_out"`
	Amount   float64 `json:"amount"` // trade size in base-asset units

	BuyTxHash  string `json:"buy_tx_hash,omitempty"`
	SellTxHash string `json:"sell_tx_hash,omitempty"`

	ProfitEstimatePct float64   `json:"profit_estimate_pct"` // fraction
	Timestamp         time.Time `json:"timestamp"`           // UTC
}

// BreakerStatus is a read-only snapshot of circuit breaker state.
type BreakerStatus struct {
	IsOpen              bool       `json:"is_open"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	TrippedAt           *time.Time `json:"tripped_at,omitempty"`
}

// LedgerEntry is one persisted, immutable record of an execution attempt.
// The schema is fixed so downstream audit tooling has a stable contract.
type LedgerEntry struct {
	AttemptID string          `json:"attempt_id"`
	Token     string          `json:"token"`
	Direction Direction       `json:"direction"`
	Status    ExecutionStatus `json:"status"`
	Reason    string          `json:"reason,omitempty"`

	TokenIn  string  `json:"token_in"`
	TokenOut string  `json:"token_out"`
	Amount   float64 `json:"amount"`

	BuyTxHash  string `json:"buy_tx_hash,omitempty"`
	SellTxHash string `json:"sell_tx_hash,omitempty"`

	ProfitEstimatePct float64 `json:"profit_estimate_pct"`

	// Decision context at time of execution.
	MarketPhase     MarketPhase `json:"market_phase"`
	SentimentSignal float64     `json:"sentiment_signal"`
	ConfidenceScore int         `json:"confidence_score"`
	RiskLevel       RiskLevel   `json:"risk_level"`

	// Circuit breaker snapshot at time of logging.
	Breaker BreakerStatus `json:"circuit_breaker"`

	ExecutedAt time.Time `json:"executed_at"`
	LoggedAt   time.Time `json:"logged_at"`
}

// NewLedgerEntry flattens an execution result and its decision context into
// a ledger entry. LoggedAt is stamped by the ledger on append.
func NewLedgerEntry(res *ExecutionResult, rec *DecisionRecord, breaker BreakerStatus) *LedgerEntry {
	return &LedgerEntry{
		AttemptID:         res.AttemptID,
		Token:             res.Token,
		Direction:         res.Direction,
		Status:            res.Status,
		Reason:            res.Reason,
		TokenIn:           res.TokenIn,
		TokenOut:          res.TokenOut,
		Amount:            res.Amount,
		BuyTxHash:         res.BuyTxHash,
		SellTxHash:        res.SellTxHash,
		ProfitEstimatePct: res.ProfitEstimatePct,
		MarketPhase:       rec.MarketPhase,
		SentimentSignal:   rec.SentimentSignal,
		ConfidenceScore:   rec.ConfidenceScore,
		RiskLevel:         rec.RiskLevel,
		Breaker:           breaker,
		ExecutedAt:        res.Timestamp,
	}
}
