package domain

import "time"

// DecisionRecord is the immutable output of one decision cycle for one token.
// It is appended to the engine's history and never mutated afterwards, except
// for ExecutionResult which the execution layer attaches exactly once when the
// action is EXECUTE_TRADE.
type DecisionRecord struct {
	Token     string    `json:"token"`
	Timestamp time.Time `json:"timestamp"` // UTC, stamped at construction

	// Raw inputs snapshot
	CEXPrice        float64     `json:"cex_price"`
	DEXPrice        float64     `json:"dex_price"`
	SentimentSignal float64     `json:"sentiment_signal"`
	SignalType      SignalType  `json:"signal_type"`
	Urgency         Urgency     `json:"urgency"`
	MarketPhase     MarketPhase `json:"market_phase"`
	RiskLevel       RiskLevel   `json:"risk_level"`

	// Derived
	PriceDiffPct float64   `json:"price_diff_pct"` // fraction, e.g. 0.015 = 1.5%; 0 when either price is unavailable
	Direction    Direction `json:"direction"`

	// Scored
	ConfidenceScore int    `json:"confidence_score"` // [0,100]
	ArbConfirmed    bool   `json:"arb_confirmed"`
	Action          Action `json:"action"`

	// Context from the intelligence layer, carried for audit only.
	IntelRecommendation string `json:"intel_recommendation,omitempty"`
	Reason              string `json:"reason"`

	// Present only when action == EXECUTE_TRADE and an execution was attempted
	// (or skipped via the kill switch, in which case status is DISABLED).
	ExecutionResult *ExecutionResult `json:"execution_result,omitempty"`
}

// Prediction is what the on-chain intelligence collaborator returns.
type Prediction struct {
	PredictedPhase MarketPhase
	RiskLevel      RiskLevel
	Confidence     float64 // the intelligence layer's own confidence in [0,1]
	Recommendation string
}

// SentimentReading is what the sentiment collaborator returns.
type SentimentReading struct {
	FinalSignal    float64 // fused sentiment in [-1, 1]
	SignalType     SignalType
	Urgency        Urgency
	ArbOpportunity bool
	Insight        string
}
