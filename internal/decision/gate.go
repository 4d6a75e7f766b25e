package decision

import (
	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
)

// Gate decides whether an arbitrage opportunity is confirmed.
//
// Confirmation is an OR of four independent paths: any sufficiently strong
// individual signal can trigger, since requiring all signals to agree would
// make the system too conservative to ever act. This trades false negatives
// against false positives and is an explicit policy choice.
type Gate struct {
	t config.Thresholds
}

// NewGate creates a gate with the given thresholds.
func NewGate(t config.Thresholds) *Gate {
	return &Gate{t: t}
}

// GateInput carries everything the confirmation predicate looks at.
type GateInput struct {
	Sentiment      float64
	PriceDiffPct   float64 // fraction; 0 when either price is unavailable
	DEXPrice       float64 // 0 = unavailable
	ArbOpportunity bool
	Confidence     int
	Phase          domain.MarketPhase
}

// Confirmed reports whether any confirmation path fires.
func (g *Gate) Confirmed(in GateInput) bool {
	sentiment := in.Sentiment
	if sentiment < 0 {
		sentiment = -sentiment
	}

	// Sentiment and price gap corroborate each other.
	if sentiment > g.t.Sentiment && in.PriceDiffPct > g.t.PriceDiff {
		return true
	}

	// The upstream LLM flagged the opportunity and scoring backs it up.
	if in.ArbOpportunity && in.Confidence > g.t.GateMinScore {
		return true
	}

	// A raw price gap alone suffices when the DEX side is actually known.
	if in.PriceDiffPct > g.t.RawPriceGap && in.DEXPrice > 0 {
		return true
	}

	// Momentum lowers the bar.
	if in.Phase == domain.PhaseMomentumBuilding && in.PriceDiffPct > g.t.MomentumGap {
		return true
	}

	return false
}
