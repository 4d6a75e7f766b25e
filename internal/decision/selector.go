package decision

import (
	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
)

// Selector maps (confirmed, confidence, risk) to a discrete action.
// It is a pure decision table evaluated in strict priority order; the first
// matching rule wins. Confidence arrives pre-clamped to [0,100], so every
// action is reachable.
type Selector struct {
	c config.ActionCutoffs
}

// NewSelector creates a selector with the given cutoffs.
func NewSelector(c config.ActionCutoffs) *Selector {
	return &Selector{c: c}
}

// Select returns the action for one decision cycle.
func (s *Selector) Select(arbConfirmed bool, confidence int, risk domain.RiskLevel) domain.Action {
	if risk == domain.RiskHigh && confidence < s.c.HighRiskGate {
		return domain.ActionHold
	}
	if !arbConfirmed || confidence < s.c.MinConfidence {
		return domain.ActionHold
	}
	if confidence >= s.c.ExecuteConfidence {
		return domain.ActionExecuteTrade
	}
	if confidence >= s.c.PaperConfidence {
		return domain.ActionPaperTrade
	}
	return domain.ActionMonitor
}
