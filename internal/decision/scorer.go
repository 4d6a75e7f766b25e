package decision

import (
	"math"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
)

// Scorer computes the bounded confidence score from one cycle's signals.
// It is a fixed-weight linear model, deliberately simple and fully
// deterministic; the weights are configurable policy.
type Scorer struct {
	w config.ScoringWeights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w config.ScoringWeights) *Scorer {
	return &Scorer{w: w}
}

// Score returns the confidence score in [0,100].
// priceDiffPct is a fraction (0.015 = 1.5%). Unknown enum values contribute
// the neutral bonus rather than failing.
func (s *Scorer) Score(
	sentiment float64,
	priceDiffPct float64,
	urgency domain.Urgency,
	arbOpportunity bool,
	phase domain.MarketPhase,
	risk domain.RiskLevel,
) int {
	base := math.Abs(sentiment)*s.w.Sentiment + priceDiffPct*s.w.PriceDiff

	switch urgency {
	case domain.UrgencyHigh:
		base += float64(s.w.UrgencyHigh)
	case domain.UrgencyMedium:
		base += float64(s.w.UrgencyMedium)
	}

	if arbOpportunity {
		base += float64(s.w.ArbFlag)
	}

	adjusted := base + float64(s.phaseBonus(phase)) + float64(s.riskBonus(risk))

	score := int(math.Round(adjusted))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (s *Scorer) phaseBonus(phase domain.MarketPhase) int {
	switch phase {
	case domain.PhaseMomentumBuilding:
		return s.w.PhaseMomentum
	case domain.PhaseAccumulation:
		return s.w.PhaseAccum
	case domain.PhaseDistribution:
		return s.w.PhaseDistrib
	case domain.PhaseVolatilitySpikeIncoming:
		return s.w.PhaseVolSpike
	default:
		return 0
	}
}

func (s *Scorer) riskBonus(risk domain.RiskLevel) int {
	switch risk {
	case domain.RiskHigh:
		return s.w.RiskHigh
	case domain.RiskLow:
		return s.w.RiskLow
	default:
		return 0
	}
}
