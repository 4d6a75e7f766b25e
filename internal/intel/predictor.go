package intel

import (
	"fmt"

	"bnb-arb-agent/internal/domain"
)

// Volatility-score bands for the risk grade.
const (
	volHighRisk   = 40
	volMediumRisk = 20
)

// predictPhase folds monitor readings into per-phase scores and picks the
// strongest. The weights are policy carried over from live tuning, not
// derived quantities.
func predictPhase(readings []Reading) domain.Prediction {
	scores := map[domain.MarketPhase]int{
		domain.PhaseMomentumBuilding:        0,
		domain.PhaseDistribution:            0,
		domain.PhaseAccumulation:            0,
		domain.PhaseVolatilitySpikeIncoming: 0,
	}

	for _, r := range readings {
		switch r.Monitor {
		case "pressure":
			switch r.Signal {
			case SignalBullish:
				scores[domain.PhaseMomentumBuilding] += 25
			case SignalBearish:
				scores[domain.PhaseDistribution] += 20
			}

		case "liquidity":
			switch r.Signal {
			case SignalInflow:
				scores[domain.PhaseAccumulation] += 20
			case SignalOutflow:
				scores[domain.PhaseDistribution] += 25
				scores[domain.PhaseVolatilitySpikeIncoming] += 10
			}

		case "narrative":
			switch r.Signal {
			case "LISTING_CATALYST":
				scores[domain.PhaseMomentumBuilding] += 30
				scores[domain.PhaseVolatilitySpikeIncoming] += 25
			case "PUMP_NARRATIVE":
				scores[domain.PhaseMomentumBuilding] += 20
			case "ACCUMULATION":
				scores[domain.PhaseAccumulation] += 25
			case "DUMP_NARRATIVE", "FEAR_NARRATIVE":
				scores[domain.PhaseDistribution] += 25
			}

		case "whales":
			switch r.Signal {
			case SignalAccumulation:
				scores[domain.PhaseAccumulation] += 30
			case SignalDistribution:
				scores[domain.PhaseDistribution] += 30
			}
			if r.Metrics["large_tx_count"] > 5 {
				scores[domain.PhaseVolatilitySpikeIncoming] += 20
			}
		}
	}

	best := domain.PhaseUnknown
	bestScore := 0
	// Deterministic tie-break: fixed evaluation order, strict improvement.
	for _, phase := range []domain.MarketPhase{
		domain.PhaseMomentumBuilding,
		domain.PhaseAccumulation,
		domain.PhaseDistribution,
		domain.PhaseVolatilitySpikeIncoming,
	} {
		if scores[phase] > bestScore {
			best = phase
			bestScore = scores[phase]
		}
	}

	volScore := scores[domain.PhaseVolatilitySpikeIncoming]
	risk := domain.RiskLow
	switch {
	case volScore > volHighRisk:
		risk = domain.RiskHigh
	case volScore > volMediumRisk:
		risk = domain.RiskMedium
	}

	confidence := float64(bestScore) / 100
	if confidence > 1 {
		confidence = 1
	}

	return domain.Prediction{
		PredictedPhase: best,
		RiskLevel:      risk,
		Confidence:     confidence,
		Recommendation: recommendation(best, bestScore),
	}
}

func recommendation(phase domain.MarketPhase, score int) string {
	var rec string
	switch phase {
	case domain.PhaseMomentumBuilding:
		rec = "WATCH FOR ENTRY: momentum building, consider a small position"
	case domain.PhaseDistribution:
		rec = "CAUTION: whales may be distributing, avoid buying"
	case domain.PhaseAccumulation:
		rec = "POTENTIAL OPPORTUNITY: smart money accumulating"
	case domain.PhaseVolatilitySpikeIncoming:
		rec = "HIGH VOLATILITY EXPECTED: reduce position size, widen stops"
	default:
		return "MONITORING"
	}
	return fmt.Sprintf("%s (confidence %d/100)", rec, score)
}
