package decision

import (
	"testing"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
)

func defaultGate() *Gate {
	return NewGate(config.Default().Thresholds)
}

// Each confirmation path must be sufficient on its own.

func TestConfirmed_SentimentPlusPriceGap(t *testing.T) {
	g := defaultGate()

	// DEX price unavailable keeps the raw-gap path from firing; only the
	// sentiment + gap corroboration can confirm here.
	in := GateInput{
		Sentiment:    0.35,  // > 0.3
		PriceDiffPct: 0.006, // > 0.005
		DEXPrice:     0,
		Phase:        domain.PhaseUnknown,
	}
	if !g.Confirmed(in) {
		t.Error("sentiment + price gap should confirm on its own")
	}
}

func TestConfirmed_LLMFlagPlusConfidence(t *testing.T) {
	g := defaultGate()

	in := GateInput{
		ArbOpportunity: true,
		Confidence:     31, // > 30
		Phase:          domain.PhaseUnknown,
	}
	if !g.Confirmed(in) {
		t.Error("flagged opportunity with sufficient confidence should confirm")
	}
}

func TestConfirmed_RawPriceGap(t *testing.T) {
	g := defaultGate()

	in := GateInput{
		PriceDiffPct: 0.006, // > 0.005
		DEXPrice:     590,   // known
		Phase:        domain.PhaseUnknown,
	}
	if !g.Confirmed(in) {
		t.Error("raw price gap with known DEX price should confirm")
	}
}

func TestConfirmed_RawPriceGap_UnknownDEXPrice(t *testing.T) {
	g := defaultGate()

	in := GateInput{
		PriceDiffPct: 0.006,
		DEXPrice:     0, // unavailable
		Phase:        domain.PhaseUnknown,
	}
	if g.Confirmed(in) {
		t.Error("raw gap must not confirm when DEX price is unavailable")
	}
}

func TestConfirmed_MomentumLowersBar(t *testing.T) {
	g := defaultGate()

	in := GateInput{
		PriceDiffPct: 0.004, // > 0.003 but below every other bar
		Phase:        domain.PhaseMomentumBuilding,
	}
	if !g.Confirmed(in) {
		t.Error("momentum phase should confirm on the lowered bar")
	}
}

func TestConfirmed_AllFalse(t *testing.T) {
	g := defaultGate()

	in := GateInput{
		Sentiment:      0.05,
		PriceDiffPct:   0.0033,
		DEXPrice:       598,
		ArbOpportunity: false,
		Confidence:     25,
		Phase:          domain.PhaseUnknown,
	}
	if g.Confirmed(in) {
		t.Error("no path fires, must not confirm")
	}
}

func TestConfirmed_NegativeSentimentCounts(t *testing.T) {
	g := defaultGate()

	in := GateInput{
		Sentiment:    -0.5, // magnitude above threshold
		PriceDiffPct: 0.006,
		Phase:        domain.PhaseUnknown,
	}
	if !g.Confirmed(in) {
		t.Error("sentiment magnitude should trigger regardless of sign")
	}
}
