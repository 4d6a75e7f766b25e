package intel

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"bnb-arb-agent/internal/domain"
)

type scriptedMonitor struct {
	name    string
	reading Reading
	err     error
	texts   []string
}

func (m *scriptedMonitor) Name() string { return m.name }

func (m *scriptedMonitor) Fetch(_ context.Context, _ string) (Reading, error) {
	return m.reading, m.err
}

func (m *scriptedMonitor) SetTexts(texts []string) { m.texts = texts }

func TestAggregator_FoldsAllMonitors(t *testing.T) {
	agg := NewAggregator([]Monitor{
		&scriptedMonitor{name: "pressure", reading: Reading{Monitor: "pressure", Signal: SignalBullish}},
		&scriptedMonitor{name: "narrative", reading: Reading{Monitor: "narrative", Signal: "PUMP_NARRATIVE"}},
	}, slog.New(slog.DiscardHandler))

	pred, readings := agg.Run(context.Background(), "BNB", nil)

	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}
	if pred.PredictedPhase != domain.PhaseMomentumBuilding {
		t.Errorf("expected MOMENTUM_BUILDING, got %s", pred.PredictedPhase)
	}
}

func TestAggregator_MonitorFailureDegradesToNeutral(t *testing.T) {
	agg := NewAggregator([]Monitor{
		&scriptedMonitor{name: "liquidity", err: errors.New("upstream down")},
		&scriptedMonitor{name: "pressure", reading: Reading{Monitor: "pressure", Signal: SignalBullish}},
	}, slog.New(slog.DiscardHandler))

	pred, readings := agg.Run(context.Background(), "BNB", nil)

	if readings[0].Signal != SignalNeutral {
		t.Errorf("failed monitor must read NEUTRAL, got %s", readings[0].Signal)
	}
	// The healthy monitor still drives the prediction.
	if pred.PredictedPhase != domain.PhaseMomentumBuilding {
		t.Errorf("expected MOMENTUM_BUILDING, got %s", pred.PredictedPhase)
	}
}

func TestAggregator_TextsReachTextMonitors(t *testing.T) {
	tm := &scriptedMonitor{name: "narrative", reading: NeutralReading("narrative")}
	agg := NewAggregator([]Monitor{tm}, slog.New(slog.DiscardHandler))

	texts := []string{"listing announcement", "whale alert"}
	agg.Run(context.Background(), "BNB", texts)

	if len(tm.texts) != 2 {
		t.Errorf("texts not passed through, got %v", tm.texts)
	}
}
