package intel

import (
	"context"
	"log/slog"

	"bnb-arb-agent/internal/domain"
)

// Aggregator runs all monitors for a token and folds their readings into a
// phase prediction.
type Aggregator struct {
	monitors []Monitor
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator over the given monitors.
func NewAggregator(monitors []Monitor, logger *slog.Logger) *Aggregator {
	return &Aggregator{monitors: monitors, logger: logger}
}

// Run executes every monitor and returns the folded prediction together with
// the raw readings. A failing monitor contributes a NEUTRAL reading.
func (a *Aggregator) Run(ctx context.Context, token string, texts []string) (domain.Prediction, []Reading) {
	readings := make([]Reading, 0, len(a.monitors))

	for _, m := range a.monitors {
		if tm, ok := m.(TextMonitor); ok {
			tm.SetTexts(texts)
		}

		reading, err := m.Fetch(ctx, token)
		if err != nil {
			a.logger.Warn("monitor failed",
				"monitor", m.Name(),
				"token", token,
				"error", err,
			)
			reading = NeutralReading(m.Name())
		}
		readings = append(readings, reading)
	}

	pred := predictPhase(readings)
	a.logger.Info("intelligence pass complete",
		"token", token,
		"phase", pred.PredictedPhase,
		"risk", pred.RiskLevel,
		"confidence", pred.Confidence,
	)
	return pred, readings
}

// Predict runs the monitors and returns only the folded prediction.
func (a *Aggregator) Predict(ctx context.Context, token string, texts []string) domain.Prediction {
	pred, _ := a.Run(ctx, token, texts)
	return pred
}
