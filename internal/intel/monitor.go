// Package intel watches on-chain and ambient market activity and folds the
// observations into a market-phase prediction. Every monitor is best effort:
// a dead upstream degrades that monitor to NEUTRAL instead of failing the
// cycle.
package intel

import "context"

// Common monitor signal values.
const (
	SignalNeutral      = "NEUTRAL"
	SignalBullish      = "BULLISH"
	SignalBearish      = "BEARISH"
	SignalInflow       = "INFLOW"
	SignalOutflow      = "OUTFLOW"
	SignalStable       = "STABLE"
	SignalAccumulation = "ACCUMULATION"
	SignalDistribution = "DISTRIBUTION"
)

// Reading is one monitor's categorical observation plus its raw metrics.
type Reading struct {
	Monitor string
	Signal  string
	Metrics map[string]float64
}

// NeutralReading is what a failed or unmapped monitor reports.
func NeutralReading(monitor string) Reading {
	return Reading{Monitor: monitor, Signal: SignalNeutral}
}

// Monitor observes one aspect of the market for a token.
type Monitor interface {
	Name() string
	Fetch(ctx context.Context, token string) (Reading, error)
}

// TextMonitor additionally consumes the cycle's ingested texts. Monitors that
// work on text never touch the network.
type TextMonitor interface {
	Monitor
	SetTexts(texts []string)
}
