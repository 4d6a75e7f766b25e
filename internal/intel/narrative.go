package intel

import (
	"context"
	"strings"
)

// Narrative clusters and their detection keywords.
var narrativeClusters = map[string][]string{
	"PUMP_NARRATIVE":   {"moon", "pump", "100x", "gem", "bullish", "breakout", "ath", "parabolic", "send it"},
	"DUMP_NARRATIVE":   {"dump", "rug", "scam", "bearish", "crash", "sell", "exit", "dead", "rekt"},
	"ACCUMULATION":     {"buy the dip", "accumulate", "undervalued", "support", "floor", "hodl", "loading"},
	"LISTING_CATALYST": {"listing", "listed", "binance list", "exchange", "cex", "announcement", "partnership"},
	"WHALE_NARRATIVE":  {"whale", "large wallet", "big buy", "million", "institution", "fund"},
	"FEAR_NARRATIVE":   {"fear", "uncertain", "worried", "panic", "liquidation", "margin call"},
}

// NarrativeMonitor counts keyword-cluster frequency in the cycle's texts and
// reports the dominant narrative. It reuses already-ingested material and
// performs no network calls.
type NarrativeMonitor struct {
	texts []string
}

// NewNarrativeMonitor creates an empty NarrativeMonitor.
func NewNarrativeMonitor() *NarrativeMonitor {
	return &NarrativeMonitor{}
}

// Compile-time interface check.
var _ TextMonitor = (*NarrativeMonitor)(nil)

func (m *NarrativeMonitor) Name() string { return "narrative" }

// SetTexts installs the texts for the next Fetch.
func (m *NarrativeMonitor) SetTexts(texts []string) {
	m.texts = texts
}

// Fetch scores each cluster and reports the dominant one as the signal.
func (m *NarrativeMonitor) Fetch(_ context.Context, _ string) (Reading, error) {
	if len(m.texts) == 0 {
		return NeutralReading(m.Name()), nil
	}

	combined := strings.ToLower(strings.Join(m.texts, " "))

	scores := make(map[string]float64, len(narrativeClusters))
	var dominant string
	var best, total float64
	for cluster, keywords := range narrativeClusters {
		var score float64
		for _, kw := range keywords {
			score += float64(strings.Count(combined, kw))
		}
		scores[cluster] = score
		total += score
		if score > best || (score == best && (dominant == "" || cluster < dominant)) {
			best = score
			dominant = cluster
		}
	}

	if total == 0 {
		return NeutralReading(m.Name()), nil
	}

	scores["narrative_confidence"] = best / total * 100
	return Reading{
		Monitor: m.Name(),
		Signal:  dominant,
		Metrics: scores,
	}, nil
}
