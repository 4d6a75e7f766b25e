package sentiment

import (
	"strconv"
	"strings"

	"bnb-arb-agent/internal/domain"
)

// Analysis is the structured form of one deep-analysis response. The upstream
// model replies in a line-oriented KEY: value format; anything it gets wrong
// degrades to a neutral default instead of failing the cycle.
type Analysis struct {
	Sentiment      float64 // [-1, 1]
	SignalType     domain.SignalType
	Urgency        domain.Urgency
	Insight        string
	ArbOpportunity bool
}

// FallbackAnalysis is used when the deep analyst is unavailable.
func FallbackAnalysis() Analysis {
	return Analysis{
		SignalType: domain.SignalStable,
		Urgency:    domain.UrgencyLow,
		Insight:    "deep analysis unavailable",
	}
}

// ParseAnalysis extracts the structured fields from a deep-analysis response.
// Unknown keys and malformed values are ignored.
func ParseAnalysis(text string) Analysis {
	a := FallbackAnalysis()
	a.Insight = ""

	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "SENTIMENT":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				a.Sentiment = clampSignal(v)
			}
		case "SIGNAL_TYPE":
			a.SignalType = domain.ParseSignalType(value)
		case "URGENCY":
			a.Urgency = domain.ParseUrgency(value)
		case "KEY_INSIGHT":
			a.Insight = value
		case "ARB_OPPORTUNITY":
			a.ArbOpportunity = strings.Contains(strings.ToUpper(value), "YES")
		}
	}

	return a
}

func clampSignal(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
