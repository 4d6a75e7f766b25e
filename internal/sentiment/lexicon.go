package sentiment

import "strings"

// Fast lexicon scorer. This is the cheap first pass that decides whether the
// expensive deep analyst is worth calling at all; precision matters less than
// never blocking the cycle.

var bullishTerms = []string{
	"moon", "pump", "bullish", "breakout", "rally", "surge", "gem",
	"ath", "parabolic", "listing", "partnership", "accumulate",
	"undervalued", "buy the dip", "adoption", "upgrade",
}

var bearishTerms = []string{
	"dump", "rug", "scam", "bearish", "crash", "sell-off", "selloff",
	"exit", "rekt", "fear", "panic", "liquidation", "hack", "exploit",
	"lawsuit", "delisting",
}

// ScoreText returns a crude sentiment score in [-1, 1] for one text.
func ScoreText(text string) float64 {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, term := range bullishTerms {
		pos += strings.Count(lower, term)
	}
	for _, term := range bearishTerms {
		neg += strings.Count(lower, term)
	}

	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

// ScoreTexts averages ScoreText over all texts. Empty input scores 0.
func ScoreTexts(texts []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	var sum float64
	for _, t := range texts {
		sum += ScoreText(t)
	}
	return sum / float64(len(texts))
}
