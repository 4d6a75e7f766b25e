// Package sentiment turns raw market text into one fused signal per token.
// The pipeline runs a fast lexicon pre-score, conditionally consults a deep
// analyst, and fuses both with an optional prediction-market signal.
package sentiment

import (
	"context"
	"log/slog"
	"math"
)

// Deep-analyst gating: only pay for the slow call when the fast pass found
// meaningful signal or there is enough material to analyze.
const (
	deepTriggerScore = 0.1
	deepTriggerTexts = 5
	maxDeepTexts     = 10
)

// Fusion weights.
const (
	weightDeepOnly = 0.60
	weightFastOnly = 0.40

	weightDeepWithPredict = 0.50
	weightFastWithPredict = 0.25
	weightPredict         = 0.25
)

// Analyst is the deep-analysis collaborator. It receives a bounded slice of
// texts and replies in the line-oriented KEY: value format ParseAnalysis
// understands.
type Analyst interface {
	Analyze(ctx context.Context, token string, texts []string, predictSignal *float64) (string, error)
}

// Reading is the fused output of one sentiment pass.
type Reading struct {
	Analysis

	FastScore   float64
	FinalSignal float64
	DeepUsed    bool
}

// Analyzer runs the sentiment pipeline.
type Analyzer struct {
	analyst Analyst
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer. analyst may be nil; the pipeline then runs
// on the fast pass alone.
func NewAnalyzer(analyst Analyst, logger *slog.Logger) *Analyzer {
	return &Analyzer{analyst: analyst, logger: logger}
}

// Run scores texts for a token. predictSignal, when non-nil, is a crowd
// signal in [-1, 1] that joins the fusion.
func (a *Analyzer) Run(ctx context.Context, token string, texts []string, predictSignal *float64) Reading {
	fast := ScoreTexts(texts)

	reading := Reading{
		Analysis:  FallbackAnalysis(),
		FastScore: fast,
	}

	if a.shouldRunDeep(fast, len(texts)) && a.analyst != nil {
		bounded := texts
		if len(bounded) > maxDeepTexts {
			bounded = bounded[:maxDeepTexts]
		}
		raw, err := a.analyst.Analyze(ctx, token, bounded, predictSignal)
		if err != nil {
			a.logger.Warn("deep analysis failed, using fallback",
				"token", token,
				"error", err,
			)
		} else {
			reading.Analysis = ParseAnalysis(raw)
			reading.DeepUsed = true
		}
	}

	reading.FinalSignal = fuse(reading.Analysis.Sentiment, fast, predictSignal)

	a.logger.Info("sentiment pass complete",
		"token", token,
		"fast", fast,
		"deep_used", reading.DeepUsed,
		"final", reading.FinalSignal,
	)
	return reading
}

func (a *Analyzer) shouldRunDeep(fast float64, textCount int) bool {
	return math.Abs(fast) > deepTriggerScore || textCount > deepTriggerTexts
}

// fuse combines the deep, fast, and crowd signals. With no crowd signal the
// split is 60/40 deep/fast; with one it is 50/25/25.
func fuse(deep, fast float64, predict *float64) float64 {
	var final float64
	if predict != nil {
		final = weightDeepWithPredict*deep + weightFastWithPredict*fast + weightPredict**predict
	} else {
		final = weightDeepOnly*deep + weightFastOnly*fast
	}
	// Round to 4 decimal places to keep records stable.
	return math.Round(final*10000) / 10000
}
