// Package orchestrator runs the per-token decision cycle.
// It coordinates: text ingestion → on-chain intelligence → sentiment →
// price resolution → decision → execution.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/decision"
	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/execution"
	"bnb-arb-agent/internal/idhash"
	"bnb-arb-agent/internal/observability"
	"bnb-arb-agent/internal/price"
	"bnb-arb-agent/internal/sentiment"
	"bnb-arb-agent/internal/storage"
)

// TextSource supplies the raw market texts (headlines, posts) for one token.
type TextSource interface {
	Collect(ctx context.Context, token string) ([]string, error)
}

// IntelSource is the on-chain intelligence collaborator.
type IntelSource interface {
	Predict(ctx context.Context, token string, texts []string) domain.Prediction
}

// SentimentSource is the sentiment collaborator.
type SentimentSource interface {
	Run(ctx context.Context, token string, texts []string, predictSignal *float64) sentiment.Reading
}

// CEXSource resolves the centralized-exchange reference price.
type CEXSource interface {
	GetPrice(ctx context.Context, token string) (price.Quote, error)
}

// DEXSource resolves the on-chain price. Zero means unavailable.
type DEXSource interface {
	GetPrice(ctx context.Context, token string) float64
}

// PriceCache is an optional low-latency price source consulted before the
// CEX REST API. A stale entry reports fresh=false and is ignored.
type PriceCache interface {
	Latest(token string) (float64, bool)
}

// PredictSource is an optional prediction-market signal in [-1, 1].
type PredictSource interface {
	Signal(ctx context.Context, token string) (float64, bool)
}

// Executor runs one approved trade. It never returns an error; the outcome
// is always a tagged result.
type Executor interface {
	Execute(ctx context.Context, rec *domain.DecisionRecord) *domain.ExecutionResult
}

// Orchestrator wires the collaborators into one repeatable cycle.
type Orchestrator struct {
	cfg       *config.Config
	engine    *decision.Engine
	texts     TextSource
	intel     IntelSource
	sentiment SentimentSource
	cex       CEXSource
	dex       DEXSource
	cache     PriceCache
	predict   PredictSource
	executor  Executor
	breaker   *execution.CircuitBreaker
	decisions storage.DecisionStore
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Options for creating an Orchestrator.
type Options struct {
	// Required
	Config    *config.Config
	Engine    *decision.Engine
	Intel     IntelSource
	Sentiment SentimentSource
	CEX       CEXSource
	DEX       DEXSource

	// Optional
	Texts         TextSource    // nil: cycles run without market text
	Cache         PriceCache    // nil: CEX REST API only
	Predict       PredictSource // nil: fusion runs without a crowd signal
	Executor      Executor      // required only when execution is enabled
	Breaker       *execution.CircuitBreaker
	DecisionStore storage.DecisionStore
	Metrics       *observability.Metrics
	Logger        *slog.Logger
	Now           func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		cfg:       opts.Config,
		engine:    opts.Engine,
		texts:     opts.Texts,
		intel:     opts.Intel,
		sentiment: opts.Sentiment,
		cex:       opts.CEX,
		dex:       opts.DEX,
		cache:     opts.Cache,
		predict:   opts.Predict,
		executor:  opts.Executor,
		breaker:   opts.Breaker,
		decisions: opts.DecisionStore,
		metrics:   opts.Metrics,
		logger:    logger,
		now:       now,
	}
}

// CycleResult summarizes one cycle across all target tokens.
type CycleResult struct {
	TokensProcessed int
	Decisions       []*domain.DecisionRecord
	Executed        int
	Errors          []string
}

// RunCycle evaluates every target token once. Upstream failures degrade the
// affected inputs rather than aborting the cycle; the only error returned is
// context cancellation.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleResult, error) {
	startedAt := o.now()
	result := &CycleResult{}

	for _, token := range o.cfg.TargetTokens {
		if err := ctx.Err(); err != nil {
			o.recordCycle(startedAt, false)
			return result, err
		}

		rec := o.evaluateToken(ctx, token)
		result.TokensProcessed++
		result.Decisions = append(result.Decisions, rec)
		if rec.ExecutionResult != nil && rec.ExecutionResult.Status != domain.StatusDisabled {
			result.Executed++
		}
	}

	if o.breaker != nil && o.metrics != nil {
		st := o.breaker.Status()
		o.metrics.ObserveBreaker(st.IsOpen, st.ConsecutiveFailures)
	}

	if o.decisions != nil && len(result.Decisions) > 0 {
		if err := o.decisions.InsertBulk(ctx, result.Decisions); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist decisions: %v", err))
			o.logger.Error("decision store write failed", "error", err)
		}
	}

	o.recordCycle(startedAt, true)
	o.logger.Info("cycle complete",
		"tokens", result.TokensProcessed,
		"executed", result.Executed,
		"errors", len(result.Errors),
	)
	return result, nil
}

// evaluateToken runs the full pipeline for one token and returns the record.
func (o *Orchestrator) evaluateToken(ctx context.Context, token string) *domain.DecisionRecord {
	texts := o.collectTexts(ctx, token)

	var predictSignal *float64
	if o.predict != nil {
		if v, ok := o.predict.Signal(ctx, token); ok {
			predictSignal = &v
		}
	}

	pred := o.intel.Predict(ctx, token, texts)
	reading := o.sentiment.Run(ctx, token, texts, predictSignal)

	cexPrice := o.resolveCEXPrice(ctx, token)
	dexPrice := o.dex.GetPrice(ctx, token)

	rec := o.engine.Evaluate(domain.SignalInputs{
		Token:           token,
		SentimentSignal: reading.FinalSignal,
		SignalType:      reading.SignalType,
		Urgency:         reading.Urgency,
		ArbOpportunity:  reading.ArbOpportunity,
		CEXPrice:        cexPrice,
		DEXPrice:        dexPrice,
		PredictedPhase:  pred.PredictedPhase,
		RiskLevel:       pred.RiskLevel,
	})
	rec.IntelRecommendation = pred.Recommendation

	o.recordDecision(rec)

	if rec.Action == domain.ActionExecuteTrade {
		rec.ExecutionResult = o.execute(ctx, rec)
	}
	return rec
}

// collectTexts gathers market text; a source failure means an empty cycle,
// not a failed one.
func (o *Orchestrator) collectTexts(ctx context.Context, token string) []string {
	if o.texts == nil {
		return nil
	}
	texts, err := o.texts.Collect(ctx, token)
	if err != nil {
		o.logger.Warn("text collection failed", "token", token, "error", err)
		if o.metrics != nil {
			o.metrics.UpstreamErrors.WithLabelValues("texts").Inc()
		}
		return nil
	}
	return texts
}

// resolveCEXPrice prefers a fresh streamed price over the REST API.
func (o *Orchestrator) resolveCEXPrice(ctx context.Context, token string) float64 {
	if o.cache != nil {
		if p, fresh := o.cache.Latest(token); fresh && p > 0 {
			return p
		}
	}

	quote, err := o.cex.GetPrice(ctx, token)
	if err != nil {
		o.logger.Warn("cex price fetch failed", "token", token, "error", err)
		if o.metrics != nil {
			o.metrics.UpstreamErrors.WithLabelValues("cex").Inc()
		}
		return 0
	}
	if !quote.Available {
		return 0
	}
	return quote.Price
}

// execute dispatches an EXECUTE_TRADE decision to the executor, or tags the
// record DISABLED when the kill switch is off. The coordinator is never
// invoked for a disabled attempt.
func (o *Orchestrator) execute(ctx context.Context, rec *domain.DecisionRecord) *domain.ExecutionResult {
	if !o.cfg.Execution.Enabled || o.executor == nil {
		o.logger.Info("execution disabled, skipping trade",
			"token", rec.Token,
			"confidence", rec.ConfidenceScore,
		)
		now := o.now().UTC()
		return &domain.ExecutionResult{
			AttemptID:         idhash.ComputeAttemptID(rec.Token, rec.Direction, now),
			Token:             rec.Token,
			Direction:         rec.Direction,
			Status:            domain.StatusDisabled,
			Reason:            "execution disabled by configuration",
			ProfitEstimatePct: rec.PriceDiffPct,
			Timestamp:         now,
		}
	}

	started := o.now()
	res := o.executor.Execute(ctx, rec)
	if o.metrics != nil {
		o.metrics.ExecutionsTotal.WithLabelValues(res.Token, string(res.Status)).Inc()
		o.metrics.ExecutionDuration.Observe(o.now().Sub(started).Seconds())
	}
	return res
}

func (o *Orchestrator) recordDecision(rec *domain.DecisionRecord) {
	if o.metrics == nil {
		return
	}
	o.metrics.DecisionsTotal.WithLabelValues(rec.Token, string(rec.Action)).Inc()
	o.metrics.ConfidenceScore.WithLabelValues(rec.Token).Observe(float64(rec.ConfidenceScore))
	o.metrics.GateConfirmed.WithLabelValues(rec.Token, fmt.Sprintf("%t", rec.ArbConfirmed)).Inc()
	o.metrics.PriceSpread.WithLabelValues(rec.Token).Set(rec.PriceDiffPct)
	if rec.CEXPrice == 0 {
		o.metrics.PriceUnavailable.WithLabelValues(rec.Token, "cex").Inc()
	}
	if rec.DEXPrice == 0 {
		o.metrics.PriceUnavailable.WithLabelValues(rec.Token, "dex").Inc()
	}
}

func (o *Orchestrator) recordCycle(startedAt time.Time, ok bool) {
	if o.metrics == nil {
		return
	}
	status := "success"
	if !ok {
		status = "canceled"
	}
	o.metrics.CyclesTotal.WithLabelValues(status).Inc()
	o.metrics.CycleDuration.Observe(o.now().Sub(startedAt).Seconds())
	if ok {
		o.metrics.LastCycleSuccess.Set(float64(o.now().Unix()))
	}
}
