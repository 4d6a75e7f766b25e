package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/idhash"
	"bnb-arb-agent/internal/storage"
	"bnb-arb-agent/internal/swapclient"
)

// Coordinator runs one approved trade end to end: breaker check, pre-flight
// validation, buy leg, sell leg, classification. Every attempt is written to
// the ledger no matter how it ends, and Execute never panics or returns an
// error; the outcome is always a tagged ExecutionResult.
type Coordinator struct {
	cfg     config.Execution
	swap    swapclient.Client
	ledger  storage.LedgerStore
	breaker *CircuitBreaker
	logger  *slog.Logger
	now     func() time.Time
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorClock overrides the time source.
func WithCoordinatorClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(cfg config.Execution, swap swapclient.Client, ledger storage.LedgerStore, breaker *CircuitBreaker, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		swap:    swap,
		ledger:  ledger,
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs one execution attempt for an EXECUTE_TRADE decision.
func (c *Coordinator) Execute(ctx context.Context, rec *domain.DecisionRecord) *domain.ExecutionResult {
	startedAt := c.now().UTC()
	res := &domain.ExecutionResult{
		AttemptID:         idhash.ComputeAttemptID(rec.Token, rec.Direction, startedAt),
		Token:             rec.Token,
		Direction:         rec.Direction,
		Amount:            c.cfg.TradeAmount,
		ProfitEstimatePct: rec.PriceDiffPct,
		Timestamp:         startedAt,
	}

	// Breaker check comes first; a blocked attempt does not reach pre-flight
	// and does not count as a failure.
	if !c.breaker.AllowTrade() {
		res.Status = domain.StatusBlockedBreaker
		res.Reason = "circuit breaker open"
		c.finish(ctx, res, rec)
		return res
	}

	route, err := c.preflight(ctx, rec)
	if err != nil {
		res.Status = domain.StatusPreflightFailed
		res.Reason = err.Error()
		c.breaker.RecordFailure()
		c.finish(ctx, res, rec)
		return res
	}
	res.TokenIn = route.base.Hex()
	res.TokenOut = route.token.Hex()

	buy, err := c.leg(ctx, route.base, route.token, decimal.NewFromFloat(c.cfg.TradeAmount))
	if err != nil {
		res.Status = domain.StatusFailed
		res.Reason = fmt.Sprintf("buy leg: %v", err)
		c.breaker.RecordFailure()
		c.finish(ctx, res, rec)
		return res
	}
	res.BuyTxHash = buy.TxHash.Hex()

	sell, err := c.leg(ctx, route.token, route.base, buy.AmountOut)
	if err != nil {
		// Capital is now parked in the target token. The buy tx reference
		// stays on the result for manual recovery.
		res.Status = domain.StatusPartial
		res.Reason = fmt.Sprintf("sell leg: %v", err)
		c.breaker.RecordFailure()
		c.finish(ctx, res, rec)
		return res
	}
	res.SellTxHash = sell.TxHash.Hex()

	res.Status = domain.StatusSuccess
	res.Reason = "both legs confirmed"
	c.breaker.RecordSuccess()
	c.finish(ctx, res, rec)
	return res
}

type route struct {
	base  common.Address
	token common.Address
}

// preflight validates the attempt before any swap is submitted.
func (c *Coordinator) preflight(ctx context.Context, rec *domain.DecisionRecord) (*route, error) {
	if rec.Direction == domain.DirectionNone {
		return nil, fmt.Errorf("no price direction")
	}
	if rec.PriceDiffPct < c.cfg.MinProfitThreshold {
		return nil, fmt.Errorf("profit estimate %.4f below threshold %.4f",
			rec.PriceDiffPct, c.cfg.MinProfitThreshold)
	}
	addr, ok := c.cfg.TokenAddresses[rec.Token]
	if !ok {
		return nil, fmt.Errorf("no contract address for token %s", rec.Token)
	}
	if err := c.swap.IsAlive(ctx); err != nil {
		return nil, fmt.Errorf("swap endpoint: %w", err)
	}
	return &route{
		base:  common.HexToAddress(c.cfg.BaseTokenAddress),
		token: common.HexToAddress(addr),
	}, nil
}

// leg quotes one hop, applies the slippage floor, and submits the swap.
func (c *Coordinator) leg(ctx context.Context, tokenIn, tokenOut common.Address, amountIn decimal.Decimal) (*swapclient.SwapReceipt, error) {
	router := common.HexToAddress(c.cfg.RouterAddress)

	expected, err := c.swap.Quote(ctx, router, tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	slippage := decimal.NewFromFloat(1 - c.cfg.SlippageTolerance)
	order := swapclient.SwapOrder{
		Router:       router,
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountIn:     amountIn,
		MinAmountOut: expected.Mul(slippage),
		Recipient:    common.HexToAddress(c.cfg.WalletAddress),
		Deadline:     c.now().UTC().Add(time.Duration(c.cfg.DeadlineSeconds) * time.Second),
	}

	receipt, err := c.swap.SubmitSwap(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return receipt, nil
}

// finish logs the outcome and appends the ledger entry. A ledger write
// failure is logged loudly but never alters the execution result.
func (c *Coordinator) finish(ctx context.Context, res *domain.ExecutionResult, rec *domain.DecisionRecord) {
	c.logger.Info("execution attempt finished",
		"attempt_id", res.AttemptID,
		"token", res.Token,
		"status", res.Status,
		"reason", res.Reason,
		"buy_tx", res.BuyTxHash,
		"sell_tx", res.SellTxHash,
	)

	entry := domain.NewLedgerEntry(res, rec, c.breaker.Status())
	if err := c.ledger.Append(ctx, entry); err != nil {
		c.logger.Error("trade ledger append failed",
			"attempt_id", res.AttemptID,
			"error", err,
		)
	}
}
