package execution

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage/memory"
	"bnb-arb-agent/internal/swapclient"
	swapstub "bnb-arb-agent/internal/swapclient/stub"
)

var (
	baseAddr  = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	tokenAddr = common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")
)

func testExecutionConfig() config.Execution {
	return config.Execution{
		Enabled:            true,
		TradeAmount:        1.0,
		MinProfitThreshold: 0.005,
		SlippageTolerance:  0.02,
		DeadlineSeconds:    300,
		WalletAddress:      "0x000000000000000000000000000000000000dEaD",
		RouterAddress:      "0x10ED43C718714eb63d5aA57B78B54704E256024E",
		BaseTokenAddress:   baseAddr.Hex(),
		TokenAddresses:     map[string]string{"BNB": tokenAddr.Hex()},
	}
}

func testDecision() *domain.DecisionRecord {
	return &domain.DecisionRecord{
		Token:           "BNB",
		Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CEXPrice:        600,
		DEXPrice:        591,
		SentimentSignal: 0.4,
		MarketPhase:     domain.PhaseMomentumBuilding,
		RiskLevel:       domain.RiskLow,
		PriceDiffPct:    0.015,
		Direction:       domain.DirectionBuyDEXSellCEX,
		ConfidenceScore: 76,
		ArbConfirmed:    true,
		Action:          domain.ActionExecuteTrade,
	}
}

type fixture struct {
	coord   *Coordinator
	swap    *swapstub.Client
	ledger  *memory.LedgerStore
	breaker *CircuitBreaker
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	f := &fixture{
		swap:   swapstub.NewClient(),
		ledger: memory.NewLedgerStore(),
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.breaker = NewCircuitBreaker(3, 15*time.Minute, logger,
		WithBreakerClock(func() time.Time { return f.now }))
	f.coord = NewCoordinator(testExecutionConfig(), f.swap, f.ledger, f.breaker, logger,
		WithCoordinatorClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) scriptHappyPath() {
	f.swap.SetQuote(baseAddr, tokenAddr, decimal.RequireFromString("0.00169"))
	f.swap.SetQuote(tokenAddr, baseAddr, decimal.RequireFromString("1.012"))
	f.swap.QueueSwap(&swapclient.SwapReceipt{
		TxHash:    common.HexToHash("0x01"),
		AmountOut: decimal.RequireFromString("0.00168"),
	}, nil)
	f.swap.QueueSwap(&swapclient.SwapReceipt{
		TxHash:    common.HexToHash("0x02"),
		AmountOut: decimal.RequireFromString("1.011"),
	}, nil)
}

func ledgerEntries(t *testing.T, f *fixture) []*domain.LedgerEntry {
	t.Helper()
	entries, err := f.ledger.Recent(context.Background(), 0)
	require.NoError(t, err)
	return entries
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyPath()

	res := f.coord.Execute(context.Background(), testDecision())

	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.NotEmpty(t, res.AttemptID)
	assert.Equal(t, common.HexToHash("0x01").Hex(), res.BuyTxHash)
	assert.Equal(t, common.HexToHash("0x02").Hex(), res.SellTxHash)
	assert.Equal(t, baseAddr.Hex(), res.TokenIn)
	assert.Equal(t, tokenAddr.Hex(), res.TokenOut)

	// Both legs submitted, slippage floor applied to each.
	require.Len(t, f.swap.Orders, 2)
	buy := f.swap.Orders[0]
	assert.Equal(t, baseAddr, buy.TokenIn)
	assert.Equal(t, tokenAddr, buy.TokenOut)
	assert.True(t, buy.MinAmountOut.Equal(decimal.RequireFromString("0.00169").Mul(decimal.RequireFromString("0.98"))),
		"buy MinAmountOut = quote * (1 - slippage), got %s", buy.MinAmountOut)
	assert.Equal(t, f.now.Add(300*time.Second), buy.Deadline)

	sell := f.swap.Orders[1]
	assert.Equal(t, tokenAddr, sell.TokenIn)
	assert.True(t, sell.AmountIn.Equal(decimal.RequireFromString("0.00168")),
		"sell leg must spend the buy leg's actual output, got %s", sell.AmountIn)

	entries := ledgerEntries(t, f)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusSuccess, entries[0].Status)
	assert.Equal(t, 76, entries[0].ConfidenceScore)
	assert.False(t, entries[0].Breaker.IsOpen)

	assert.Equal(t, 0, f.breaker.Status().ConsecutiveFailures)
}

func TestExecute_BlockedByOpenBreaker(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.breaker.RecordFailure()
	}

	res := f.coord.Execute(context.Background(), testDecision())

	assert.Equal(t, domain.StatusBlockedBreaker, res.Status)
	assert.Empty(t, f.swap.Orders, "no swap may be submitted while the breaker is open")

	// Blocked attempts are logged but do not count as failures.
	entries := ledgerEntries(t, f)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusBlockedBreaker, entries[0].Status)
	assert.True(t, entries[0].Breaker.IsOpen)
	assert.Equal(t, 3, f.breaker.Status().ConsecutiveFailures)
}

func TestExecute_PreflightProfitBelowThreshold(t *testing.T) {
	f := newFixture(t)
	rec := testDecision()
	rec.PriceDiffPct = 0.001

	res := f.coord.Execute(context.Background(), rec)

	assert.Equal(t, domain.StatusPreflightFailed, res.Status)
	assert.Contains(t, res.Reason, "below threshold")
	assert.Empty(t, f.swap.Orders)

	// Exactly one breaker increment and one ledger entry.
	assert.Equal(t, 1, f.breaker.Status().ConsecutiveFailures)
	assert.Len(t, ledgerEntries(t, f), 1)
}

func TestExecute_PreflightEndpointDown(t *testing.T) {
	f := newFixture(t)
	f.swap.AliveErr = errors.New("connection refused")

	res := f.coord.Execute(context.Background(), testDecision())

	assert.Equal(t, domain.StatusPreflightFailed, res.Status)
	assert.Contains(t, res.Reason, "swap endpoint")
	assert.Equal(t, 1, f.breaker.Status().ConsecutiveFailures)
}

func TestExecute_PreflightUnknownToken(t *testing.T) {
	f := newFixture(t)
	rec := testDecision()
	rec.Token = "DOGE"

	res := f.coord.Execute(context.Background(), rec)

	assert.Equal(t, domain.StatusPreflightFailed, res.Status)
	assert.Contains(t, res.Reason, "no contract address")
}

func TestExecute_PreflightNoDirection(t *testing.T) {
	f := newFixture(t)
	rec := testDecision()
	rec.Direction = domain.DirectionNone

	res := f.coord.Execute(context.Background(), rec)

	assert.Equal(t, domain.StatusPreflightFailed, res.Status)
}

func TestExecute_BuyLegFails(t *testing.T) {
	f := newFixture(t)
	f.swap.SetQuote(baseAddr, tokenAddr, decimal.RequireFromString("0.00169"))
	f.swap.QueueSwap(nil, errors.New("execution reverted"))

	res := f.coord.Execute(context.Background(), testDecision())

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "buy leg")
	assert.Empty(t, res.BuyTxHash)
	assert.Empty(t, res.SellTxHash)
	assert.Equal(t, 1, f.breaker.Status().ConsecutiveFailures)
	assert.Len(t, ledgerEntries(t, f), 1)
}

func TestExecute_SellLegFailsIsPartial(t *testing.T) {
	f := newFixture(t)
	f.swap.SetQuote(baseAddr, tokenAddr, decimal.RequireFromString("0.00169"))
	f.swap.SetQuote(tokenAddr, baseAddr, decimal.RequireFromString("1.012"))
	f.swap.QueueSwap(&swapclient.SwapReceipt{
		TxHash:    common.HexToHash("0x01"),
		AmountOut: decimal.RequireFromString("0.00168"),
	}, nil)
	f.swap.QueueSwap(nil, errors.New("deadline exceeded"))

	res := f.coord.Execute(context.Background(), testDecision())

	assert.Equal(t, domain.StatusPartial, res.Status)
	assert.Equal(t, common.HexToHash("0x01").Hex(), res.BuyTxHash,
		"partial result must retain the buy tx reference for recovery")
	assert.Empty(t, res.SellTxHash)
	assert.Equal(t, 1, f.breaker.Status().ConsecutiveFailures)

	entries := ledgerEntries(t, f)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusPartial, entries[0].Status)
	assert.Equal(t, res.BuyTxHash, entries[0].BuyTxHash)
}

func TestExecute_RepeatedFailuresTripBreaker(t *testing.T) {
	f := newFixture(t)
	f.swap.AliveErr = errors.New("connection refused")

	for i := 0; i < 3; i++ {
		res := f.coord.Execute(context.Background(), testDecision())
		assert.Equal(t, domain.StatusPreflightFailed, res.Status)
		f.now = f.now.Add(time.Second)
	}

	res := f.coord.Execute(context.Background(), testDecision())
	assert.Equal(t, domain.StatusBlockedBreaker, res.Status)

	// Every attempt is in the ledger, including the blocked one.
	assert.Len(t, ledgerEntries(t, f), 4)
}

func TestExecute_AttemptIDsDifferAcrossTime(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyPath()
	res1 := f.coord.Execute(context.Background(), testDecision())

	f.now = f.now.Add(time.Minute)
	f.scriptHappyPath()
	res2 := f.coord.Execute(context.Background(), testDecision())

	assert.NotEqual(t, res1.AttemptID, res2.AttemptID)
}

func TestExecute_LedgerFailureDoesNotChangeResult(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyPath()
	rec := testDecision()

	res1 := f.coord.Execute(context.Background(), rec)
	require.Equal(t, domain.StatusSuccess, res1.Status)

	// Same clock, same token and direction: the second append is a duplicate
	// and the ledger rejects it, but the execution outcome stands.
	f.scriptHappyPath()
	res2 := f.coord.Execute(context.Background(), rec)
	assert.Equal(t, domain.StatusSuccess, res2.Status)
	assert.Len(t, ledgerEntries(t, f), 1)
}
