package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

func createTestLedgerEntry(attemptID string) *domain.LedgerEntry {
	tripped := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.LedgerEntry{
		AttemptID:         attemptID,
		Token:             "BNB",
		Direction:         domain.DirectionBuyDEXSellCEX,
		Status:            domain.StatusSuccess,
		Reason:            "both legs confirmed",
		TokenIn:           "USDT",
		TokenOut:          "WBNB",
		Amount:            0.1,
		BuyTxHash:         "0xbuy",
		SellTxHash:        "0xsell",
		ProfitEstimatePct: 0.012,
		MarketPhase:       domain.PhaseMomentumBuilding,
		SentimentSignal:   0.4,
		ConfidenceScore:   76,
		RiskLevel:         domain.RiskLow,
		Breaker: domain.BreakerStatus{
			IsOpen:              false,
			ConsecutiveFailures: 1,
			TrippedAt:           &tripped,
		},
		ExecutedAt: time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC),
	}
}

func TestLedgerStore_AppendAndRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	entry := createTestLedgerEntry("attempt-001")
	err := store.Append(ctx, entry)
	require.NoError(t, err)
	assert.False(t, entry.LoggedAt.IsZero(), "Append must stamp LoggedAt")

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	e := got[0]
	assert.Equal(t, entry.AttemptID, e.AttemptID)
	assert.Equal(t, entry.Token, e.Token)
	assert.Equal(t, entry.Direction, e.Direction)
	assert.Equal(t, entry.Status, e.Status)
	assert.Equal(t, entry.Reason, e.Reason)
	assert.Equal(t, entry.TokenIn, e.TokenIn)
	assert.Equal(t, entry.TokenOut, e.TokenOut)
	assert.InDelta(t, entry.Amount, e.Amount, 1e-9)
	assert.Equal(t, entry.BuyTxHash, e.BuyTxHash)
	assert.Equal(t, entry.SellTxHash, e.SellTxHash)
	assert.InDelta(t, entry.ProfitEstimatePct, e.ProfitEstimatePct, 1e-9)
	assert.Equal(t, entry.MarketPhase, e.MarketPhase)
	assert.InDelta(t, entry.SentimentSignal, e.SentimentSignal, 1e-9)
	assert.Equal(t, entry.ConfidenceScore, e.ConfidenceScore)
	assert.Equal(t, entry.RiskLevel, e.RiskLevel)
	assert.Equal(t, entry.Breaker.IsOpen, e.Breaker.IsOpen)
	assert.Equal(t, entry.Breaker.ConsecutiveFailures, e.Breaker.ConsecutiveFailures)
	require.NotNil(t, e.Breaker.TrippedAt)
	assert.True(t, entry.Breaker.TrippedAt.Equal(*e.Breaker.TrippedAt))
	assert.True(t, entry.ExecutedAt.Equal(e.ExecutedAt))
}

func TestLedgerStore_AppendDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	entry := createTestLedgerEntry("attempt-dup")
	require.NoError(t, store.Append(ctx, entry))

	err := store.Append(ctx, createTestLedgerEntry("attempt-dup"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestLedgerStore_AppendInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	assert.ErrorIs(t, store.Append(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Append(ctx, &domain.LedgerEntry{}), storage.ErrInvalidInput)
}

func TestLedgerStore_RecentWindowAndOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	for i := 1; i <= 5; i++ {
		entry := createTestLedgerEntry(fmt.Sprintf("attempt-%03d", i))
		require.NoError(t, store.Append(ctx, entry))
	}

	got, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Oldest first within the window, newest last.
	assert.Equal(t, "attempt-003", got[0].AttemptID)
	assert.Equal(t, "attempt-004", got[1].AttemptID)
	assert.Equal(t, "attempt-005", got[2].AttemptID)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestLedgerStore_NullableTrippedAt(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	entry := createTestLedgerEntry("attempt-nullable")
	entry.Breaker.TrippedAt = nil
	require.NoError(t, store.Append(ctx, entry))

	got, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Breaker.TrippedAt)
}

func TestLedgerStore_EmptyResult(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerStore(pool)

	got, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
