package file

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

func newTestStore(t *testing.T, path string) *LedgerStore {
	t.Helper()
	s, err := NewLedgerStore(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return s
}

func TestLedgerStore_AppendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	ctx := context.Background()

	s := newTestStore(t, path)
	err := s.Append(ctx, &domain.LedgerEntry{
		AttemptID:  "a1",
		Token:      "BNB",
		Direction:  domain.DirectionBuyDEXSellCEX,
		Status:     domain.StatusSuccess,
		BuyTxHash:  "0xabc",
		ExecutedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	// A fresh store over the same file must see the entry.
	reloaded := newTestStore(t, path)
	got, err := reloaded.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].AttemptID)
	assert.Equal(t, domain.StatusSuccess, got[0].Status)
	assert.False(t, got[0].LoggedAt.IsZero())
}

func TestLedgerStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.jsonl")

	s := newTestStore(t, path)
	got, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLedgerStore_CorruptLinesSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	ctx := context.Background()

	s := newTestStore(t, path)
	require.NoError(t, s.Append(ctx, &domain.LedgerEntry{AttemptID: "a1", Token: "BNB"}))
	require.NoError(t, s.Append(ctx, &domain.LedgerEntry{AttemptID: "a2", Token: "BNB"}))

	// Corrupt the middle of the file.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s2 := newTestStore(t, path)
	require.NoError(t, s2.Append(ctx, &domain.LedgerEntry{AttemptID: "a3", Token: "BNB"}))

	got, err := s2.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a3", got[2].AttemptID)
}

func TestLedgerStore_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	ctx := context.Background()

	s := newTestStore(t, path)
	require.NoError(t, s.Append(ctx, &domain.LedgerEntry{AttemptID: "a1", Token: "BNB"}))

	err := s.Append(ctx, &domain.LedgerEntry{AttemptID: "a1", Token: "BNB"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestLedgerStore_RecentWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	ctx := context.Background()

	s := newTestStore(t, path)
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		require.NoError(t, s.Append(ctx, &domain.LedgerEntry{AttemptID: id, Token: "BNB"}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a3", got[0].AttemptID)
	assert.Equal(t, "a4", got[1].AttemptID)
}
