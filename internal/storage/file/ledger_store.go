// Package file implements the trade ledger on a line-delimited JSON file.
// This is the primary durable backend: every append is flushed to disk before
// returning, and a missing or partially corrupt file on load yields whatever
// entries could be recovered instead of an error.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"bnb-arb-agent/internal/domain"
	"bnb-arb-agent/internal/storage"
)

// LedgerStore implements storage.LedgerStore on a JSONL file.
type LedgerStore struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	entries []*domain.LedgerEntry
	ids     map[string]struct{}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// NewLedgerStore opens (or creates) the ledger at path and loads existing
// entries. Corrupt lines are skipped with a warning; a missing file starts
// an empty history.
func NewLedgerStore(path string, logger *slog.Logger) (*LedgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &LedgerStore{
		path:   path,
		logger: logger,
		ids:    make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LedgerStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Unreadable backing store: start from empty history rather than fail.
		s.logger.Warn("ledger file unreadable, starting empty", "path", s.path, "err", err)
		return nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e domain.LedgerEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			s.logger.Warn("skipping corrupt ledger line", "path", s.path, "line", line, "err", err)
			continue
		}
		s.entries = append(s.entries, &e)
		if e.AttemptID != "" {
			s.ids[e.AttemptID] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("ledger scan stopped early", "path", s.path, "line", line, "err", err)
	}
	return nil
}

// Append persists one entry, flushing before returning.
func (s *LedgerStore) Append(_ context.Context, e *domain.LedgerEntry) error {
	if e == nil || e.AttemptID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.AttemptID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *e
	cp.LoggedAt = time.Now().UTC()

	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write ledger entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}

	s.entries = append(s.entries, &cp)
	s.ids[cp.AttemptID] = struct{}{}
	return nil
}

// Recent returns the last n entries, oldest first. n <= 0 returns all.
func (s *LedgerStore) Recent(_ context.Context, n int) ([]*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if n > 0 && n < len(s.entries) {
		start = len(s.entries) - n
	}

	out := make([]*domain.LedgerEntry, 0, len(s.entries)-start)
	for _, e := range s.entries[start:] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
