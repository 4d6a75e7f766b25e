package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Manager fans out to every configured source and returns one deduplicated
// article set. A failing source degrades the set instead of failing the fetch;
// only all sources failing at once is an error.
type Manager struct {
	sources  []Source
	keywords []string
	logger   *slog.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Sources []Source

	// Keywords are searched alongside the token symbol itself.
	Keywords []string

	Logger *slog.Logger
}

// NewManager creates a new ingestion manager over the provided sources.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sources:  opts.Sources,
		keywords: opts.Keywords,
		logger:   logger,
	}
}

// Fetch gathers articles about a token from all sources, deduplicated by
// title. Order follows source registration order.
func (m *Manager) Fetch(ctx context.Context, token string) ([]Article, error) {
	keywords := append([]string{token}, m.keywords...)

	var (
		articles []Article
		failed   int
		lastErr  error
	)
	seen := make(map[string]struct{})

	for _, src := range m.sources {
		fetched, err := src.Fetch(ctx, keywords)
		if err != nil {
			m.logger.Warn("source fetch failed",
				"source", src.Name(),
				"token", token,
				"error", err,
			)
			failed++
			lastErr = err
			continue
		}
		for _, a := range fetched {
			key := strings.ToLower(strings.TrimSpace(a.Title))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			articles = append(articles, a)
		}
	}

	if len(articles) == 0 && failed == len(m.sources) && failed > 0 {
		return nil, fmt.Errorf("all %d sources failed: %w", failed, lastErr)
	}

	m.logger.Info("ingestion complete",
		"token", token,
		"articles", len(articles),
		"failed_sources", failed,
	)
	return articles, nil
}

// Collect returns the fetched articles flattened to plain text for the
// sentiment layer.
func (m *Manager) Collect(ctx context.Context, token string) ([]string, error) {
	articles, err := m.Fetch(ctx, token)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(articles))
	for _, a := range articles {
		text := a.Title
		if a.Content != "" {
			text += ". " + a.Content
		}
		texts = append(texts, text)
	}
	return texts, nil
}
