// Package stub provides in-memory ingestion sources for testing and offline
// runs.
package stub

import (
	"context"

	"bnb-arb-agent/internal/ingestion"
)

// Source returns fixed articles, or a scripted error.
// Implements ingestion.Source.
type Source struct {
	SourceName string
	Articles   []ingestion.Article
	Err        error

	// Keywords records the last keyword set passed to Fetch.
	Keywords []string
}

// New creates a stub source serving the given articles.
func New(name string, articles ...ingestion.Article) *Source {
	return &Source{SourceName: name, Articles: articles}
}

func (s *Source) Name() string { return s.SourceName }

// Fetch returns copies of the configured articles.
func (s *Source) Fetch(_ context.Context, keywords []string) ([]ingestion.Article, error) {
	s.Keywords = keywords
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]ingestion.Article, len(s.Articles))
	copy(out, s.Articles)
	return out, nil
}
