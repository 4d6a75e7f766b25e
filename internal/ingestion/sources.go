// Package ingestion collects crypto market text (news, forum posts, trending
// signals) from external sources and hands the sentiment layer a deduplicated
// text stream per token.
package ingestion

import (
	"context"
	"time"
)

// Article is one normalized piece of market text from any source.
type Article struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// Source provides raw articles from one external feed.
// Keywords narrow the result set; a source that cannot filter server-side
// filters locally.
type Source interface {
	Name() string
	Fetch(ctx context.Context, keywords []string) ([]Article, error)
}
