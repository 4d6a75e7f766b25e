package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TrendingSource reads the CoinGecko trending-search list. Trending entries
// carry no keyword context of their own, so they are always included; the
// downstream lexicon decides whether they matter.
type TrendingSource struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// Compile-time interface check.
var _ Source = (*TrendingSource)(nil)

// NewTrendingSource creates a TrendingSource against baseURL
// (e.g. "https://api.coingecko.com/api/v3").
func NewTrendingSource(baseURL string) *TrendingSource {
	return &TrendingSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRSSTimeout},
		now:     time.Now,
	}
}

func (s *TrendingSource) Name() string { return "trending" }

// Fetch returns the current trending coins as synthetic articles.
func (s *TrendingSource) Fetch(ctx context.Context, _ []string) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search/trending", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload struct {
		Coins []struct {
			Item struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				Symbol        string `json:"symbol"`
				MarketCapRank int    `json:"market_cap_rank"`
			} `json:"item"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	fetchedAt := s.now().UTC()
	articles := make([]Article, 0, len(payload.Coins))
	for _, c := range payload.Coins {
		articles = append(articles, Article{
			Source:      "CoinGecko/Trending",
			Title:       fmt.Sprintf("%s (%s) trending #%d", c.Item.Name, c.Item.Symbol, c.Item.MarketCapRank),
			URL:         "https://coingecko.com/en/coins/" + c.Item.ID,
			PublishedAt: fetchedAt,
		})
	}
	return articles, nil
}
