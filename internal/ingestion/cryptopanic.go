package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CryptoPanicSource pulls the "hot" post stream filtered by currency. With no
// API token configured it is a silent no-op so the pipeline runs unchanged.
type CryptoPanicSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// Compile-time interface check.
var _ Source = (*CryptoPanicSource)(nil)

// NewCryptoPanicSource creates a CryptoPanicSource against baseURL
// (e.g. "https://cryptopanic.com/api/developer/v2").
func NewCryptoPanicSource(baseURL, token string) *CryptoPanicSource {
	return &CryptoPanicSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultRSSTimeout},
	}
}

func (s *CryptoPanicSource) Name() string { return "cryptopanic" }

// Fetch returns hot posts for the given currency symbols.
func (s *CryptoPanicSource) Fetch(ctx context.Context, keywords []string) ([]Article, error) {
	if s.token == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("auth_token", s.token)
	q.Set("currencies", strings.Join(keywords, ","))
	q.Set("filter", "hot")
	q.Set("public", "true")
	endpoint := fmt.Sprintf("%s/posts/?%s", s.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
			Source      struct {
				Title string `json:"title"`
			} `json:"source"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]Article, 0, len(payload.Results))
	for _, p := range payload.Results {
		publisher := p.Source.Title
		if publisher == "" {
			publisher = "CP"
		}
		published, _ := time.Parse(time.RFC3339, p.PublishedAt)
		articles = append(articles, Article{
			Source:      "CryptoPanic/" + publisher,
			Title:       p.Title,
			URL:         p.URL,
			PublishedAt: published.UTC(),
		})
	}
	return articles, nil
}
