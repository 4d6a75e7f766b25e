package ingestion

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Per-feed tuning.
const (
	rssItemsPerFeed   = 10
	rssContentMaxLen  = 400
	defaultRSSTimeout = 10 * time.Second
)

// defaultFeeds is the crypto news feed set polled every cycle.
var defaultFeeds = map[string]string{
	"CoinDesk":      "https://www.coindesk.com/arc/outboundfeeds/rss/",
	"CoinTelegraph": "https://cointelegraph.com/rss",
	"Decrypt":       "https://decrypt.co/feed",
	"CryptoNews":    "https://cryptonews.com/news/feed/",
	"BeInCrypto":    "https://beincrypto.com/feed/",
	"TheBlock":      "https://www.theblock.co/rss.xml",
}

// RSSSource polls a set of RSS 2.0 feeds and keeps items whose title matches
// any keyword. One dead feed never fails the whole fetch.
type RSSSource struct {
	feeds  map[string]string
	client *http.Client
	logger *slog.Logger
}

// Compile-time interface check.
var _ Source = (*RSSSource)(nil)

// NewRSSSource creates an RSSSource. A nil feeds map selects the default
// crypto news set.
func NewRSSSource(feeds map[string]string, logger *slog.Logger) *RSSSource {
	if feeds == nil {
		feeds = defaultFeeds
	}
	return &RSSSource{
		feeds:  feeds,
		client: &http.Client{Timeout: defaultRSSTimeout},
		logger: logger,
	}
}

func (s *RSSSource) Name() string { return "rss" }

// Fetch polls every configured feed and returns the matching items.
func (s *RSSSource) Fetch(ctx context.Context, keywords []string) ([]Article, error) {
	var articles []Article

	for name, feedURL := range s.feeds {
		items, err := s.fetchFeed(ctx, feedURL)
		if err != nil {
			s.logger.Warn("rss feed failed", "feed", name, "error", err)
			continue
		}

		if len(items) > rssItemsPerFeed {
			items = items[:rssItemsPerFeed]
		}
		for _, item := range items {
			if !matchesAny(item.Title, keywords) {
				continue
			}
			articles = append(articles, Article{
				Source:      "RSS/" + name,
				Title:       strings.TrimSpace(item.Title),
				Content:     truncate(strings.TrimSpace(item.Description), rssContentMaxLen),
				URL:         item.Link,
				PublishedAt: parseFeedTime(item.PubDate),
			})
		}
	}

	return articles, nil
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

func (s *RSSSource) fetchFeed(ctx context.Context, feedURL string) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; BNBArbBot/1.0)")

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

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed.Channel.Items, nil
}

// matchesAny reports whether text contains any keyword, case-insensitive.
// An empty keyword list matches everything.
func matchesAny(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// parseFeedTime accepts the timestamp formats seen in the wild; an
// unparseable value yields the zero time rather than an error.
func parseFeedTime(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
