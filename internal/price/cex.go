// Package price resolves the two sides of the arbitrage spread: a CEX
// reference price and an on-chain DEX price. A returned price of zero always
// means "unavailable", never a traded price; callers must treat it that way.
package price

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

// Default CEX client tuning.
const (
	DefaultCEXTimeout  = 10 * time.Second
	DefaultCEXRetries  = 2
	DefaultCEXRetryGap = 1 * time.Second
)

// coinIDs maps token symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BNB":  "binancecoin",
	"CAKE": "pancakeswap-token",
	"BTCB": "bitcoin-bep2",
	"ETH":  "ethereum",
}

// Quote is one CEX price observation.
type Quote struct {
	Price     float64
	Change24h float64
	Available bool
}

// CEXClient fetches reference prices from the CoinGecko simple-price API.
type CEXClient struct {
	baseURL  string
	client   *http.Client
	retries  int
	retryGap time.Duration
}

// CEXOption configures a CEXClient.
type CEXOption func(*CEXClient)

// WithCEXHTTPClient sets a custom http.Client.
func WithCEXHTTPClient(client *http.Client) CEXOption {
	return func(c *CEXClient) {
		c.client = client
	}
}

// WithCEXRetries sets the retry count.
func WithCEXRetries(n int) CEXOption {
	return func(c *CEXClient) {
		c.retries = n
	}
}

// WithCEXRetryGap sets the initial delay between retries.
func WithCEXRetryGap(d time.Duration) CEXOption {
	return func(c *CEXClient) {
		c.retryGap = d
	}
}

// NewCEXClient creates a CEXClient against baseURL
// (e.g. "https://api.coingecko.com/api/v3").
func NewCEXClient(baseURL string, opts ...CEXOption) *CEXClient {
	c := &CEXClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: DefaultCEXTimeout},
		retries:  DefaultCEXRetries,
		retryGap: DefaultCEXRetryGap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPrice returns the USD quote for a token symbol. An unknown symbol falls
// back to its lowercased form as the coin id, matching the upstream API's
// own convention.
func (c *CEXClient) GetPrice(ctx context.Context, token string) (Quote, error) {
	coinID, ok := coinIDs[token]
	if !ok {
		coinID = strings.ToLower(token)
	}

	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return Quote{}, err
	}

	var payload map[string]struct {
		USD       float64 `json:"usd"`
		Change24h float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Quote{}, fmt.Errorf("decode cex response: %w", err)
	}

	entry, ok := payload[coinID]
	if !ok || entry.USD <= 0 {
		return Quote{}, nil
	}
	return Quote{Price: entry.USD, Change24h: entry.Change24h, Available: true}, nil
}

// get performs a GET with a small retry loop for transient failures.
func (c *CEXClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	delay := c.retryGap
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
