// Package swapclient talks JSON-RPC 2.0 to the swap execution sidecar that
// holds the hot wallet. The agent itself never signs transactions; it quotes
// routes and submits orders, and the sidecar reports confirmed receipts.
package swapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Client using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new swap sidecar client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
// RPC-level errors are terminal; transport errors and 429s are retried.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// IsAlive pings the sidecar. A true result means the wallet is loaded and
// the chain connection is synced.
func (c *HTTPClient) IsAlive(ctx context.Context) error {
	var alive bool
	if err := c.call(ctx, "swap_isAlive", nil, &alive); err != nil {
		return err
	}
	if !alive {
		return fmt.Errorf("swap endpoint reports not ready")
	}
	return nil
}

// Quote asks the router for the expected output of amountIn along the
// tokenIn -> tokenOut path.
func (c *HTTPClient) Quote(ctx context.Context, router, tokenIn, tokenOut common.Address, amountIn decimal.Decimal) (decimal.Decimal, error) {
	params := []interface{}{
		map[string]interface{}{
			"router":      router.Hex(),
			"path":        []string{tokenIn.Hex(), tokenOut.Hex()},
			"amountInWei": ToWei(amountIn).String(),
		},
	}

	var result quoteResult
	if err := c.call(ctx, "swap_getAmountsOut", params, &result); err != nil {
		return decimal.Zero, err
	}

	wei, err := decimal.NewFromString(result.AmountOutWei)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amountOutWei %q: %w", result.AmountOutWei, err)
	}
	return FromWei(wei), nil
}

type quoteResult struct {
	AmountOutWei string `json:"amountOutWei"`
}

// SubmitSwap submits one swap leg and blocks until the sidecar reports a
// confirmed receipt or a terminal error.
func (c *HTTPClient) SubmitSwap(ctx context.Context, order SwapOrder) (*SwapReceipt, error) {
	params := []interface{}{
		map[string]interface{}{
			"router":          order.Router.Hex(),
			"path":            []string{order.TokenIn.Hex(), order.TokenOut.Hex()},
			"amountInWei":     ToWei(order.AmountIn).String(),
			"amountOutMinWei": ToWei(order.MinAmountOut).String(),
			"recipient":       order.Recipient.Hex(),
			"deadline":        order.Deadline.UTC().Unix(),
		},
	}

	var result submitResult
	if err := c.call(ctx, "swap_exactTokensForTokens", params, &result); err != nil {
		return nil, err
	}

	wei, err := decimal.NewFromString(result.AmountOutWei)
	if err != nil {
		return nil, fmt.Errorf("parse amountOutWei %q: %w", result.AmountOutWei, err)
	}

	return &SwapReceipt{
		TxHash:    common.HexToHash(result.TxHash),
		AmountOut: FromWei(wei),
	}, nil
}

type submitResult struct {
	TxHash       string `json:"txHash"`
	AmountOutWei string `json:"amountOutWei"`
}
