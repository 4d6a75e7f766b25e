// Package stub provides a scripted swapclient.Client for tests.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"bnb-arb-agent/internal/swapclient"
)

// ErrNoQuote is returned when no quote is scripted for a route.
var ErrNoQuote = errors.New("no quote for route")

// Client implements swapclient.Client for testing. Quotes are keyed by
// tokenIn -> tokenOut; swap outcomes are consumed in submission order.
type Client struct {
	mu sync.Mutex

	AliveErr error
	Quotes   map[string]decimal.Decimal

	receipts []*swapclient.SwapReceipt
	errs     []error
	Orders   []swapclient.SwapOrder
}

// NewClient creates a new stub swap client.
func NewClient() *Client {
	return &Client{Quotes: make(map[string]decimal.Decimal)}
}

// Compile-time interface check.
var _ swapclient.Client = (*Client)(nil)

func routeKey(tokenIn, tokenOut common.Address) string {
	return fmt.Sprintf("%s->%s", tokenIn.Hex(), tokenOut.Hex())
}

// SetQuote scripts the quoted output for a route.
func (c *Client) SetQuote(tokenIn, tokenOut common.Address, amountOut decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Quotes[routeKey(tokenIn, tokenOut)] = amountOut
}

// QueueSwap scripts the outcome of the next SubmitSwap call.
func (c *Client) QueueSwap(receipt *swapclient.SwapReceipt, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts = append(c.receipts, receipt)
	c.errs = append(c.errs, err)
}

// IsAlive returns the scripted liveness error.
func (c *Client) IsAlive(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.AliveErr
}

// Quote returns the scripted quote for the route.
func (c *Client) Quote(_ context.Context, _, tokenIn, tokenOut common.Address, _ decimal.Decimal) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.Quotes[routeKey(tokenIn, tokenOut)]
	if !ok {
		return decimal.Zero, ErrNoQuote
	}
	return out, nil
}

// SubmitSwap records the order and pops the next scripted outcome.
func (c *Client) SubmitSwap(_ context.Context, order swapclient.SwapOrder) (*swapclient.SwapReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Orders = append(c.Orders, order)

	if len(c.receipts) == 0 {
		return nil, errors.New("no scripted swap outcome")
	}
	receipt, err := c.receipts[0], c.errs[0]
	c.receipts = c.receipts[1:]
	c.errs = c.errs[1:]
	return receipt, err
}
