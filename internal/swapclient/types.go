package swapclient

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// WeiPerToken is the scaling factor for 18-decimal ERC-20 tokens.
var WeiPerToken = decimal.New(1, 18)

// ToWei converts a token amount into its integer wei representation.
func ToWei(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(WeiPerToken).Truncate(0)
}

// FromWei converts an integer wei amount back into token units.
func FromWei(wei decimal.Decimal) decimal.Decimal {
	return wei.Div(WeiPerToken)
}

// SwapOrder describes one swap leg to be submitted to the router.
type SwapOrder struct {
	Router       common.Address
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     decimal.Decimal // token units, not wei
	MinAmountOut decimal.Decimal // slippage floor, token units
	Recipient    common.Address
	Deadline     time.Time
}

// SwapReceipt is the confirmed outcome of a submitted swap.
type SwapReceipt struct {
	TxHash    common.Hash
	AmountOut decimal.Decimal // token units
}

// Client is the transaction-side surface the execution layer depends on.
type Client interface {
	// IsAlive verifies the swap endpoint is reachable and synced.
	IsAlive(ctx context.Context) error

	// Quote returns the expected output amount for amountIn along the
	// tokenIn -> tokenOut route, in token units.
	Quote(ctx context.Context, router, tokenIn, tokenOut common.Address, amountIn decimal.Decimal) (decimal.Decimal, error)

	// SubmitSwap submits one swap leg and waits for confirmation.
	SubmitSwap(ctx context.Context, order SwapOrder) (*SwapReceipt, error)
}
