package price

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"bnb-arb-agent/internal/swapclient"
)

// DEXFetcher resolves on-chain prices. The exchange subgraph is tried first;
// when it yields nothing the router itself is quoted through the swap sidecar.
// CoinGecko is deliberately not a source here: it already serves as the CEX
// reference, and sharing it would zero out the spread.
type DEXFetcher struct {
	subgraphs []string
	swap      swapclient.Client
	router    common.Address
	base      common.Address
	tokens    map[string]string
	client    *http.Client
	logger    *slog.Logger
}

// NewDEXFetcher creates a DEXFetcher. swap may be nil, in which case the
// router fallback is disabled and only the subgraph is consulted.
func NewDEXFetcher(subgraphs []string, swap swapclient.Client, router, base string, tokens map[string]string, logger *slog.Logger) *DEXFetcher {
	return &DEXFetcher{
		subgraphs: subgraphs,
		swap:      swap,
		router:    common.HexToAddress(router),
		base:      common.HexToAddress(base),
		tokens:    tokens,
		client:    &http.Client{Timeout: 8 * time.Second},
		logger:    logger,
	}
}

// GetPrice returns the USD price for a token symbol, or 0 if no source has it.
func (f *DEXFetcher) GetPrice(ctx context.Context, token string) float64 {
	addr, ok := f.tokens[token]
	if !ok {
		f.logger.Warn("no contract address for token", "token", token)
		return 0
	}

	if p := f.fromSubgraph(ctx, addr); p > 0 {
		f.logger.Debug("dex price from subgraph", "token", token, "price", p)
		return p
	}

	if p := f.fromRouter(ctx, addr); p > 0 {
		f.logger.Debug("dex price from router", "token", token, "price", p)
		return p
	}

	f.logger.Warn("no on-chain price found", "token", token)
	return 0
}

type subgraphResponse struct {
	Data struct {
		Token *struct {
			DerivedUSD   string `json:"derivedUSD"`
			TokenDayData []struct {
				PriceUSD string `json:"priceUSD"`
			} `json:"tokenDayData"`
		} `json:"token"`
	} `json:"data"`
}

// fromSubgraph queries each configured subgraph endpoint in order.
func (f *DEXFetcher) fromSubgraph(ctx context.Context, tokenAddr string) float64 {
	query := fmt.Sprintf(
		`{ token(id: %q) { derivedUSD tokenDayData(first:1, orderBy:date, orderDirection:desc) { priceUSD } } }`,
		common.HexToAddress(tokenAddr).Hex(),
	)
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return 0
	}

	for _, endpoint := range f.subgraphs {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}

		var parsed subgraphResponse
		if err := json.Unmarshal(body, &parsed); err != nil || parsed.Data.Token == nil {
			continue
		}

		if p, err := strconv.ParseFloat(parsed.Data.Token.DerivedUSD, 64); err == nil && p > 0 {
			return p
		}
		if len(parsed.Data.Token.TokenDayData) > 0 {
			if p, err := strconv.ParseFloat(parsed.Data.Token.TokenDayData[0].PriceUSD, 64); err == nil && p > 0 {
				return p
			}
		}
	}

	return 0
}

// fromRouter quotes one token against the stable base through the router.
// The quote for 1 token unit in the stable asset is the USD price.
func (f *DEXFetcher) fromRouter(ctx context.Context, tokenAddr string) float64 {
	if f.swap == nil {
		return 0
	}

	out, err := f.swap.Quote(ctx, f.router, common.HexToAddress(tokenAddr), f.base, decimal.NewFromInt(1))
	if err != nil {
		f.logger.Debug("router quote failed", "token_addr", tokenAddr, "error", err)
		return 0
	}

	p, _ := out.Float64()
	if p <= 0 {
		return 0
	}
	return p
}
