package swapclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	testRouter = common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E")
	testUSDT   = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	testWBNB   = common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")
)

func rpcServer(t *testing.T, handler func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			ID      uint64            `json:"id"`
			Method  string            `json:"method"`
			Params  []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("expected jsonrpc 2.0, got %q", req.JSONRPC)
		}

		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestHTTPClient_IsAlive(t *testing.T) {
	srv := rpcServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		if method != "swap_isAlive" {
			t.Errorf("unexpected method %q", method)
		}
		return true, nil
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxRetries(0))
	if err := c.IsAlive(context.Background()); err != nil {
		t.Fatalf("IsAlive failed: %v", err)
	}
}

func TestHTTPClient_IsAliveNotReady(t *testing.T) {
	srv := rpcServer(t, func(_ string, _ []json.RawMessage) (any, *rpcError) {
		return false, nil
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxRetries(0))
	if err := c.IsAlive(context.Background()); err == nil {
		t.Fatal("expected error when sidecar reports not ready")
	}
}

func TestHTTPClient_Quote(t *testing.T) {
	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "swap_getAmountsOut" {
			t.Errorf("unexpected method %q", method)
		}
		var p struct {
			Router      string   `json:"router"`
			Path        []string `json:"path"`
			AmountInWei string   `json:"amountInWei"`
		}
		if err := json.Unmarshal(params[0], &p); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if p.Router != testRouter.Hex() {
			t.Errorf("wrong router: %s", p.Router)
		}
		if len(p.Path) != 2 || p.Path[0] != testUSDT.Hex() || p.Path[1] != testWBNB.Hex() {
			t.Errorf("wrong path: %v", p.Path)
		}
		// 2.5 tokens in wei.
		if p.AmountInWei != "2500000000000000000" {
			t.Errorf("wrong amountInWei: %s", p.AmountInWei)
		}
		return quoteResult{AmountOutWei: "4100000000000000"}, nil
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxRetries(0))
	out, err := c.Quote(context.Background(), testRouter, testUSDT, testWBNB, decimal.RequireFromString("2.5"))
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if !out.Equal(decimal.RequireFromString("0.0041")) {
		t.Errorf("expected 0.0041, got %s", out)
	}
}

func TestHTTPClient_SubmitSwap(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)

	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "swap_exactTokensForTokens" {
			t.Errorf("unexpected method %q", method)
		}
		var p struct {
			AmountOutMinWei string `json:"amountOutMinWei"`
			Deadline        int64  `json:"deadline"`
		}
		if err := json.Unmarshal(params[0], &p); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if p.AmountOutMinWei != "990000000000000000" {
			t.Errorf("wrong amountOutMinWei: %s", p.AmountOutMinWei)
		}
		if p.Deadline != deadline.Unix() {
			t.Errorf("wrong deadline: %d", p.Deadline)
		}
		return submitResult{
			TxHash:       "0xabcd1234000000000000000000000000000000000000000000000000000000ff",
			AmountOutWei: "995000000000000000",
		}, nil
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxRetries(0))
	receipt, err := c.SubmitSwap(context.Background(), SwapOrder{
		Router:       testRouter,
		TokenIn:      testUSDT,
		TokenOut:     testWBNB,
		AmountIn:     decimal.NewFromInt(1),
		MinAmountOut: decimal.RequireFromString("0.99"),
		Deadline:     deadline,
	})
	if err != nil {
		t.Fatalf("SubmitSwap failed: %v", err)
	}
	if receipt.TxHash == (common.Hash{}) {
		t.Error("expected non-zero tx hash")
	}
	if !receipt.AmountOut.Equal(decimal.RequireFromString("0.995")) {
		t.Errorf("expected 0.995, got %s", receipt.AmountOut)
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	calls := 0
	srv := rpcServer(t, func(_ string, _ []json.RawMessage) (any, *rpcError) {
		calls++
		return nil, &rpcError{Code: -32000, Message: "insufficient balance"}
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	err := c.IsAlive(context.Background())
	if err == nil {
		t.Fatal("expected rpc error")
	}
	if calls != 1 {
		t.Errorf("rpc errors must not be retried, got %d calls", calls)
	}
}

func TestHTTPClient_RetriesTransportErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": true}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	if err := c.IsAlive(context.Background()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestToWeiFromWei(t *testing.T) {
	amount := decimal.RequireFromString("1.5")
	wei := ToWei(amount)
	if wei.String() != "1500000000000000000" {
		t.Errorf("ToWei: got %s", wei)
	}
	if !FromWei(wei).Equal(amount) {
		t.Errorf("round trip: got %s", FromWei(wei))
	}
}
