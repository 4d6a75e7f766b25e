package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TVL swing beyond which liquidity is moving, in percent.
const tvlSwingPct = 2.0

// LiquidityMonitor tracks protocol TVL through a DeFiLlama-style API. The
// direction of the last daily TVL change is the signal.
type LiquidityMonitor struct {
	baseURL  string
	protocol string
	client   *http.Client
}

// NewLiquidityMonitor creates a LiquidityMonitor for one protocol slug.
func NewLiquidityMonitor(baseURL, protocol string) *LiquidityMonitor {
	return &LiquidityMonitor{
		baseURL:  strings.TrimRight(baseURL, "/"),
		protocol: protocol,
		client:   &http.Client{Timeout: 8 * time.Second},
	}
}

// Compile-time interface check.
var _ Monitor = (*LiquidityMonitor)(nil)

func (m *LiquidityMonitor) Name() string { return "liquidity" }

type tvlResponse struct {
	TVL []struct {
		TotalLiquidityUSD float64 `json:"totalLiquidityUSD"`
	} `json:"tvl"`
}

// Fetch compares the two most recent TVL observations.
func (m *LiquidityMonitor) Fetch(ctx context.Context, _ string) (Reading, error) {
	endpoint := fmt.Sprintf("%s/protocol/%s", m.baseURL, m.protocol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NeutralReading(m.Name()), err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return NeutralReading(m.Name()), err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return NeutralReading(m.Name()), err
	}
	if resp.StatusCode != http.StatusOK {
		return NeutralReading(m.Name()), fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed tvlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return NeutralReading(m.Name()), fmt.Errorf("decode tvl: %w", err)
	}
	if len(parsed.TVL) < 2 {
		return NeutralReading(m.Name()), nil
	}

	current := parsed.TVL[len(parsed.TVL)-1].TotalLiquidityUSD
	previous := parsed.TVL[len(parsed.TVL)-2].TotalLiquidityUSD
	if previous <= 0 {
		return NeutralReading(m.Name()), nil
	}
	changePct := (current - previous) / previous * 100

	signal := SignalStable
	switch {
	case changePct > tvlSwingPct:
		signal = SignalInflow
	case changePct < -tvlSwingPct:
		signal = SignalOutflow
	}

	return Reading{
		Monitor: m.Name(),
		Signal:  signal,
		Metrics: map[string]float64{
			"tvl_usd":            current,
			"tvl_change_24h_pct": changePct,
		},
	}, nil
}
