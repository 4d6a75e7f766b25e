package intel

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

// pressureImbalance is the volume ratio beyond which candles are considered
// one-sided.
const pressureImbalance = 1.2

var pressureCoinIDs = map[string]string{
	"BNB":  "binancecoin",
	"CAKE": "pancakeswap-token",
	"BTCB": "bitcoin-bep2",
	"ETH":  "ethereum",
}

// PressureMonitor derives buy/sell pressure from the last day of hourly
// candles: bullish body mass versus bearish body mass.
type PressureMonitor struct {
	baseURL string
	client  *http.Client
}

// NewPressureMonitor creates a PressureMonitor against a CoinGecko-style API.
func NewPressureMonitor(baseURL string) *PressureMonitor {
	return &PressureMonitor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

// Compile-time interface check.
var _ Monitor = (*PressureMonitor)(nil)

func (m *PressureMonitor) Name() string { return "pressure" }

// Fetch pulls OHLC candles and classifies the pressure balance.
func (m *PressureMonitor) Fetch(ctx context.Context, token string) (Reading, error) {
	coinID, ok := pressureCoinIDs[token]
	if !ok {
		coinID = strings.ToLower(token)
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", "1")
	endpoint := fmt.Sprintf("%s/coins/%s/ohlc?%s", m.baseURL, coinID, q.Encode())

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

	// Each candle is [timestamp, open, high, low, close].
	var candles [][]float64
	if err := json.Unmarshal(body, &candles); err != nil {
		return NeutralReading(m.Name()), fmt.Errorf("decode ohlc: %w", err)
	}
	if len(candles) < 3 {
		return NeutralReading(m.Name()), nil
	}

	var buyVol, sellVol float64
	for _, c := range candles {
		if len(c) < 5 {
			continue
		}
		open, close := c[1], c[4]
		if close > open {
			buyVol += close - open
		} else {
			sellVol += open - close
		}
	}

	total := buyVol + sellVol
	if total == 0 {
		total = 1
	}

	signal := SignalNeutral
	switch {
	case buyVol > sellVol*pressureImbalance:
		signal = SignalBullish
	case sellVol > buyVol*pressureImbalance:
		signal = SignalBearish
	}

	return Reading{
		Monitor: m.Name(),
		Signal:  signal,
		Metrics: map[string]float64{
			"buy_pressure_pct":  buyVol / total * 100,
			"sell_pressure_pct": sellVol / total * 100,
		},
	}, nil
}
