// Package config loads the process-wide configuration once at startup.
// Components never read ambient environment state; they receive the parts of
// this value they need through their constructors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Thresholds holds the arbitrage-gate trigger levels.
type Thresholds struct {
	Sentiment    float64 `yaml:"sentiment"`      // |sentiment| above this corroborates
	PriceDiff    float64 `yaml:"price_diff"`     // fraction, e.g. 0.005 = 0.5%
	RawPriceGap  float64 `yaml:"raw_price_gap"`  // gap alone confirms above this, when DEX price is known
	MomentumGap  float64 `yaml:"momentum_gap"`   // lowered bar during MOMENTUM_BUILDING
	GateMinScore int     `yaml:"gate_min_score"` // confidence needed to corroborate the LLM's own flag
}

// ScoringWeights holds the confidence model weights. These are configurable
// policy, not derived science.
type ScoringWeights struct {
	Sentiment     float64 `yaml:"sentiment"`      // points per unit |sentiment|
	PriceDiff     float64 `yaml:"price_diff"`     // points per unit price-diff fraction
	UrgencyHigh   int     `yaml:"urgency_high"`
	UrgencyMedium int     `yaml:"urgency_medium"`
	ArbFlag       int     `yaml:"arb_flag"`
	PhaseMomentum int     `yaml:"phase_momentum"`
	PhaseAccum    int     `yaml:"phase_accumulation"`
	PhaseDistrib  int     `yaml:"phase_distribution"`
	PhaseVolSpike int     `yaml:"phase_volatility_spike"`
	RiskHigh      int     `yaml:"risk_high"`
	RiskLow       int     `yaml:"risk_low"`
}

// ActionCutoffs holds the decision-table confidence boundaries.
type ActionCutoffs struct {
	MinConfidence     int `yaml:"min_confidence"`     // below this: HOLD
	PaperConfidence   int `yaml:"paper_confidence"`   // at or above: PAPER_TRADE
	ExecuteConfidence int `yaml:"execute_confidence"` // at or above: EXECUTE_TRADE
	HighRiskGate      int `yaml:"high_risk_gate"`     // HIGH risk holds below this
}

// Breaker holds circuit-breaker tuning.
type Breaker struct {
	MaxFailures     int `yaml:"max_failures"`
	CooldownMinutes int `yaml:"cooldown_minutes"`
}

// Execution holds trade-execution settings.
type Execution struct {
	Enabled            bool    `yaml:"enabled"` // master kill switch
	TradeAmount        float64 `yaml:"trade_amount"`
	MinProfitThreshold float64 `yaml:"min_profit_threshold"` // fraction
	SlippageTolerance  float64 `yaml:"slippage_tolerance"`   // fraction
	DeadlineSeconds    int     `yaml:"deadline_seconds"`
	SwapEndpoint       string  `yaml:"swap_endpoint"`
	WalletAddress      string  `yaml:"wallet_address"`
	RouterAddress      string  `yaml:"router_address"`

	// BaseTokenAddress is the quote-side asset every route starts and ends in.
	BaseTokenAddress string `yaml:"base_token_address"`

	// TokenAddresses maps target token symbols to their contract addresses.
	TokenAddresses map[string]string `yaml:"token_addresses"`
}

// Storage holds backend connection settings. Only the ledger file is required;
// postgres and clickhouse backends are attached when their DSNs are set.
type Storage struct {
	LedgerFile    string `yaml:"ledger_file"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Config is the full application configuration.
type Config struct {
	TargetTokens []string `yaml:"target_tokens"`
	CycleCron    string   `yaml:"cycle_cron"` // cron spec for the decision cycle
	MetricsAddr  string   `yaml:"metrics_addr"`

	// SearchKeywords widen text ingestion beyond the token symbols.
	SearchKeywords []string `yaml:"search_keywords"`

	CEXEndpoint      string `yaml:"cex_endpoint"`
	CEXStreamURL     string `yaml:"cex_stream_url"`
	SubgraphEndpoint string `yaml:"subgraph_endpoint"`
	CryptoPanicURL   string `yaml:"cryptopanic_url"`
	CryptoPanicToken string `yaml:"cryptopanic_token"`

	// TVL feed for the liquidity monitor (DefiLlama-compatible).
	LiquidityEndpoint string `yaml:"liquidity_endpoint"`
	LiquidityProtocol string `yaml:"liquidity_protocol"`

	Thresholds Thresholds     `yaml:"thresholds"`
	Weights    ScoringWeights `yaml:"weights"`
	Actions    ActionCutoffs  `yaml:"actions"`
	Breaker    Breaker        `yaml:"breaker"`
	Execution  Execution      `yaml:"execution"`
	Storage    Storage        `yaml:"storage"`
}

// Default returns the canonical configuration. Values mirror the recognized
// option surface; everything here can be overridden by file or environment.
func Default() *Config {
	return &Config{
		TargetTokens:      []string{"BNB", "CAKE", "BTCB", "ETH"},
		SearchKeywords:    []string{"Binance", "BNB Chain", "PancakeSwap"},
		CycleCron:         "@every 2m",
		MetricsAddr:       ":9090",
		CEXEndpoint:       "https://api.coingecko.com/api/v3",
		CryptoPanicURL:    "https://cryptopanic.com/api/developer/v2",
		LiquidityEndpoint: "https://api.llama.fi",
		LiquidityProtocol: "pancakeswap",
		Thresholds: Thresholds{
			Sentiment:    0.3,
			PriceDiff:    0.005,
			RawPriceGap:  0.005,
			MomentumGap:  0.003,
			GateMinScore: 30,
		},
		Weights: ScoringWeights{
			Sentiment:     40,
			PriceDiff:     1000,
			UrgencyHigh:   20,
			UrgencyMedium: 10,
			ArbFlag:       10,
			PhaseMomentum: 20,
			PhaseAccum:    15,
			PhaseDistrib:  -25,
			PhaseVolSpike: 10,
			RiskHigh:      -10,
			RiskLow:       5,
		},
		Actions: ActionCutoffs{
			MinConfidence:     20,
			PaperConfidence:   30,
			ExecuteConfidence: 60,
			HighRiskGate:      60,
		},
		Breaker: Breaker{
			MaxFailures:     3,
			CooldownMinutes: 15,
		},
		Execution: Execution{
			Enabled:            false,
			TradeAmount:        0.01,
			MinProfitThreshold: 0.005,
			SlippageTolerance:  0.02,
			DeadlineSeconds:    300,
			SwapEndpoint:       "http://localhost:3001",
			RouterAddress:      "0x10ED43C718714eb63d5aA57B78B54704E256024E",
			BaseTokenAddress:   "0x55d398326f99059fF775485246999027B3197955",
			TokenAddresses: map[string]string{
				"BNB":  "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
				"CAKE": "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82",
				"BTCB": "0x7130d2A12B9BCbFAe4f2634d864A1Ee1Ce3Ead9c",
				"ETH":  "0x2170Ed0880ac9A755fd29B2688956BD959F933F8",
			},
		},
		Storage: Storage{
			LedgerFile: "trade_log.jsonl",
		},
	}
}

// Load reads config from a YAML file (if present), then applies environment
// variable overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	// Load .env into the process environment without overriding existing vars.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SWAP_ENDPOINT"); v != "" {
		cfg.Execution.SwapEndpoint = v
	}
	if v := os.Getenv("WALLET_ADDRESS"); v != "" {
		cfg.Execution.WalletAddress = v
	}
	if v := os.Getenv("CRYPTOPANIC_KEY"); v != "" {
		cfg.CryptoPanicToken = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("TRADE_LEDGER_FILE"); v != "" {
		cfg.Storage.LedgerFile = v
	}
	if v, ok := envBool("EXECUTION_ENABLED"); ok {
		cfg.Execution.Enabled = v
	}
	if v, ok := envFloat("TRADE_AMOUNT"); ok {
		cfg.Execution.TradeAmount = v
	}
	if v, ok := envFloat("MIN_PROFIT_THRESHOLD"); ok {
		cfg.Execution.MinProfitThreshold = v
	}
	if v, ok := envFloat("SLIPPAGE_TOLERANCE"); ok {
		cfg.Execution.SlippageTolerance = v
	}
	if v, ok := envInt("CIRCUIT_BREAKER_MAX_FAILURES"); ok {
		cfg.Breaker.MaxFailures = v
	}
	if v, ok := envInt("CIRCUIT_BREAKER_COOLDOWN_MIN"); ok {
		cfg.Breaker.CooldownMinutes = v
	}
	if v, ok := envFloat("SENTIMENT_THRESHOLD"); ok {
		cfg.Thresholds.Sentiment = v
	}
	if v, ok := envFloat("PRICE_DIFF_THRESHOLD"); ok {
		cfg.Thresholds.PriceDiff = v
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate rejects impossible configurations. Called at startup; a bad config
// fails fast instead of surfacing mid-cycle.
func (c *Config) Validate() error {
	if len(c.TargetTokens) == 0 {
		return fmt.Errorf("config: target_tokens must not be empty")
	}
	if c.Thresholds.Sentiment < 0 || c.Thresholds.Sentiment > 1 {
		return fmt.Errorf("config: sentiment threshold %.3f outside [0,1]", c.Thresholds.Sentiment)
	}
	if c.Thresholds.PriceDiff < 0 {
		return fmt.Errorf("config: price_diff threshold must be non-negative")
	}
	if c.Actions.MinConfidence < 0 || c.Actions.ExecuteConfidence > 100 {
		return fmt.Errorf("config: action cutoffs must lie in [0,100]")
	}
	if c.Actions.MinConfidence > c.Actions.PaperConfidence ||
		c.Actions.PaperConfidence > c.Actions.ExecuteConfidence {
		return fmt.Errorf("config: action cutoffs must be ordered min <= paper <= execute")
	}
	if c.Breaker.MaxFailures < 1 {
		return fmt.Errorf("config: breaker max_failures must be at least 1")
	}
	if c.Breaker.CooldownMinutes < 0 {
		return fmt.Errorf("config: breaker cooldown must be non-negative")
	}
	if c.Execution.TradeAmount <= 0 {
		return fmt.Errorf("config: trade_amount must be positive")
	}
	if c.Execution.SlippageTolerance < 0 || c.Execution.SlippageTolerance >= 1 {
		return fmt.Errorf("config: slippage_tolerance %.3f outside [0,1)", c.Execution.SlippageTolerance)
	}
	if c.Execution.Enabled && c.Execution.WalletAddress == "" {
		return fmt.Errorf("config: execution enabled but no wallet address configured")
	}
	return nil
}

// BreakerCooldown returns the cooldown as a duration.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.Breaker.CooldownMinutes) * time.Minute
}
