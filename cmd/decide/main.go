// Package main runs one offline decision cycle against scripted market data.
// Useful for demonstrating the pipeline without live endpoints or a wallet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/decision"
	"bnb-arb-agent/internal/execution"
	"bnb-arb-agent/internal/ingestion"
	ingeststub "bnb-arb-agent/internal/ingestion/stub"
	"bnb-arb-agent/internal/intel"
	"bnb-arb-agent/internal/orchestrator"
	"bnb-arb-agent/internal/price"
	"bnb-arb-agent/internal/sentiment"
	"bnb-arb-agent/internal/storage/memory"
	"bnb-arb-agent/internal/swapclient"
	swapstub "bnb-arb-agent/internal/swapclient/stub"
)

// Canned bullish market texts used when none are supplied.
var demoTexts = []string{
	"BNB breaks resistance as bullish momentum builds before expected listing",
	"Whale accumulation detected, buy pressure surging across BNB pairs",
	"PancakeSwap volume rallies, traders expect breakout",
}

type fixedCEX struct{ price float64 }

func (f fixedCEX) GetPrice(_ context.Context, _ string) (price.Quote, error) {
	return price.Quote{Price: f.price, Available: f.price > 0}, nil
}

type fixedDEX struct{ price float64 }

func (f fixedDEX) GetPrice(_ context.Context, _ string) float64 { return f.price }

func main() {
	token := flag.String("token", "BNB", "Token to evaluate")
	cexPrice := flag.Float64("cex-price", 612.0, "Scripted CEX price (USD)")
	dexPrice := flag.Float64("dex-price", 600.0, "Scripted DEX price (USD)")
	texts := flag.String("texts", "", "Pipe-separated market texts (default: canned bullish set)")
	execute := flag.Bool("execute", false, "Run the execution path against a scripted swap sidecar")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := config.Default()
	cfg.TargetTokens = []string{*token}
	cfg.Execution.Enabled = *execute
	cfg.Execution.WalletAddress = "0x0000000000000000000000000000000000000001"

	marketTexts := demoTexts
	if *texts != "" {
		marketTexts = strings.Split(*texts, "|")
	}
	source := ingeststub.New("demo")
	for _, text := range marketTexts {
		source.Articles = append(source.Articles, ingestion.Article{Source: "demo", Title: text})
	}
	feed := ingestion.NewManager(ingestion.ManagerOptions{
		Sources: []ingestion.Source{source},
		Logger:  logger,
	})

	ledger := memory.NewLedgerStore()
	swap := scriptedSwap(cfg, *token)
	breaker := execution.NewCircuitBreaker(cfg.Breaker.MaxFailures, cfg.BreakerCooldown(), logger)
	coordinator := execution.NewCoordinator(cfg.Execution, swap, ledger, breaker, logger)

	// The narrative monitor is the only one that works offline; pressure and
	// liquidity need live endpoints and are left out here.
	aggregator := intel.NewAggregator([]intel.Monitor{intel.NewNarrativeMonitor()}, logger)

	orch := orchestrator.New(orchestrator.Options{
		Config:    cfg,
		Engine:    decision.NewEngine(cfg, logger),
		Texts:     feed,
		Intel:     aggregator,
		Sentiment: sentiment.NewAnalyzer(nil, logger),
		CEX:       fixedCEX{price: *cexPrice},
		DEX:       fixedDEX{price: *dexPrice},
		Executor:  coordinator,
		Logger:    logger,
	})

	result, err := orch.RunCycle(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running cycle: %v\n", err)
		os.Exit(1)
	}

	for _, rec := range result.Decisions {
		fmt.Printf("Token:       %s\n", rec.Token)
		fmt.Printf("CEX price:   %.4f\n", rec.CEXPrice)
		fmt.Printf("DEX price:   %.4f\n", rec.DEXPrice)
		fmt.Printf("Spread:      %.2f%% (%s)\n", rec.PriceDiffPct*100, rec.Direction)
		fmt.Printf("Sentiment:   %.4f (%s, urgency %s)\n", rec.SentimentSignal, rec.SignalType, rec.Urgency)
		fmt.Printf("Phase:       %s (risk %s)\n", rec.MarketPhase, rec.RiskLevel)
		fmt.Printf("Confidence:  %d/100 (arb confirmed: %t)\n", rec.ConfidenceScore, rec.ArbConfirmed)
		fmt.Printf("Action:      %s\n", rec.Action)
		if rec.IntelRecommendation != "" {
			fmt.Printf("Intel:       %s\n", rec.IntelRecommendation)
		}
		if res := rec.ExecutionResult; res != nil {
			fmt.Printf("Execution:   %s (%s)\n", res.Status, res.Reason)
			if res.BuyTxHash != "" {
				fmt.Printf("  buy tx:    %s\n", res.BuyTxHash)
			}
			if res.SellTxHash != "" {
				fmt.Printf("  sell tx:   %s\n", res.SellTxHash)
			}
		}
		fmt.Println()
	}
}

// scriptedSwap wires a stub sidecar that quotes a profitable round trip and
// confirms both legs.
func scriptedSwap(cfg *config.Config, token string) *swapstub.Client {
	swap := swapstub.NewClient()

	base := common.HexToAddress(cfg.Execution.BaseTokenAddress)
	target := common.HexToAddress(cfg.Execution.TokenAddresses[token])

	amount := decimal.NewFromFloat(cfg.Execution.TradeAmount)
	tokenOut := amount.Mul(decimal.NewFromFloat(0.0016))
	swap.SetQuote(base, target, tokenOut)
	swap.SetQuote(target, base, amount.Mul(decimal.NewFromFloat(1.02)))
	swap.QueueSwap(&swapclient.SwapReceipt{
		TxHash:    common.HexToHash("0xdeadbeef01"),
		AmountOut: tokenOut,
	}, nil)
	swap.QueueSwap(&swapclient.SwapReceipt{
		TxHash:    common.HexToHash("0xdeadbeef02"),
		AmountOut: amount.Mul(decimal.NewFromFloat(1.02)),
	}, nil)

	return swap
}
