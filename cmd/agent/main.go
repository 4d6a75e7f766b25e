// Package main runs the arbitrage agent as a long-lived service: scheduled
// decision cycles, a prometheus endpoint, and graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/decision"
	"bnb-arb-agent/internal/execution"
	"bnb-arb-agent/internal/ingestion"
	"bnb-arb-agent/internal/intel"
	"bnb-arb-agent/internal/observability"
	"bnb-arb-agent/internal/orchestrator"
	"bnb-arb-agent/internal/price"
	"bnb-arb-agent/internal/sentiment"
	"bnb-arb-agent/internal/storage"
	chstore "bnb-arb-agent/internal/storage/clickhouse"
	filestore "bnb-arb-agent/internal/storage/file"
	"bnb-arb-agent/internal/storage/migrations"
	pgstore "bnb-arb-agent/internal/storage/postgres"
	"bnb-arb-agent/internal/swapclient"
)

// cycleTimeout bounds one full decision cycle.
const cycleTimeout = 90 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("agent exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ledger: postgres when a DSN is configured, JSONL file otherwise.
	var ledger storage.LedgerStore
	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		ledger = pgstore.NewLedgerStore(pool)
		logger.Info("trade ledger backed by postgres")
	} else {
		fileLedger, err := filestore.NewLedgerStore(cfg.Storage.LedgerFile, logger)
		if err != nil {
			return fmt.Errorf("open ledger file: %w", err)
		}
		ledger = fileLedger
		logger.Info("trade ledger backed by file", "path", cfg.Storage.LedgerFile)
	}

	// Decision history sink is optional.
	var decisions storage.DecisionStore
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("connect clickhouse: %w", err)
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		decisions = chstore.NewDecisionStore(conn)
		logger.Info("decision history backed by clickhouse")
	}

	swap := swapclient.NewHTTPClient(cfg.Execution.SwapEndpoint)
	breaker := execution.NewCircuitBreaker(cfg.Breaker.MaxFailures, cfg.BreakerCooldown(), logger)
	coordinator := execution.NewCoordinator(cfg.Execution, swap, ledger, breaker, logger)

	cex := price.NewCEXClient(cfg.CEXEndpoint)
	var subgraphs []string
	if cfg.SubgraphEndpoint != "" {
		subgraphs = append(subgraphs, cfg.SubgraphEndpoint)
	}
	dex := price.NewDEXFetcher(subgraphs, swap,
		cfg.Execution.RouterAddress, cfg.Execution.BaseTokenAddress,
		cfg.Execution.TokenAddresses, logger)

	var cache orchestrator.PriceCache
	if cfg.CEXStreamURL != "" {
		pairs := make(map[string]string, len(cfg.TargetTokens))
		for _, token := range cfg.TargetTokens {
			pairs[token] = strings.ToLower(token) + "usdt"
		}
		stream, err := price.NewStream(ctx, cfg.CEXStreamURL, pairs, nil, logger)
		if err != nil {
			logger.Warn("price stream unavailable, using REST only", "error", err)
		} else {
			defer stream.Close()
			cache = stream
		}
	}

	texts := ingestion.NewManager(ingestion.ManagerOptions{
		Sources: []ingestion.Source{
			ingestion.NewRSSSource(nil, logger),
			ingestion.NewCryptoPanicSource(cfg.CryptoPanicURL, cfg.CryptoPanicToken),
			ingestion.NewTrendingSource(cfg.CEXEndpoint),
		},
		Keywords: cfg.SearchKeywords,
		Logger:   logger,
	})

	aggregator := intel.NewAggregator([]intel.Monitor{
		intel.NewPressureMonitor(cfg.CEXEndpoint),
		intel.NewLiquidityMonitor(cfg.LiquidityEndpoint, cfg.LiquidityProtocol),
		intel.NewNarrativeMonitor(),
	}, logger)

	metrics := observability.NewMetrics("")

	orch := orchestrator.New(orchestrator.Options{
		Config:        cfg,
		Engine:        decision.NewEngine(cfg, logger),
		Texts:         texts,
		Intel:         aggregator,
		Sentiment:     sentiment.NewAnalyzer(nil, logger),
		CEX:           cex,
		DEX:           dex,
		Cache:         cache,
		Executor:      coordinator,
		Breaker:       breaker,
		DecisionStore: decisions,
		Metrics:       metrics,
		Logger:        logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		logger.Info("metrics endpoint listening", "addr", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	runCycle := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
		defer cancel()

		result, err := orch.RunCycle(cycleCtx)
		if err != nil {
			logger.Error("cycle aborted", "error", err)
			return
		}
		for _, msg := range result.Errors {
			logger.Warn("cycle issue", "detail", msg)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CycleCron, runCycle); err != nil {
		return fmt.Errorf("schedule cycles (%q): %w", cfg.CycleCron, err)
	}
	scheduler.Start()
	logger.Info("agent started",
		"tokens", cfg.TargetTokens,
		"schedule", cfg.CycleCron,
		"execution_enabled", cfg.Execution.Enabled,
	)

	// Run one cycle immediately instead of waiting a full cron interval.
	runCycle()

	<-ctx.Done()
	logger.Info("shutting down")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
	return nil
}
