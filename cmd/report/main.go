// Package main generates a trade ledger audit report (markdown + CSV).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bnb-arb-agent/internal/config"
	"bnb-arb-agent/internal/reporting"
	"bnb-arb-agent/internal/storage"
	filestore "bnb-arb-agent/internal/storage/file"
	pgstore "bnb-arb-agent/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	window := flag.Int("window", 0, "Number of most recent attempts to cover (0 = all)")
	flag.Parse()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ledger, cleanup, err := openLedger(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	generator := reporting.NewGenerator(ledger)
	report, err := generator.Generate(ctx, *window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "LEDGER_AUDIT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", mdPath, err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*outputDir, "attempts.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.RecentAttempts)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", csvPath, err)
		os.Exit(1)
	}

	fmt.Printf("Report written: %s (%d attempts)\n", mdPath, report.Summary.TotalAttempts)
	fmt.Printf("CSV written:    %s\n", csvPath)
}

// openLedger prefers the postgres backend when a DSN is configured and falls
// back to the JSONL file store.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.LedgerStore, func(), error) {
	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewLedgerStore(pool), pool.Close, nil
	}

	store, err := filestore.NewLedgerStore(cfg.Storage.LedgerFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
