package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"otodom-scraper/browser"
	"otodom-scraper/config"
	"otodom-scraper/observability"
	"otodom-scraper/scraper/otodom"
	"otodom-scraper/services"
	"otodom-scraper/storage"
	"otodom-scraper/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	runID := uuid.NewString()
	logger := utils.NewLogger(cfg.LogLevel).With("run_id", runID)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Otodom scraper starting ===")
	logger.Info("Config — start: %s | page ceiling: %d | wait: %v | settle: %v/%v",
		cfg.StartURL, cfg.PageCeiling, cfg.WaitTimeout, cfg.SearchSettle, cfg.PageSettle)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	if cfg.MetricsPort != "" {
		srv := observability.Serve(cfg.MetricsPort, reg)
		defer srv.Close()
		logger.Info("Metrics exposed on :%s/metrics", cfg.MetricsPort)
	}

	db, err := storage.OpenDB(ctx, cfg.DSN(), cfg.DBConnectTimeout)
	if err != nil {
		logger.Error("Error connecting to database: %v", err)
		logger.Warn("Continuing without persistence; listings will be scraped but not saved")
	}
	store := storage.NewPropertyStore(db, logger)
	if store.Connected() {
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("Error creating table: %v", err)
		}
	}

	opts := []otodom.Option{otodom.WithMetrics(metrics), otodom.WithRunID(runID)}
	if cfg.RawCSVPath != "" {
		journal, err := storage.NewCSVJournal(cfg.RawCSVPath)
		if err != nil {
			logger.Warn("Raw journal disabled: %v", err)
		} else {
			defer journal.Close()
			opts = append(opts, otodom.WithJournal(journal))
			logger.Info("Raw listings journal → %s", cfg.RawCSVPath)
		}
	}

	session, err := browser.NewChrome(ctx, browser.Options{
		Headless:      cfg.Headless,
		ChromeBin:     cfg.ChromeBin,
		ActionTimeout: cfg.WaitTimeout,
	}, logger)
	if err != nil {
		logger.Error("Failed to start browser: %v", err)
		_ = store.Close()
		return 1
	}

	controller := otodom.NewController(otodom.SettingsFromConfig(cfg), session, store, logger, opts...)
	summary, err := controller.Run(ctx)
	if err != nil {
		logger.Error("Scrape failed: %v", err)
		return 1
	}

	logger.Info("Pages: %d | extracted: %d | dropped: %d | inserted: %d | insert failures: %d",
		summary.Pages, summary.Extracted, summary.Dropped, summary.Inserted, summary.InsertFailures)

	if db == nil {
		logger.Warn("Skipping market report: no database connection")
		return 0
	}
	if err := printReport(ctx, cfg, logger); err != nil {
		logger.Error("Failed to build market report: %v", err)
	}

	fmt.Printf("  Done. Stored listings → PostgreSQL (properties table)\n\n")
	return 0
}

// printReport reads the stored rows over a fresh connection, the way an
// external analysis job would.
func printReport(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	db, err := storage.OpenDB(ctx, cfg.DSN(), cfg.DBConnectTimeout)
	if err != nil {
		return err
	}
	reader := storage.NewPropertyStore(db, logger)
	defer reader.Close()

	rows, err := reader.FetchAnalysis(ctx)
	if err != nil {
		return err
	}

	insights := services.NewInsightService(logger)
	insights.Print(insights.Generate(rows))
	return nil
}
