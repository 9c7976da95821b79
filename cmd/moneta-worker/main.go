package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moneta/internal/backup"
	"moneta/internal/config"
	"moneta/internal/events"
	applog "moneta/internal/log"
	"moneta/internal/storage"
	"moneta/internal/worker"
)

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = "worker"
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("starting backup worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.SheetsSpreadsheetID == "" {
		logger.Error("SHEETS_SPREADSHEET_ID is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.DataBackend, cfg.DSN())
	if err != nil {
		logger.Error("failed to open storage", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appender, err := backup.NewClient(ctx, backup.Options{
		SpreadsheetID:   cfg.SheetsSpreadsheetID,
		SheetName:       cfg.SheetsSheetName,
		CredentialsJSON: cfg.SheetsCredentialsJSON,
		CredentialsFile: cfg.SheetsCredentialsFile,
	})
	if err != nil {
		logger.Error("failed to initialize sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("sheets client ready",
		"spreadsheet_id", cfg.SheetsSpreadsheetID,
		"sheet", cfg.SheetsSheetName)

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	backupWorker := worker.NewBackupWorker(repo, appender)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeTransactionEvents(gctx, func(ev *events.TransactionEvent) error {
			return backupWorker.HandleEvent(gctx, ev)
		})
	})

	logger.Info("worker running", "queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}
