package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneta/internal/auth"
	"moneta/internal/charts"
	"moneta/internal/config"
	"moneta/internal/events"
	apphttp "moneta/internal/http"
	applog "moneta/internal/log"
	"moneta/internal/services"
	"moneta/internal/storage"
)

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = "api"
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.DataBackend, cfg.DSN())
	if err != nil {
		logger.Error("failed to open storage", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("storage ready", "backend", cfg.DataBackend)

	// The event bus is optional; without it mutations are simply not mirrored.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("event bus connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("event bus disabled, no AMQP_URL provided")
	}

	authMgr := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Accounts:              services.NewAccountService(repo, authMgr),
		Categories:            services.NewCategoryService(repo),
		Transactions:          services.NewTransactionService(repo, publisher),
		Reports:               services.NewReportService(repo, charts.NewGenerator()),
		CSV:                   services.NewCSVService(repo, cfg.ImportMaxRows),
		Auth:                  authMgr,
		DB:                    repo,
		AuthRequestsPerMinute: cfg.AuthRequestsPerMinute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
