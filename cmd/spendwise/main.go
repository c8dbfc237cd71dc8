package main

import (
	"context"
	"net/http"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	"spendwise/internal/identity"
	"spendwise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// Ledger events are advisory; the API keeps serving when the broker is
	// down and the worker catches up on its periodic export.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, continuing without ledger events", "error", err)
		amqpClient = nil
	}

	budget, err := cfg.BudgetConfig()
	if err != nil {
		logger.Error("Invalid budget configuration", "error", err)
		return
	}

	transactions := services.NewTransactionService(sqliteRepo, amqpClient)
	categories := services.NewCategoryService(sqliteRepo, amqpClient)
	reports := services.NewReportService(sqliteRepo, budget)

	srv := apphttp.NewServer(":"+cfg.Port, transactions, categories, reports, identity.HeaderResolver{})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if err := sqliteRepo.Close(); err != nil {
			logger.Error("Storage close error", "error", err)
		}
	})

	logger.Info("Starting spendwise server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
