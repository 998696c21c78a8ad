package main

import (
	"os"
	"time"

	"socialspend/internal/amqp"
	"socialspend/internal/cli"
	applog "socialspend/internal/log"
	"socialspend/internal/services"
	"socialspend/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting socialspend-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	sqliteRepo, err := cli.InitSQLite(logger.Logger, cfg.SQLiteDBPath)
	if err != nil {
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	importService := services.NewImportService(sqliteRepo, logger)
	importService.SetImportDir(cfg.ImportDir)
	importWorker := worker.NewImportWorker(importService)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		logger.Info("Shutting down worker...")
	})

	// Files named in DATA_FILE are imported once so a fresh database is usable
	// before the first request arrives.
	if len(cfg.DataFiles) > 0 {
		logger.Info("Performing startup import", "files", cfg.DataFiles)
		importWorker.StartupImport(ctx, cfg.DataFiles)
	}

	if n, err := sqliteRepo.CountRecords(ctx); err == nil {
		logger.Info("Store ready", "records", n, "path", cfg.SQLiteDBPath)
	}

	if err := importWorker.Run(ctx, amqpClient); err != nil {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
