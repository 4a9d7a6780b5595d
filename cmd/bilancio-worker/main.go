package main

import (
	"context"
	"errors"
	"time"

	"bilancio/internal/cli"
	"bilancio/internal/export"
	exportgoogle "bilancio/internal/export/google"
	"bilancio/internal/notify"
	"bilancio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting bilancio-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	// AMQP is optional, the worker degrades to store-only mode.
	var publisher worker.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - events will not be published")
	}

	// Sheets export is optional as well.
	var exporter export.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := exportgoogle.NewClient(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Warn("Failed to initialize Sheets exporter, continuing without export", "error", err)
		} else {
			exporter = client
			logger.Info("Sheets exporter initialized", "sheet", cfg.GoogleSheetName)
		}
	} else {
		logger.Info("Sheets export disabled")
	}

	w := worker.New(store, publisher, exporter, cfg.MaterializeInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Catch-up worker configured",
		"interval", cfg.MaterializeInterval,
		"backend", cfg.DataBackend)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("bilancio-worker stopped")
}
