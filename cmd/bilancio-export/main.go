package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bilancio/internal/cli"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	exportgoogle "bilancio/internal/export/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	month := core.MonthKeyOf(time.Now())
	if len(os.Args) > 1 {
		parsed, err := core.ParseMonthKey(os.Args[1])
		if err != nil {
			logger.Error("Invalid month argument", "arg", os.Args[1], "error", err)
			fmt.Fprintln(os.Stderr, "Usage: bilancio-export [YYYY-MM]")
			os.Exit(2)
		}
		month = parsed
	}

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for export")
		os.Exit(1)
	}

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	ctx := context.Background()

	exporter, err := exportgoogle.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}

	report := engine.BuildMonthReport(snap, month)
	if err := exporter.WriteMonthReport(ctx, report); err != nil {
		logger.Error("Export failed", "month", month, "error", err)
		os.Exit(1)
	}

	logger.Info("Export complete", "month", month, "lines", len(report.Lines))
}
