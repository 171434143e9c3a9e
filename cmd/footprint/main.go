package main

import (
	"os"

	"footprint/internal/aggregate"
	"footprint/internal/cli"
	"footprint/internal/config"
	"footprint/internal/log"
)

func main() {
	boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cli.LoadEnvFile(boot)

	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("Footprint tracker failed", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to close activity store", log.FieldError, err.Error())
		}
	}()

	summary, err := app.Dashboard.Summary(ctx, aggregate.Window7Days)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Dashboard summary",
		log.FieldOperation, log.OpAggregate,
		"total_kg", summary.Totals.Total,
		"week_kg", summary.Totals.Week,
		"month_kg", summary.Totals.Month,
		log.FieldWindowDays, summary.WindowDays,
		"active_days", len(summary.Daily),
		"categories", len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		logger.InfoContext(ctx, "Category footprint", log.FieldCategory, c.Name, log.FieldFootprintKg, c.Footprint)
	}
	return nil
}
