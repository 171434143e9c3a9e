// Package cli provides the process initialization shared by commands:
// logging, configuration, the activity store and the emission factors.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"footprint/internal/aggregate"
	"footprint/internal/backend"
	"footprint/internal/cache"
	"footprint/internal/config"
	"footprint/internal/core"
	"footprint/internal/factors"
	"footprint/internal/log"
	"footprint/internal/observability"
	"footprint/internal/services"
)

// SetupLogger initializes structured logging and sets it as the default.
// Unknown levels fall back to info.
func SetupLogger(level, format string) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	if strings.EqualFold(format, "json") {
		cfg.Format = "json"
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile(logger *log.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Ignoring unreadable .env file", log.FieldError, err.Error())
	}
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldErrorType, log.ErrorTypeConfiguration, log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// LoadFactors loads the emission factor table from path, or the embedded
// defaults when path is empty. A table that fails to load is returned
// anyway: it resolves nothing, so activities are recorded with a zero
// footprint until the data is fixed.
func LoadFactors(logger *log.Logger, path string, metrics *observability.Metrics) *factors.Table {
	src := factors.DefaultSource()
	if path != "" {
		src = factors.FileSource(path)
	}
	flog := logger.WithComponent(log.ComponentFactors)
	table := factors.New(src, flog.Logger.With(log.FieldComponent, log.ComponentFactors))

	if err := table.Load(); err != nil {
		flog.Warn("Emission factors unavailable, footprints will be recorded as zero",
			log.NewFields().WithOperation(log.OpLoad).WithErrorType(log.ErrorTypeLoad).WithError(err).ToSlice()...)
	}
	metrics.FactorTableSize(table.Len())
	return table
}

// App holds everything a command needs, built once at startup.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Registry   *prometheus.Registry
	Metrics    *observability.Metrics
	Factors    *factors.Table
	Activities *services.ActivityService
	Dashboard  *services.DashboardService

	cleanup backend.CleanupFunc
}

// Bootstrap wires the store, the factor table and both services from cfg.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	table := LoadFactors(logger, cfg.FactorsFile, metrics)

	summaries := cache.NewLRU[aggregate.ChartWindow, core.DashboardSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	dashboard := services.NewDashboardService(res.Store, summaries,
		services.WithLocation(bcfg.Location),
		services.WithLogger(logger))
	activities := services.NewActivityService(res.Store, table,
		services.WithLocation(bcfg.Location),
		services.WithLogger(logger),
		services.WithMetrics(metrics),
		services.WithInvalidator(dashboard))

	logger.InfoContext(ctx, "Footprint tracker initialized",
		log.FieldOperation, log.OpStartup,
		"backend", bcfg.Type.String(),
		"timezone", bcfg.Location.String(),
		"factors_loaded", table.Loaded(),
		"factors", table.Len())

	return &App{
		Config:     cfg,
		Logger:     logger,
		Registry:   reg,
		Metrics:    metrics,
		Factors:    table,
		Activities: activities,
		Dashboard:  dashboard,
		cleanup:    res.Cleanup,
	}, nil
}

// Close releases the activity store.
func (a *App) Close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
