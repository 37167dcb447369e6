package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/syngenta/meteobe/internal/adapter/csvfile"
	httpadapter "github.com/syngenta/meteobe/internal/adapter/http"
	"github.com/syngenta/meteobe/internal/adapter/meteoblue"
	"github.com/syngenta/meteobe/internal/config"
	"github.com/syngenta/meteobe/internal/domain"
	"github.com/syngenta/meteobe/internal/observability"
	"github.com/syngenta/meteobe/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	loader := &csvfile.Loader{
		IDCol:          cfg.IDCol,
		LatCol:         cfg.LatCol,
		LonCol:         cfg.LonCol,
		CountryCol:     cfg.CountryCodeCol,
		CountryDefault: cfg.CountryCodeDefault,
		DateCols:       cfg.DateCols,
		SheetName:      cfg.SheetName,
		Logger:         logger,
	}
	records, skipped, err := loader.Load(cfg.InputFile)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no usable records in %s", domain.ErrInput, cfg.InputFile)
	}

	opts := pipeline.Options{
		IDCol:           cfg.IDCol,
		LatCol:          cfg.LatCol,
		LonCol:          cfg.LonCol,
		StartDateOffset: cfg.StartDateOffset,
		EndDateOffset:   cfg.EndDateOffset,
		Precipitation:   cfg.Precipitation,
		Temperature:     cfg.Temperature,
		Wind:            cfg.Wind,
	}
	if opts.WeatherQueries, err = loadQueryFile(cfg.WeatherQueryFile); err != nil {
		return err
	}
	if opts.SoilQueries, err = loadQueryFile(cfg.SoilQueryFile); err != nil {
		return err
	}

	client := meteoblue.NewClient(cfg.APIKey, cfg.RequestTimeout, metrics, logger)
	extractor := pipeline.New(client, opts, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, extractor, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	res, runErr := extractor.Run(ctx, records)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Rows skipped at load time produced no result in either category.
	res.FailedWeather = append(res.FailedWeather, skipped...)
	res.FailedSoil = append(res.FailedSoil, skipped...)

	if err := writeOutputs(cfg, logger, res); err != nil {
		return err
	}
	return runErr
}

// loadQueryFile reads a JSON list of query blocks, used verbatim instead of
// the built queries.
func loadQueryFile(path string) ([]domain.Query, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read query file: %w", domain.ErrConfiguration, err)
	}
	var queries []domain.Query
	if err := json.Unmarshal(raw, &queries); err != nil {
		return nil, fmt.Errorf("%w: parse query file %s: %w", domain.ErrConfiguration, path, err)
	}
	return queries, nil
}

func writeOutputs(cfg *config.Config, logger *slog.Logger, res pipeline.Result) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(cfg.InputFile), filepath.Ext(cfg.InputFile))
	prefix := filepath.Join(cfg.OutputDir, stem)
	identity := []string{cfg.IDCol, cfg.LatCol, cfg.LonCol, domain.DatesColumn}

	outputs := []struct {
		path  string
		write func(string) error
		count int
	}{
		{
			path:  prefix + "_weather_data_only_best_domains.csv",
			write: func(p string) error { return csvfile.WriteWide(p, res.WeatherRows, identity) },
			count: len(res.WeatherRows),
		},
		{
			path:  prefix + "_weather_data_only_best_domains_failed.csv",
			write: func(p string) error { return csvfile.WriteFailed(p, res.FailedWeather) },
			count: len(res.FailedWeather),
		},
		{
			path:  prefix + "_soil_data_only.csv",
			write: func(p string) error { return csvfile.WriteWide(p, res.SoilRows, identity) },
			count: len(res.SoilRows),
		},
		{
			path:  prefix + "_soil_data_only_failed.csv",
			write: func(p string) error { return csvfile.WriteFailed(p, res.FailedSoil) },
			count: len(res.FailedSoil),
		},
	}

	for _, out := range outputs {
		if out.count == 0 {
			continue
		}
		if err := out.write(out.path); err != nil {
			return err
		}
		logger.Info("output written", "path", out.path, "rows", out.count)
	}
	return nil
}
