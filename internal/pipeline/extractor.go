// Package pipeline orchestrates the extraction run: one weather and one
// soil request per deduplicated trial location, flattened into wide rows,
// with per-record failure isolation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syngenta/meteobe/internal/domain"
	"github.com/syngenta/meteobe/internal/observability"
)

// Categories of extracted data.
const (
	CategoryWeather = "weather"
	CategorySoil    = "soil"
)

// Querier issues one dataset request. Implemented by the transport adapter.
type Querier interface {
	Query(ctx context.Context, payload domain.Payload) (domain.Dataset, error)
}

// Options configure an extraction run.
type Options struct {
	IDCol  string
	LatCol string
	LonCol string

	StartDateOffset int // <= 0, pre-clamped at config load
	EndDateOffset   int // >= 0, pre-clamped at config load

	Precipitation domain.DomainMap
	Temperature   domain.DomainMap
	Wind          domain.DomainMap

	// Optional pre-built query overrides. When set they are used verbatim
	// for every record instead of the built queries.
	WeatherQueries []domain.Query
	SoilQueries    []domain.Query
}

// Result accumulates one run's output tables.
type Result struct {
	WeatherRows   []domain.ResultRow
	SoilRows      []domain.ResultRow
	FailedWeather []domain.FailedRecord
	FailedSoil    []domain.FailedRecord
}

// Extractor drives the sequential extraction loop.
type Extractor struct {
	querier Querier
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates an Extractor.
func New(querier Querier, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{
		querier: querier,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once at least one record has produced a row.
func (e *Extractor) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("extractor has not produced any rows yet")
	}
	return nil
}

// task is one deduplicated (record, window) unit of work.
type task struct {
	rec    domain.TrialRecord
	window domain.TimeWindow
}

// Run extracts weather and soil data for every record. A failing record is
// counted and reported, never aborting the batch; Run only returns an error
// when the context is cancelled.
func (e *Extractor) Run(ctx context.Context, records []domain.TrialRecord) (Result, error) {
	e.metrics.ExtractorRunning.Set(1)
	defer e.metrics.ExtractorRunning.Set(0)

	tasks, undated := e.buildTasks(records)
	e.logger.Info("extraction starting",
		"records", len(records),
		"deduplicated", len(tasks),
	)

	var res Result
	// A record without a usable window produced nothing in either category.
	res.FailedWeather = append(res.FailedWeather, undated...)
	res.FailedSoil = append(res.FailedSoil, undated...)

	soilQueries := e.opts.SoilQueries
	if len(soilQueries) == 0 {
		soilQueries = []domain.Query{
			domain.BuildSoilQuery(domain.SoilStartDepth, domain.SoilEndDepthShort),
			domain.BuildSoilQuery(domain.SoilStartDepth, domain.SoilEndDepthDeep),
		}
	}

	for _, tk := range tasks {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		queries := e.opts.WeatherQueries
		if len(queries) == 0 {
			queries = domain.BuildWeatherQuery(tk.rec.CountryCode,
				e.opts.Precipitation, e.opts.Temperature, e.opts.Wind)
		}
		if row, err := e.extractOne(ctx, tk, CategoryWeather, queries, domain.FlattenWeather); err != nil {
			res.FailedWeather = append(res.FailedWeather, e.failed(tk, err))
		} else {
			res.WeatherRows = append(res.WeatherRows, row)
			e.ready.Store(true)
		}

		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if row, err := e.extractOne(ctx, tk, CategorySoil, soilQueries, domain.FlattenSoil); err != nil {
			res.FailedSoil = append(res.FailedSoil, e.failed(tk, err))
		} else {
			res.SoilRows = append(res.SoilRows, row)
			e.ready.Store(true)
		}
	}

	e.logger.Info("extraction finished",
		"weather_rows", len(res.WeatherRows),
		"soil_rows", len(res.SoilRows),
		"weather_failed", len(res.FailedWeather),
		"soil_failed", len(res.FailedSoil),
	)
	return res, nil
}

type flattenFunc func(ds domain.Dataset, idCol, idValue, latCol, lonCol string) (domain.ResultRow, error)

func (e *Extractor) extractOne(ctx context.Context, tk task, category string, queries []domain.Query, flatten flattenFunc) (domain.ResultRow, error) {
	payload := domain.BuildPayload(tk.rec.Lat, tk.rec.Lon, tk.window, queries)

	start := time.Now()
	ds, err := e.querier.Query(ctx, payload)
	e.metrics.RequestDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	if err != nil {
		e.logger.Warn("dataset request failed",
			"category", category,
			"id", tk.rec.ID,
			"lat", tk.rec.Lat,
			"lon", tk.rec.Lon,
			"error", err,
		)
		e.metrics.RecordsFailed.WithLabelValues(category, "transport").Inc()
		return nil, err
	}

	row, err := flatten(ds, e.opts.IDCol, tk.rec.ID, e.opts.LatCol, e.opts.LonCol)
	if err != nil {
		e.logger.Warn("response flattening failed",
			"category", category,
			"id", tk.rec.ID,
			"error", err,
		)
		e.metrics.RecordsFailed.WithLabelValues(category, "extraction").Inc()
		return nil, err
	}

	e.metrics.RecordsProcessed.WithLabelValues(category).Inc()
	return row, nil
}

// buildTasks derives the per-record window and deduplicates on the full
// (id, lat, lon, country, start, end) tuple, matching what a caller would
// avoid re-requesting. Records without a derivable window come back as
// failed records.
func (e *Extractor) buildTasks(records []domain.TrialRecord) ([]task, []domain.FailedRecord) {
	seen := make(map[string]struct{}, len(records))
	tasks := make([]task, 0, len(records))

	var failures []domain.FailedRecord
	for _, rec := range records {
		dates := make([]time.Time, 0, len(rec.Dates))
		for _, d := range rec.Dates {
			dates = append(dates, d)
		}
		window, err := domain.DeriveWindow(dates, e.opts.StartDateOffset, e.opts.EndDateOffset)
		if err != nil {
			e.logger.Warn("cannot derive time window", "id", rec.ID, "error", err)
			failures = append(failures, domain.FailedRecord{
				ID:          rec.ID,
				Latitude:    rec.Lat,
				Longitude:   rec.Lon,
				CountryCode: rec.CountryCode,
				Reason:      err.Error(),
			})
			continue
		}

		key := fmt.Sprintf("%s|%g|%g|%s|%s|%s",
			rec.ID, rec.Lat, rec.Lon, rec.CountryCode,
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tasks = append(tasks, task{rec: rec, window: window})
	}
	return tasks, failures
}

func (e *Extractor) failed(tk task, err error) domain.FailedRecord {
	return domain.FailedRecord{
		ID:          tk.rec.ID,
		Latitude:    tk.rec.Lat,
		Longitude:   tk.rec.Lon,
		CountryCode: tk.rec.CountryCode,
		StartDate:   tk.window.Start.Format("2006-01-02"),
		EndDate:     tk.window.End.Format("2006-01-02"),
		Reason:      err.Error(),
	}
}
