package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/syngenta/meteobe/internal/adapter/http"
	"github.com/syngenta/meteobe/internal/domain"
	"github.com/syngenta/meteobe/internal/observability"
	"github.com/syngenta/meteobe/internal/pipeline"
)

// stubQuerier answers every dataset request with one temperature series so
// the extractor can complete a record and flip to ready.
type stubQuerier struct{}

func (stubQuerier) Query(_ context.Context, payload domain.Payload) (domain.Dataset, error) {
	return domain.Dataset{Geometries: []domain.GeometryInfo{{
		Lats: []float64{payload.Geometry.Coordinates[0][1]},
		Lons: []float64{payload.Geometry.Coordinates[0][0]},
		TimeIntervals: []domain.TimeInterval{
			{Start: 1614556800, End: 1614643200, Stride: 86400},
		},
		Codes: []domain.CodeSeries{{
			Code:        domain.CodeTemperature,
			Level:       domain.LevelTwoMeterElevCorrected,
			Aggregation: domain.AggMean,
			Unit:        "C",
			Data:        [][]float64{{21.4}},
		}},
	}}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExtractor(t *testing.T) *pipeline.Extractor {
	t.Helper()
	dm, err := domain.NewDomainMap(map[string]string{domain.DefaultKey: domain.DomainNEMSGlobal})
	require.NoError(t, err)

	opts := pipeline.Options{
		IDCol:         "trial",
		LatCol:        "lat",
		LonCol:        "lon",
		Precipitation: dm,
		Temperature:   dm,
		Wind:          dm,
	}
	return pipeline.New(stubQuerier{}, opts, discardLogger(), observability.NewMetricsForTesting())
}

func get(t *testing.T, srv *httpadapter.Server, path string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]string
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthzReturns200(t *testing.T) {
	srv := httpadapter.NewServer(":0", testExtractor(t), discardLogger())

	rec, body := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503BeforeFirstRow(t *testing.T) {
	srv := httpadapter.NewServer(":0", testExtractor(t), discardLogger())

	rec, body := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])
	assert.Contains(t, body["error"], "has not produced any rows")
}

func TestReadyzReturns200AfterFirstRow(t *testing.T) {
	ex := testExtractor(t)
	srv := httpadapter.NewServer(":0", ex, discardLogger())

	_, err := ex.Run(context.Background(), []domain.TrialRecord{{
		ID: "T-001", Lat: 48.13, Lon: 11.58, CountryCode: "DE",
		Dates: map[string]time.Time{
			"planting": time.Date(2021, 4, 10, 0, 0, 0, 0, time.UTC),
		},
	}})
	require.NoError(t, err)

	rec, body := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsEndpointServesExtractorSeries(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.ExtractorRunning.Set(1)

	srv := httpadapter.NewServer(":0", testExtractor(t), discardLogger())

	rec, _ := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "meteobe_extractor_running 1")
}
