// Package meteoblue implements the dataset API transport. Wire types are
// mapped into domain.Dataset at this boundary so provider schema drift stays
// isolated here.
package meteoblue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/syngenta/meteobe/internal/domain"
	"github.com/syngenta/meteobe/internal/observability"
)

const defaultBaseURL = "https://my.meteoblue.com/dataset/query"

// defaultRetryWait is the fixed pause before the single retry after a
// transport failure. No backoff, no further attempts.
const defaultRetryWait = 10 * time.Second

// Client issues dataset queries over HTTP.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	retryWait  time.Duration
	clock      clockwork.Clock
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dataset API client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "meteoblue",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		retryWait:  defaultRetryWait,
		clock:      clockwork.NewRealClock(),
		breaker:    cb,
		metrics:    metrics,
		logger:     logger,
	}
}

// Query posts one dataset request and returns the typed response. A failed
// attempt is retried exactly once after a fixed wait; the second failure is
// the caller's per-record transport error.
func (c *Client) Query(ctx context.Context, payload domain.Payload) (domain.Dataset, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("marshal payload: %w", err)
	}

	ds, firstErr := c.doQuery(ctx, body)
	if firstErr == nil {
		return ds, nil
	}

	c.logger.Warn("dataset request failed, retrying once",
		"wait", c.retryWait,
		"error", firstErr,
	)
	c.metrics.RequestRetries.Inc()

	select {
	case <-ctx.Done():
		return domain.Dataset{}, fmt.Errorf("%w: %w", domain.ErrTransport, ctx.Err())
	case <-c.clock.After(c.retryWait):
	}

	ds, err = c.doQuery(ctx, body)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return ds, nil
}

func (c *Client) doQuery(ctx context.Context, body []byte) (domain.Dataset, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"?apikey="+c.apiKey, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("dataset request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("dataset API error: status %d: %s", resp.StatusCode, respBody)
		}

		var wire wireResponse
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return wire.toDomain(), nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return result.(domain.Dataset), nil
}

// Dataset API wire types, mirroring the provider's response schema:
// geometries → codes → per-interval data arrays.

type wireResponse struct {
	Geometries []wireGeometry `json:"geometries"`
}

type wireGeometry struct {
	Lats          []float64      `json:"lats"`
	Lons          []float64      `json:"lons"`
	TimeIntervals []wireInterval `json:"timeIntervals"`
	Codes         []wireCode     `json:"codes"`
}

type wireInterval struct {
	Start  int64 `json:"start"`
	End    int64 `json:"end"`
	Stride int64 `json:"stride"`
}

type wireCode struct {
	Code          int                `json:"code"`
	Level         string             `json:"level"`
	Aggregation   string             `json:"aggregation"`
	Unit          string             `json:"unit"`
	StartDepth    int                `json:"startDepth"`
	EndDepth      int                `json:"endDepth"`
	TimeIntervals []wireIntervalData `json:"timeIntervals"`
}

type wireIntervalData struct {
	Data []float64 `json:"data"`
}

func (r wireResponse) toDomain() domain.Dataset {
	ds := domain.Dataset{Geometries: make([]domain.GeometryInfo, 0, len(r.Geometries))}
	for _, g := range r.Geometries {
		geom := domain.GeometryInfo{
			Lats: g.Lats,
			Lons: g.Lons,
		}
		for _, iv := range g.TimeIntervals {
			geom.TimeIntervals = append(geom.TimeIntervals, domain.TimeInterval(iv))
		}
		for _, cs := range g.Codes {
			series := domain.CodeSeries{
				Code:        cs.Code,
				Level:       cs.Level,
				Aggregation: cs.Aggregation,
				Unit:        cs.Unit,
				StartDepth:  cs.StartDepth,
				EndDepth:    cs.EndDepth,
			}
			for _, data := range cs.TimeIntervals {
				series.Data = append(series.Data, data.Data)
			}
			geom.Codes = append(geom.Codes, series)
		}
		ds.Geometries = append(ds.Geometries, geom)
	}
	return ds
}
