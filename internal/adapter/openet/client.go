package openet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agriscope/et-insight-service/internal/domain"
	"github.com/agriscope/et-insight-service/internal/observability"
)

// Client implements domain.Provider against the OpenET raster timeseries API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenET API client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// timeseriesRequest is the OpenET raster timeseries request body. Geometry is
// [lon, lat] for point queries and a flat lon/lat ring for polygon queries.
type timeseriesRequest struct {
	DateRange   [2]string `json:"date_range"`
	FileFormat  string    `json:"file_format"`
	Geometry    []float64 `json:"geometry"`
	Interval    string    `json:"interval"`
	Model       string    `json:"model"`
	Reducer     string    `json:"reducer,omitempty"`
	ReferenceET string    `json:"reference_et"`
	Units       string    `json:"units"`
	Variable    string    `json:"variable"`
	Version     float64   `json:"version"`
}

func newTimeseriesRequest(geometry []float64, startDate, endDate, variable string) timeseriesRequest {
	return timeseriesRequest{
		DateRange:   [2]string{startDate, endDate},
		FileFormat:  "JSON",
		Geometry:    geometry,
		Interval:    "monthly",
		Model:       "Ensemble",
		ReferenceET: "gridMET",
		Units:       "mm",
		Variable:    variable,
		Version:     2.1,
	}
}

// FetchPoint retrieves a monthly timeseries for a single coordinate.
func (c *Client) FetchPoint(ctx context.Context, lat, lon float64, startDate, endDate, variable string) (json.RawMessage, error) {
	body := newTimeseriesRequest([]float64{lon, lat}, startDate, endDate, variable)
	return c.doRequest(ctx, "/raster/timeseries/point", body, variable)
}

// FetchPolygon retrieves a spatially averaged monthly timeseries for a
// flat lon/lat polygon ring.
func (c *Client) FetchPolygon(ctx context.Context, polygon []float64, startDate, endDate, variable string) (json.RawMessage, error) {
	body := newTimeseriesRequest(polygon, startDate, endDate, variable)
	body.Reducer = "mean"
	return c.doRequest(ctx, "/raster/timeseries/polygon", body, variable)
}

func (c *Client) doRequest(ctx context.Context, path string, body timeseriesRequest, variable string) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.NewError(domain.KindProviderError, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewError(domain.KindProviderError, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.ProviderDuration.WithLabelValues(variable).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countRequest(variable, "error")
		return nil, domain.NewError(domain.KindProviderError, fmt.Errorf("openet %s request: %w", variable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.countRequest(variable, "error")
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("openet request failed",
			"variable", variable,
			"status", resp.StatusCode,
			"path", path,
		)
		return nil, domain.NewError(domain.KindProviderError,
			fmt.Errorf("openet API error: status %d: %s", resp.StatusCode, detail))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countRequest(variable, "error")
		return nil, domain.NewError(domain.KindProviderError, fmt.Errorf("read response: %w", err))
	}

	c.countRequest(variable, "success")
	return json.RawMessage(raw), nil
}

func (c *Client) countRequest(variable, outcome string) {
	if c.metrics != nil {
		c.metrics.ProviderRequests.WithLabelValues(variable, outcome).Inc()
	}
}
