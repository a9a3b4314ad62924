package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agriscope/et-insight-service/internal/adapter/summary"
	"github.com/agriscope/et-insight-service/internal/domain"
	"github.com/agriscope/et-insight-service/internal/observability"
)

const dateLayout = "2006-01-02"

// ReportPublisher emits completed reports for downstream archival.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.Report) error
}

// Handler serves the satellite-data analysis endpoints. The summarizer and
// publisher are optional; a nil summarizer omits the narrative from the
// response and a nil publisher disables report archival.
type Handler struct {
	provider       domain.Provider
	summarizer     domain.Summarizer
	publisher      ReportPublisher
	logger         *slog.Logger
	metrics        *observability.Metrics
	summaryTimeout time.Duration
}

// NewHandler creates the satellite-data handler.
func NewHandler(provider domain.Provider, summarizer domain.Summarizer, publisher ReportPublisher,
	summaryTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{
		provider:       provider,
		summarizer:     summarizer,
		publisher:      publisher,
		logger:         logger,
		metrics:        metrics,
		summaryTimeout: summaryTimeout,
	}
}

// satelliteQuery is the POST body. Coordinates are pointers so that an
// explicit lat=0 survives validation while a missing field does not.
type satelliteQuery struct {
	Lat       *float64        `json:"lat"`
	Lon       *float64        `json:"lon"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Polygon   json.RawMessage `json:"polygon"`
}

// GetSatelliteData handles point queries via query parameters.
func (h *Handler) GetSatelliteData(c *gin.Context) {
	start := time.Now()

	q := satelliteQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	for param, dst := range map[string]**float64{"lat": &q.Lat, "lon": &q.Lon} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.respondError(c, "point", http.StatusBadRequest, fmt.Sprintf("%s must be a number", param), start)
			return
		}
		*dst = &v
	}

	h.servePoint(c, q, start)
}

// PostSatelliteData handles polygon queries, falling back to point queries
// when the body carries no polygon.
func (h *Handler) PostSatelliteData(c *gin.Context) {
	start := time.Now()

	var q satelliteQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		h.respondError(c, "polygon", http.StatusBadRequest, "request body must be valid JSON", start)
		return
	}

	if len(q.Polygon) == 0 {
		h.servePoint(c, q, start)
		return
	}

	if msg := validateDates(q.StartDate, q.EndDate); msg != "" {
		h.respondError(c, "polygon", http.StatusBadRequest, msg, start)
		return
	}

	ring, err := domain.FlattenPolygon(q.Polygon)
	if err != nil {
		h.respondError(c, "polygon", http.StatusBadRequest, "invalid polygon: "+err.Error(), start)
		return
	}

	fetch := func(ctx context.Context, variable string) (json.RawMessage, error) {
		return h.provider.FetchPolygon(ctx, ring, q.StartDate, q.EndDate, variable)
	}
	h.serve(c, "polygon", "Polygon area", fetch, start)
}

func (h *Handler) servePoint(c *gin.Context, q satelliteQuery, start time.Time) {
	if msg := validatePoint(q); msg != "" {
		h.respondError(c, "point", http.StatusBadRequest, msg, start)
		return
	}

	lat, lon := *q.Lat, *q.Lon
	location := fmt.Sprintf("%.6f, %.6f", lat, lon)
	fetch := func(ctx context.Context, variable string) (json.RawMessage, error) {
		return h.provider.FetchPoint(ctx, lat, lon, q.StartDate, q.EndDate, variable)
	}
	h.serve(c, "point", location, fetch, start)
}

// serve fetches both variables, builds the report, and attaches the optional
// narrative. One variable failing degrades the report; both failing is a
// gateway error.
func (h *Handler) serve(c *gin.Context, endpoint, location string,
	fetch func(ctx context.Context, variable string) (json.RawMessage, error), start time.Time) {
	ctx := c.Request.Context()

	var (
		wg             sync.WaitGroup
		etRaw, ndviRaw json.RawMessage
		etErr, ndviErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		etRaw, etErr = fetch(ctx, domain.VariableET)
	}()
	go func() {
		defer wg.Done()
		ndviRaw, ndviErr = fetch(ctx, domain.VariableNDVI)
	}()
	wg.Wait()

	if etErr != nil && ndviErr != nil {
		h.logger.Error("both variables failed", "location", location, "et_error", etErr, "ndvi_error", ndviErr)
		h.respondError(c, endpoint, http.StatusBadGateway,
			"failed to fetch or process data: "+errors.Join(etErr, ndviErr).Error(), start)
		return
	}
	if etErr != nil {
		h.logger.Warn("et fetch failed, continuing with ndvi only", "location", location, "error", etErr)
	}
	if ndviErr != nil {
		h.logger.Warn("ndvi fetch failed, continuing with et only", "location", location, "error", ndviErr)
	}

	analysisStart := time.Now()
	report := domain.BuildReport(etRaw, ndviRaw, location, h.logger)
	if h.metrics != nil {
		h.metrics.AnalysisDuration.Observe(time.Since(analysisStart).Seconds())
	}

	h.attachNarrative(ctx, &report)
	h.publish(report)

	h.respond(c, endpoint, http.StatusOK, report, start)
}

func (h *Handler) attachNarrative(ctx context.Context, report *domain.Report) {
	if h.summarizer == nil {
		return
	}
	sumCtx, cancel := context.WithTimeout(ctx, h.summaryTimeout)
	defer cancel()

	text, err := h.summarizer.Summarize(sumCtx, *report)
	if err != nil {
		h.logger.Warn("summarizer unavailable, using fallback narrative", "error", err)
		if h.metrics != nil {
			h.metrics.SummaryFallbacks.Inc()
		}
		text = summary.Fallback(*report)
	}
	report.TextSummary = &text
}

// publish hands the report to the archival topic without blocking the
// response on broker availability.
func (h *Handler) publish(report domain.Report) {
	if h.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.publisher.PublishReport(ctx, report); err != nil {
			h.logger.Error("report publish failed", "location", report.ET.Location, "error", err)
		}
	}()
}

func (h *Handler) respond(c *gin.Context, endpoint string, status int, payload any, start time.Time) {
	if h.metrics != nil {
		h.metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		h.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
	c.JSON(status, payload)
}

func (h *Handler) respondError(c *gin.Context, endpoint string, status int, msg string, start time.Time) {
	h.respond(c, endpoint, status, gin.H{"error": msg}, start)
}

func validatePoint(q satelliteQuery) string {
	if q.Lat == nil || q.Lon == nil {
		return "lat and lon are required"
	}
	if *q.Lat < -90 || *q.Lat > 90 {
		return "lat must be between -90 and 90"
	}
	if *q.Lon < -180 || *q.Lon > 180 {
		return "lon must be between -180 and 180"
	}
	return validateDates(q.StartDate, q.EndDate)
}

func validateDates(startDate, endDate string) string {
	if startDate == "" || endDate == "" {
		return "start_date and end_date are required"
	}
	from, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return "start_date must be formatted YYYY-MM-DD"
	}
	to, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return "end_date must be formatted YYYY-MM-DD"
	}
	if !from.Before(to) {
		return "start_date must be before end_date"
	}
	return ""
}
