package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Report is the assembled response payload for one analyzed location and
// date range. All fields are request-scoped values computed fresh per call;
// nothing is shared or persisted.
type Report struct {
	NDVI              ExtractedSeries
	ET                ExtractedSeries
	ETAnalysis        *ETAnalysis
	VegetationSummary *VegetationSummary
	TextSummary       *TextSummary

	// GeneratedAt stamps outbound report events; it is not part of the
	// response payload.
	GeneratedAt time.Time
}

// TextSummary holds the four narrative sections produced by the summarizer.
type TextSummary struct {
	TrendConsistency   string `json:"trend_consistency"`
	TimingAlignment    string `json:"timing_alignment"`
	ContinuityOverTime string `json:"continuity_over_time"`
	AISummary          string `json:"ai_summary"`
}

// Summarizer produces a narrative summary for an assembled report.
type Summarizer interface {
	Summarize(ctx context.Context, report Report) (TextSummary, error)
}

// AssembleReport composes the two extracted series and their derived reports
// into the response payload. Pure composition apart from the timestamp; it
// never fails.
func AssembleReport(ndvi, et ExtractedSeries, analysis *ETAnalysis, vegetation *VegetationSummary) Report {
	return Report{
		NDVI:              ndvi,
		ET:                et,
		ETAnalysis:        analysis,
		VegetationSummary: vegetation,
		GeneratedAt:       clock.Now(),
	}
}

// BuildReport runs the full extraction and analysis flow on the two raw
// provider payloads. Either payload may be nil or malformed; the matching
// series degrades to empty and the other is reported normally.
func BuildReport(etRaw, ndviRaw json.RawMessage, location string, logger *slog.Logger) Report {
	ndvi := ExtractSeries(ndviRaw, VariableNDVI, location, logger)
	et := ExtractSeries(etRaw, VariableET, location, logger)
	analysis := AnalyzeET(et.Observations, logger)
	vegetation := SummarizeVegetation(ndvi.Observations)
	return AssembleReport(ndvi, et, analysis, vegetation)
}

// MarshalJSON emits the payload contract: empty analyses serialize as {}
// rather than null, and text_summary appears only when present.
func (r Report) MarshalJSON() ([]byte, error) {
	payload := struct {
		NDVI              ExtractedSeries `json:"NDVI"`
		ET                ExtractedSeries `json:"ET"`
		ETAnalysis        any             `json:"et_analysis"`
		VegetationSummary any             `json:"vegetation_summary"`
		TextSummary       *TextSummary    `json:"text_summary,omitempty"`
	}{
		NDVI:              r.NDVI,
		ET:                r.ET,
		ETAnalysis:        struct{}{},
		VegetationSummary: struct{}{},
		TextSummary:       r.TextSummary,
	}
	if r.ETAnalysis != nil {
		payload.ETAnalysis = r.ETAnalysis
	}
	if r.VegetationSummary != nil {
		payload.VegetationSummary = r.VegetationSummary
	}
	return json.Marshal(payload)
}
