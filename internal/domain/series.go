package domain

import (
	"encoding/json"
	"strings"
)

// Variable names as the provider reports them.
const (
	VariableET   = "et"
	VariableNDVI = "ndvi"
)

// SourceOpenET is the provenance label attached to every extracted series.
const SourceOpenET = "OpenET"

// noDataRange marks a series with no usable observations.
const noDataRange = "N/A"

// Observation is one dated sample for a single variable. The date is kept as
// the provider's calendar-date string; ET analysis parses it later and drops
// observations whose date does not parse.
type Observation struct {
	Date  string
	Value float64
}

// ExtractedSeries is the normalized form of one variable's raw provider
// payload: the ordered valid observations plus coverage metadata. Order is
// the provider's delivery order and is preserved end-to-end; duplicates and
// gaps are tolerated, never corrected.
type ExtractedSeries struct {
	Variable     string
	Source       string
	Location     string
	ValuesFound  int
	DateRange    string
	Mean         float64
	Observations []Observation
}

// Empty reports whether the series carries no usable observations.
func (s ExtractedSeries) Empty() bool {
	return len(s.Observations) == 0
}

// MarshalJSON emits the wire shape consumers expect: the mean is keyed by
// variable ("et_mean" / "ndvi_mean") and each data point carries its value
// under the upper-cased variable name.
func (s ExtractedSeries) MarshalJSON() ([]byte, error) {
	valueKey := strings.ToUpper(s.Variable)
	points := make([]map[string]any, len(s.Observations))
	for i, o := range s.Observations {
		points[i] = map[string]any{
			"date":   o.Date,
			valueKey: o.Value,
		}
	}

	payload := map[string]any{
		"source":       s.Source,
		"location":     s.Location,
		"values_found": s.ValuesFound,
		"date_range":   s.DateRange,
		"data_points":  points,
	}
	payload[strings.ToLower(s.Variable)+"_mean"] = s.Mean

	return json.Marshal(payload)
}
