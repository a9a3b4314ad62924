package domain

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// ExtractSeries normalizes a raw provider payload into an ordered series of
// valid observations for one variable. A record contributes an observation
// only when its "time" field is a non-empty string and its value field
// (matched case-insensitively against variable) is a non-null number; all
// other records are silently dropped, since cloud-obscured and pre-launch
// dates are expected in a satellite feed.
//
// The extractor fails soft: when the payload is not a JSON array (the
// provider returns an error object on failure) it logs a warning and returns
// an empty series, so one variable failing cannot suppress the other
// variable's report.
func ExtractSeries(raw json.RawMessage, variable, location string, logger *slog.Logger) ExtractedSeries {
	series := ExtractedSeries{
		Variable:  variable,
		Source:    SourceOpenET,
		Location:  location,
		DateRange: noDataRange,
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Warn("unexpected provider payload shape, expected array of records",
			"kind", string(KindMalformedSeries),
			"variable", variable,
			"error", err,
		)
		return series
	}

	for _, rec := range records {
		date, ok := rec["time"].(string)
		if !ok || date == "" {
			continue
		}
		value, ok := lookupValue(rec, variable)
		if !ok {
			continue
		}
		series.Observations = append(series.Observations, Observation{Date: date, Value: value})
	}

	if series.Empty() {
		logger.Warn("no observations found in provider response", "variable", variable)
		return series
	}

	series.ValuesFound = len(series.Observations)
	// First and last in delivery order, deliberately not min/max: the
	// provider's ordering is trusted as-is.
	first := series.Observations[0].Date
	last := series.Observations[len(series.Observations)-1].Date
	series.DateRange = first + " to " + last

	var sum float64
	for _, o := range series.Observations {
		sum += o.Value
	}
	series.Mean = roundPlaces(sum/float64(len(series.Observations)), 3)

	return series
}

// lookupValue finds the record's value field by case-insensitive name match
// and requires it to be a JSON number. Null and non-numeric values report
// not-found.
func lookupValue(rec map[string]any, variable string) (float64, bool) {
	for key, v := range rec {
		if !strings.EqualFold(key, variable) {
			continue
		}
		f, ok := v.(float64)
		return f, ok
	}
	return 0, false
}
