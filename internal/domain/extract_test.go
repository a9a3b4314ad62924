package domain

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractSeries(t *testing.T) {
	t.Run("valid monthly payload", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"time":"2021-01-01","et":20},
			{"time":"2021-02-01","et":30.5},
			{"time":"2021-03-01","et":41}
		]`)

		series := ExtractSeries(raw, VariableET, "35.0, -98.0", discardLogger())

		assert.Equal(t, VariableET, series.Variable)
		assert.Equal(t, SourceOpenET, series.Source)
		assert.Equal(t, "35.0, -98.0", series.Location)
		assert.Equal(t, 3, series.ValuesFound)
		assert.Equal(t, "2021-01-01 to 2021-03-01", series.DateRange)
		assert.Equal(t, 30.5, series.Mean)
		require.Len(t, series.Observations, 3)
		assert.Equal(t, Observation{Date: "2021-02-01", Value: 30.5}, series.Observations[1])
	})

	t.Run("null and missing values dropped", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"time":"2020-11-01","ndvi":null},
			{"time":"2020-12-01","ndvi":0.41},
			{"ndvi":0.99},
			{"time":"2021-01-01"},
			{"time":"2021-02-01","ndvi":0.43}
		]`)

		series := ExtractSeries(raw, VariableNDVI, "field", discardLogger())

		assert.Equal(t, 2, series.ValuesFound)
		assert.Equal(t, "2020-12-01 to 2021-02-01", series.DateRange)
		assert.Equal(t, 0.42, series.Mean)
	})

	t.Run("variable key matched case-insensitively", func(t *testing.T) {
		raw := json.RawMessage(`[{"time":"2021-01-01","ET":12.0}]`)

		series := ExtractSeries(raw, VariableET, "field", discardLogger())

		assert.Equal(t, 1, series.ValuesFound)
		assert.Equal(t, 12.0, series.Mean)
	})

	t.Run("non-array payload fails soft", func(t *testing.T) {
		raw := json.RawMessage(`{"error":"quota exceeded"}`)

		series := ExtractSeries(raw, VariableET, "field", discardLogger())

		assert.Equal(t, 0, series.ValuesFound)
		assert.Equal(t, "N/A", series.DateRange)
		assert.Equal(t, 0.0, series.Mean)
		assert.Empty(t, series.Observations)
	})

	t.Run("nil payload fails soft", func(t *testing.T) {
		series := ExtractSeries(nil, VariableNDVI, "field", discardLogger())

		assert.True(t, series.Empty())
		assert.Equal(t, "N/A", series.DateRange)
	})

	t.Run("empty array", func(t *testing.T) {
		series := ExtractSeries(json.RawMessage(`[]`), VariableET, "field", discardLogger())

		assert.Equal(t, 0, series.ValuesFound)
		assert.Equal(t, "N/A", series.DateRange)
	})

	t.Run("date range uses delivery order not min max", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"time":"2021-06-01","et":10},
			{"time":"2021-01-01","et":10}
		]`)

		series := ExtractSeries(raw, VariableET, "field", discardLogger())

		assert.Equal(t, "2021-06-01 to 2021-01-01", series.DateRange)
	})

	t.Run("mean rounds to 3 places", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"time":"2021-01-01","ndvi":0.1},
			{"time":"2021-02-01","ndvi":0.2},
			{"time":"2021-03-01","ndvi":0.4}
		]`)

		series := ExtractSeries(raw, VariableNDVI, "field", discardLogger())

		assert.InDelta(t, 0.233, series.Mean, 1e-9)
	})
}

func TestExtractedSeries_MarshalJSON(t *testing.T) {
	raw := json.RawMessage(`[{"time":"2021-01-01","et":20},{"time":"2021-02-01","et":40}]`)
	series := ExtractSeries(raw, VariableET, "31.0, -98.4", discardLogger())

	data, err := json.Marshal(series)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "OpenET", decoded["source"])
	assert.Equal(t, "31.0, -98.4", decoded["location"])
	assert.Equal(t, float64(2), decoded["values_found"])
	assert.Equal(t, "2021-01-01 to 2021-02-01", decoded["date_range"])
	assert.Equal(t, 30.0, decoded["et_mean"])
	assert.NotContains(t, decoded, "ndvi_mean")

	points, ok := decoded["data_points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 2)
	first, ok := points[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2021-01-01", first["date"])
	assert.Equal(t, 20.0, first["ET"])
}

func TestExtractedSeries_MarshalJSON_Empty(t *testing.T) {
	series := ExtractSeries(nil, VariableNDVI, "field", discardLogger())

	data, err := json.Marshal(series)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, float64(0), decoded["values_found"])
	assert.Equal(t, "N/A", decoded["date_range"])
	assert.Equal(t, float64(0), decoded["ndvi_mean"])

	points, ok := decoded["data_points"].([]any)
	require.True(t, ok)
	assert.Empty(t, points)
}
