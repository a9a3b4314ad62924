package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ndviObs(values ...float64) []Observation {
	out := make([]Observation, len(values))
	for i, v := range values {
		out[i] = Observation{Date: "2021-01-01", Value: v}
	}
	return out
}

func TestSummarizeVegetation(t *testing.T) {
	summary := SummarizeVegetation(ndviObs(0.2, 0.6, 0.7))
	require.NotNil(t, summary)

	assert.Equal(t, 3, summary.TotalObservations)
	assert.Equal(t, 0.5, summary.MeanNDVI)
	assert.Equal(t, 0.7, summary.MaxNDVI)
	assert.Equal(t, 0.2, summary.MinNDVI)
	assert.InDelta(t, 0.216, summary.StdDev, 1e-9)
	assert.Equal(t, "Moderate vegetation", summary.VigorClassification)
	assert.Equal(t, []string{"OpenET"}, summary.DataSources)
}

func TestSummarizeVegetation_EmptyInput(t *testing.T) {
	assert.Nil(t, SummarizeVegetation(nil))
	assert.Nil(t, SummarizeVegetation([]Observation{}))
}

func TestSummarizeVegetation_SingleValue(t *testing.T) {
	summary := SummarizeVegetation(ndviObs(0.85))
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.TotalObservations)
	assert.Equal(t, 0.0, summary.StdDev)
	assert.Equal(t, "Very healthy/dense vegetation", summary.VigorClassification)
}

func TestClassifyVigor_Boundaries(t *testing.T) {
	tests := []struct {
		mean     float64
		expected string
	}{
		{0.19, "Sparse or no vegetation"},
		{0.2, "Low vegetation"},
		{0.39, "Low vegetation"},
		{0.4, "Moderate vegetation"},
		{0.59, "Moderate vegetation"},
		{0.6, "Healthy vegetation"},
		{0.79, "Healthy vegetation"},
		{0.8, "Very healthy/dense vegetation"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, classifyVigor(tt.mean), "mean %v", tt.mean)
	}
}
