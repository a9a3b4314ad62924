package domain

import "gonum.org/v1/gonum/stat"

// VegetationSummary is the descriptive report derived from an NDVI series.
type VegetationSummary struct {
	TotalObservations   int      `json:"total_observations"`
	MeanNDVI            float64  `json:"mean_ndvi"`
	MaxNDVI             float64  `json:"max_ndvi"`
	MinNDVI             float64  `json:"min_ndvi"`
	StdDev              float64  `json:"std_dev"`
	VigorClassification string   `json:"vigor_classification"`
	DataSources         []string `json:"data_sources"`
}

// SummarizeVegetation derives descriptive statistics and a vigor label from
// an NDVI observation series. Returns nil when the series is empty, which the
// report layer serializes as an empty object.
func SummarizeVegetation(observations []Observation) *VegetationSummary {
	if len(observations) == 0 {
		return nil
	}

	values := make([]float64, len(observations))
	for i, o := range observations {
		values[i] = o.Value
	}

	maxNDVI, minNDVI := values[0], values[0]
	for _, v := range values[1:] {
		if v > maxNDVI {
			maxNDVI = v
		}
		if v < minNDVI {
			minNDVI = v
		}
	}

	mean := roundPlaces(stat.Mean(values, nil), 3)

	return &VegetationSummary{
		TotalObservations:   len(values),
		MeanNDVI:            mean,
		MaxNDVI:             roundPlaces(maxNDVI, 3),
		MinNDVI:             roundPlaces(minNDVI, 3),
		StdDev:              roundPlaces(stat.PopStdDev(values, nil), 3),
		VigorClassification: classifyVigor(mean),
		DataSources:         []string{SourceOpenET},
	}
}

// classifyVigor labels vegetation density from the display-rounded mean NDVI.
func classifyVigor(meanNDVI float64) string {
	switch {
	case meanNDVI < 0.2:
		return "Sparse or no vegetation"
	case meanNDVI < 0.4:
		return "Low vegetation"
	case meanNDVI < 0.6:
		return "Moderate vegetation"
	case meanNDVI < 0.8:
		return "Healthy vegetation"
	default:
		return "Very healthy/dense vegetation"
	}
}
