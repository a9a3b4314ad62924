package domain

import (
	"context"
	"encoding/json"
)

// Provider fetches one variable's raw time series from the Earth-observation
// API. Implementations return the undecoded response body: the extractor owns
// interpreting it, including the case where the provider substitutes an error
// object for the expected array.
type Provider interface {
	// FetchPoint retrieves a monthly series for a point location.
	FetchPoint(ctx context.Context, lat, lon float64, startDate, endDate, variable string) (json.RawMessage, error)

	// FetchPolygon retrieves a monthly series for a polygon, given the flat
	// [lon, lat, ...] ring produced by FlattenPolygon.
	FetchPolygon(ctx context.Context, polygon []float64, startDate, endDate, variable string) (json.RawMessage, error)
}
