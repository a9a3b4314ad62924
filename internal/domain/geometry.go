package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Polygon input errors surface at request validation and map to 400.
var (
	ErrPolygonShape    = errors.New("polygon must be an array or GeoJSON object")
	ErrPolygonTooSmall = errors.New("polygon must have at least 3 coordinate pairs")
	ErrPolygonOddArray = errors.New("polygon array must have an even number of values (lon/lat pairs)")
)

// FlattenPolygon coerces the accepted polygon input shapes into the flat
// [lon, lat, lon, lat, ...] array the provider expects. Accepted shapes:
//
//  1. flat array: [lon1, lat1, lon2, lat2, ...]
//  2. array of pairs: [[lon1, lat1], [lon2, lat2], ...]
//  3. GeoJSON Polygon geometry
//  4. GeoJSON Feature wrapping a Polygon
//  5. GeoJSON FeatureCollection with exactly one such Feature
//
// Only the outer ring of a GeoJSON polygon is used; holes are ignored.
func FlattenPolygon(raw json.RawMessage) ([]float64, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, ErrPolygonShape
	}

	switch v := value.(type) {
	case []any:
		return flattenArray(v)
	case map[string]any:
		ring, err := outerRingFromGeoJSON(v)
		if err != nil {
			return nil, err
		}
		return flattenPairRing(ring)
	default:
		return nil, ErrPolygonShape
	}
}

func flattenArray(items []any) ([]float64, error) {
	if len(items) == 0 {
		return nil, ErrPolygonShape
	}

	if flat, ok := asNumbers(items); ok {
		if len(flat) < 6 {
			return nil, ErrPolygonTooSmall
		}
		if len(flat)%2 != 0 {
			return nil, ErrPolygonOddArray
		}
		return flat, nil
	}

	// Not all numbers: must be an array of [lon, lat] pairs.
	for _, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("invalid polygon format: expected flat array or array of coordinate pairs")
		}
	}
	return flattenPairRing(items)
}

func asNumbers(items []any) ([]float64, bool) {
	flat := make([]float64, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil, false
		}
		flat[i] = f
	}
	return flat, true
}

// flattenPairRing flattens a ring of [lon, lat] pairs, taking the first two
// elements of each coordinate (GeoJSON permits a third, elevation).
func flattenPairRing(ring []any) ([]float64, error) {
	if len(ring) < 3 {
		return nil, ErrPolygonTooSmall
	}
	flat := make([]float64, 0, len(ring)*2)
	for _, item := range ring {
		pair, ok := item.([]any)
		if !ok || len(pair) < 2 {
			return nil, fmt.Errorf("invalid coordinate in polygon ring")
		}
		lon, okLon := pair[0].(float64)
		lat, okLat := pair[1].(float64)
		if !okLon || !okLat {
			return nil, fmt.Errorf("invalid coordinate in polygon ring")
		}
		flat = append(flat, lon, lat)
	}
	return flat, nil
}

func outerRingFromGeoJSON(obj map[string]any) ([]any, error) {
	switch obj["type"] {
	case "FeatureCollection":
		features, ok := obj["features"].([]any)
		if !ok || len(features) == 0 {
			return nil, errors.New("FeatureCollection has no features")
		}
		if len(features) > 1 {
			return nil, errors.New("FeatureCollection contains multiple features, only a single polygon is supported")
		}
		feature, ok := features[0].(map[string]any)
		if !ok || feature["type"] != "Feature" {
			return nil, errors.New("FeatureCollection item is not a Feature")
		}
		return ringFromFeature(feature)

	case "Feature":
		return ringFromFeature(obj)

	case "Polygon":
		return ringFromPolygon(obj)

	default:
		return nil, fmt.Errorf("unsupported GeoJSON type %q, expected Polygon, Feature, or FeatureCollection", obj["type"])
	}
}

func ringFromFeature(feature map[string]any) ([]any, error) {
	geometry, ok := feature["geometry"].(map[string]any)
	if !ok {
		return nil, errors.New("Feature has no geometry")
	}
	return ringFromPolygon(geometry)
}

func ringFromPolygon(geometry map[string]any) ([]any, error) {
	if geomType := geometry["type"]; geomType != "Polygon" {
		return nil, fmt.Errorf("unsupported geometry type %q, only Polygon is supported", geomType)
	}
	coords, ok := geometry["coordinates"].([]any)
	if !ok || len(coords) == 0 {
		return nil, errors.New("invalid Polygon coordinates")
	}
	ring, ok := coords[0].([]any)
	if !ok {
		return nil, errors.New("invalid Polygon outer ring")
	}
	return ring, nil
}
