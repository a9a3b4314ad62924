// Package domain implements the time-series analysis core: extraction of
// ET and NDVI observation series from raw OpenET payloads, the derived
// statistical reports, and the assembled response payload.
//
// # Data Source
//
// Series come from the OpenET raster timeseries API at monthly interval,
// Ensemble model, millimeter units. Each response is a JSON array of records
// like
//
//	[{"time": "2021-04-01", "et": 42.3}, ...]
//
// Records with a missing date or a null value are normal (cloud-obscured or
// pre-launch months) and are dropped, never imputed. When a request fails the
// provider may return an error object instead of an array; extraction treats
// that as an empty series rather than an error so the other variable's report
// still goes out.
//
// # Ordering
//
// Provider delivery order is trusted and preserved end to end. The series
// date_range label uses the first and last records as delivered, not min/max,
// and the peak ET month is the first maximal value in delivery order.
//
// # Classification ladders
//
// Water use, from mean monthly ET (mm):
//
//	<30 low | <50 moderate | <70 high | >=70 very high
//
// ET consistency, from the coefficient of variation:
//
//	<0.3 high | <0.6 moderate | >=0.6 low
//
// Vegetation vigor, from mean NDVI:
//
//	<0.2 sparse | <0.4 low | <0.6 moderate | <0.8 healthy | >=0.8 very healthy
//
// Trend is the sign of a least-squares slope of ET against observation index,
// with |slope| < 0.1 mm/month reported as stable.
//
// # Rounding
//
// All display rounding is half-to-even. Derived values (the inches
// conversions, the coefficient of variation, classification inputs) are
// computed from already-rounded display values where existing consumers'
// golden outputs require it; see the notes in analyze.go.
package domain
