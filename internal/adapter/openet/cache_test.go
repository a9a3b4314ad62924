package openet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingProvider struct {
	pointCalls   int
	polygonCalls int
	payload      json.RawMessage
	err          error
}

func (m *countingProvider) FetchPoint(_ context.Context, _, _ float64, _, _, _ string) (json.RawMessage, error) {
	m.pointCalls++
	return m.payload, m.err
}

func (m *countingProvider) FetchPolygon(_ context.Context, _ []float64, _, _, _ string) (json.RawMessage, error) {
	m.polygonCalls++
	return m.payload, m.err
}

// --- CachedProvider tests ---

func TestCachedProvider_PointCacheHit(t *testing.T) {
	inner := &countingProvider{payload: json.RawMessage(`[{"time":"2023-04-01","et":45.2}]`)}
	cached := NewCachedProvider(inner, 10, testMetrics())

	r1, err := cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-12-31", "et")
	require.NoError(t, err)
	assert.JSONEq(t, string(inner.payload), string(r1))

	r2, err := cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-12-31", "et")
	require.NoError(t, err)
	assert.JSONEq(t, string(inner.payload), string(r2))

	assert.Equal(t, 1, inner.pointCalls, "should only call inner once")
}

func TestCachedProvider_DistinctQueriesMiss(t *testing.T) {
	inner := &countingProvider{payload: json.RawMessage(`[]`)}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, err := cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-12-31", "et")
	require.NoError(t, err)

	// Same coordinate, different variable.
	_, err = cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-12-31", "ndvi")
	require.NoError(t, err)

	// Same variable, different date range.
	_, err = cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-06-30", "et")
	require.NoError(t, err)

	assert.Equal(t, 3, inner.pointCalls)
}

func TestCachedProvider_PolygonCacheHit(t *testing.T) {
	inner := &countingProvider{payload: json.RawMessage(`[{"time":"2023-06-01","ndvi":0.62}]`)}
	cached := NewCachedProvider(inner, 10, testMetrics())

	ring := []float64{-98.5, 31.0, -98.4, 31.0, -98.4, 31.1}

	_, err := cached.FetchPolygon(context.Background(), ring, "2023-01-01", "2023-12-31", "ndvi")
	require.NoError(t, err)
	_, err = cached.FetchPolygon(context.Background(), ring, "2023-01-01", "2023-12-31", "ndvi")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.polygonCalls)
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("openet down")}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, err := cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-12-31", "et")
	require.Error(t, err)
	_, err = cached.FetchPoint(context.Background(), 31.0, -98.5, "2023-01-01", "2023-12-31", "et")
	require.Error(t, err)

	assert.Equal(t, 2, inner.pointCalls, "failed fetches must be retried")
}

func TestCachedProvider_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingProvider{payload: json.RawMessage(`[]`)}
	cached := NewCachedProvider(inner, 2, testMetrics())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cached.FetchPoint(ctx, float64(30+i), -98.5, "2023-01-01", "2023-12-31", "et")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.pointCalls)

	// Oldest entry (lat 30) was evicted; the two newest are still cached.
	_, err := cached.FetchPoint(ctx, 31, -98.5, "2023-01-01", "2023-12-31", "et")
	require.NoError(t, err)
	_, err = cached.FetchPoint(ctx, 32, -98.5, "2023-01-01", "2023-12-31", "et")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.pointCalls)

	_, err = cached.FetchPoint(ctx, 30, -98.5, "2023-01-01", "2023-12-31", "et")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.pointCalls, "evicted entry should refetch")
}

func TestPolygonKey_Stable(t *testing.T) {
	ring := []float64{-98.5, 31.0, -98.4, 31.0, -98.4, 31.1}
	k1 := polygonKey(ring, "2023-01-01", "2023-12-31", "et")
	k2 := polygonKey(ring, "2023-01-01", "2023-12-31", "et")
	assert.Equal(t, k1, k2)

	k3 := polygonKey(ring, "2023-01-01", "2023-12-31", "ndvi")
	assert.NotEqual(t, k1, k3)

	for i := range ring {
		altered := append([]float64(nil), ring...)
		altered[i] += 0.001
		assert.NotEqual(t, k1, polygonKey(altered, "2023-01-01", "2023-12-31", "et"),
			fmt.Sprintf("coordinate %d must affect the key", i))
	}
}
