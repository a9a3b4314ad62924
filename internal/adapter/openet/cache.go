package openet

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agriscope/et-insight-service/internal/domain"
	"github.com/agriscope/et-insight-service/internal/observability"
)

// CachedProvider wraps a domain.Provider with an in-memory LRU cache keyed on
// the full query. OpenET bills per request, and analysts tend to re-run the
// same field and date range, so even a small cache cuts the bill noticeably.
type CachedProvider struct {
	inner   domain.Provider
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front is most recently used
}

type cacheEntry struct {
	key     string
	payload json.RawMessage
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.Provider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *CachedProvider) FetchPoint(ctx context.Context, lat, lon float64, startDate, endDate, variable string) (json.RawMessage, error) {
	key := fmt.Sprintf("pt:%.6f,%.6f|%s|%s|%s", lat, lon, startDate, endDate, variable)
	if payload, ok := c.get(key, variable); ok {
		return payload, nil
	}
	payload, err := c.inner.FetchPoint(ctx, lat, lon, startDate, endDate, variable)
	if err != nil {
		return nil, err
	}
	c.put(key, payload)
	return payload, nil
}

func (c *CachedProvider) FetchPolygon(ctx context.Context, polygon []float64, startDate, endDate, variable string) (json.RawMessage, error) {
	key := polygonKey(polygon, startDate, endDate, variable)
	if payload, ok := c.get(key, variable); ok {
		return payload, nil
	}
	payload, err := c.inner.FetchPolygon(ctx, polygon, startDate, endDate, variable)
	if err != nil {
		return nil, err
	}
	c.put(key, payload)
	return payload, nil
}

func polygonKey(polygon []float64, startDate, endDate, variable string) string {
	coords := make([]byte, 0, len(polygon)*12)
	for _, v := range polygon {
		coords = fmt.Appendf(coords, "%.6f,", v)
	}
	return fmt.Sprintf("pg:%s|%s|%s|%s", coords, startDate, endDate, variable)
}

func (c *CachedProvider) get(key, variable string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.countLookup(variable, "miss")
		return nil, false
	}
	c.order.MoveToFront(el)
	c.countLookup(variable, "hit")
	return el.Value.(*cacheEntry).payload, true
}

func (c *CachedProvider) put(key string, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).payload = payload
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, payload: payload})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *CachedProvider) countLookup(variable, result string) {
	if c.metrics != nil {
		c.metrics.ProviderCache.WithLabelValues(variable, result).Inc()
	}
}
