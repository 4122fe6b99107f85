package stationapi

import (
	"context"
	"sync"

	"github.com/hydrometrics/ehsn-measurements-etl/internal/domain"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/observability"
)

// CachedDirectory wraps a StationDirectory with an in-memory LRU cache.
// Station metadata changes rarely, so entries never expire within a run.
type CachedDirectory struct {
	inner   domain.StationDirectory
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedDirectory creates a cache decorator around a station directory.
func NewCachedDirectory(inner domain.StationDirectory, maxEntries int, metrics *observability.Metrics) *CachedDirectory {
	return &CachedDirectory{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedDirectory) Lookup(ctx context.Context, stationNo string) (domain.StationInfo, error) {
	if info, ok := c.cache.get(stationNo); ok {
		c.countCache("hit")
		return info, nil
	}
	c.countCache("miss")

	info, err := c.inner.Lookup(ctx, stationNo)
	if err != nil {
		return info, err
	}
	// Only cache known stations so transient "not found" responses can be
	// retried once the station is registered.
	if info.StationNo != "" {
		c.cache.put(stationNo, info)
	}
	return info, nil
}

func (c *CachedDirectory) countCache(result string) {
	if c.metrics != nil {
		c.metrics.StationCache.WithLabelValues(result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache for station metadata.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.StationInfo
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.StationInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.StationInfo{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.StationInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
