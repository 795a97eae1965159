// Package cache provides the in-memory filter result cache: TTL expiry plus
// capacity eviction in insertion order, with reads promoting entries to
// most-recently-used. The cache is advisory — a hit and a miss must produce
// identical matches for identical inputs.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
)

// Defaults for TTL and capacity.
const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 10000
)

// Key identifies one cached evaluation.
type Key struct {
	PropertyID string
	FilterID   string
	ParamsHash string
}

type entry struct {
	key       Key
	value     filter.Match
	storedAt  time.Time
	expiresAt time.Time
}

// Stats is a point-in-time snapshot for operational monitoring.
type Stats struct {
	Size    int   `json:"size"`
	MaxSize int   `json:"maxSize"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// ResultCache memoizes filter evaluations. All methods are safe for
// concurrent use. Construct per consumer and inject; there is no package
// singleton.
type ResultCache struct {
	mu      sync.Mutex
	entries map[Key]*list.Element
	order   *list.List // front = oldest, back = most recently used
	ttl     time.Duration
	maxSize int
	hits    int64
	misses  int64

	now func() time.Time
}

// New creates a cache with the given TTL and capacity; non-positive values
// fall back to the defaults.
func New(ttl time.Duration, maxSize int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &ResultCache{
		entries: make(map[Key]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the cached match for (propertyID, filterID, params) when
// present and unexpired, promoting the entry to most-recently-used.
func (c *ResultCache) Get(propertyID, filterID string, params filter.Params) (filter.Match, bool) {
	key := Key{PropertyID: propertyID, FilterID: filterID, ParamsHash: params.Hash()}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return filter.Match{}, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		c.misses++
		return filter.Match{}, false
	}

	c.order.MoveToBack(el)
	c.hits++
	return e.value, true
}

// Set stores a match with the default TTL, evicting the oldest entry first
// when at capacity.
func (c *ResultCache) Set(propertyID, filterID string, params filter.Params, m filter.Match) {
	c.SetTTL(propertyID, filterID, params, m, c.ttl)
}

// SetTTL stores a match with a caller-specified TTL.
func (c *ResultCache) SetTTL(propertyID, filterID string, params filter.Params, m filter.Match, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	key := Key{PropertyID: propertyID, FilterID: filterID, ParamsHash: params.Hash()}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = m
		e.storedAt = now
		e.expiresAt = now.Add(ttl)
		c.order.MoveToBack(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}

	e := &entry{key: key, value: m, storedAt: now, expiresAt: now.Add(ttl)}
	c.entries[key] = c.order.PushBack(e)
}

// InvalidateProperty removes every entry for one property. Linear scan;
// acceptable because the cache is capacity-bounded.
func (c *ResultCache) InvalidateProperty(propertyID string) int {
	return c.invalidate(func(k Key) bool { return k.PropertyID == propertyID })
}

// InvalidateFilter removes every entry for one filter id.
func (c *ResultCache) InvalidateFilter(filterID string) int {
	return c.invalidate(func(k Key) bool { return k.FilterID == filterID })
}

func (c *ResultCache) invalidate(match func(Key) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	var next *list.Element
	for el := c.order.Front(); el != nil; el = next {
		next = el.Next()
		e := el.Value.(*entry)
		if match(e.key) {
			c.order.Remove(el)
			delete(c.entries, e.key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries and resets counters.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*list.Element)
	c.order.Init()
	c.hits, c.misses = 0, 0
}

// Stats reports the current size, capacity, and hit counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
