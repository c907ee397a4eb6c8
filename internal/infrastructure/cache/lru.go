package cache

import (
	"container/list"
	"regexp"
	"sync"
	"time"

	"github.com/cartsaver/backend/internal/domain"
)

// Defaults applied when the constructor receives zero values.
const (
	DefaultCapacity = 1000
	DefaultTTL      = 30 * time.Minute
)

// entry wraps a cached value with its expiry bookkeeping. The hit counter
// is diagnostics only; eviction is pure LRU by access order.
type entry[V any] struct {
	key       string
	value     V
	timestamp time.Time
	ttl       time.Duration
	hits      int64
}

// Stats reports cache performance counters.
type Stats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
}

// Cache is a thread-safe bounded key/value store with per-entry TTL and
// LRU eviction. An entry is logically absent once its TTL has elapsed even
// if a sweep has not removed it yet. A single mutex serializes all access;
// the cache is small and every operation is O(1) to O(n) over the entries.
type Cache[V any] struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	items      map[string]*list.Element
	order      *list.List // front = most recently used
	hits       int64
	misses     int64
	evictions  int64
	expired    int64
}

// New creates a cache with the given capacity and default TTL. Zero or
// negative values fall back to the defaults.
func New[V any](capacity int, defaultTTL time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache[V]{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Set inserts or overwrites a value. A zero ttl uses the default; a
// negative ttl is a contract violation. When the cache is at capacity and
// the key is new, the least-recently-used entry is evicted first.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) error {
	if ttl < 0 {
		return domain.ErrInvalidTTL
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.timestamp = time.Now()
		ent.ttl = ttl
		ent.hits = 0
		c.order.MoveToFront(elem)
		return nil
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&entry[V]{
		key:       key,
		value:     value,
		timestamp: time.Now(),
		ttl:       ttl,
	})
	return nil
}

// Get returns the value for key when present and fresh. A stale entry is
// deleted as a side effect of the lookup. A hit bumps the entry's counter
// and marks it most-recently-used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key, time.Now())
}

// BatchGet returns the values for every present, fresh key. Missing or
// stale keys are simply absent from the result.
func (c *Cache[V]) BatchGet(keys []string) map[string]V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	found := make(map[string]V)
	for _, key := range keys {
		if value, ok := c.lookup(key, now); ok {
			found[key] = value
		}
	}
	return found
}

// lookup implements get semantics. Caller must hold the lock.
func (c *Cache[V]) lookup(key string, now time.Time) (V, bool) {
	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if now.Sub(ent.timestamp) > ent.ttl {
		c.remove(elem)
		c.expired++
		c.misses++
		return zero, false
	}

	ent.hits++
	c.hits++
	c.order.MoveToFront(elem)
	return ent.value, true
}

// Invalidate removes a key. Reports whether it was present.
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if ok {
		c.remove(elem)
	}
	return ok
}

// InvalidatePattern removes every key matching the pattern and returns the
// number removed.
func (c *Cache[V]) InvalidatePattern(pattern *regexp.Regexp) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if pattern.MatchString(key) {
			c.remove(elem)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Cleanup sweeps the whole cache and purges everything past its TTL,
// returning the number purged. Intended to run periodically, independent
// of access patterns.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	purged := 0
	for _, elem := range c.items {
		ent := elem.Value.(*entry[V])
		if now.Sub(ent.timestamp) > ent.ttl {
			c.remove(elem)
			c.expired++
			purged++
		}
	}
	return purged
}

// StartSweeper runs Cleanup on the given interval until the returned stop
// function is called.
func (c *Cache[V]) StartSweeper(interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}

// Len returns the number of physically present entries, stale ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   c.order.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
}

// evictOldest drops the least-recently-used entry. Caller must hold the lock.
func (c *Cache[V]) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.remove(back)
	c.evictions++
}

// remove unlinks an element from both the map and the order list.
func (c *Cache[V]) remove(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	delete(c.items, ent.key)
	c.order.Remove(elem)
}
