// Package cache provides a bounded least-recently-used cache used for
// prepared statements keyed by generated SQL.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

const (
	// DefaultCapacity is the default maximum number of cached entries.
	DefaultCapacity = 1000
)

// LRU is a concurrency-safe cache with least-recently-used eviction.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List
	onEvict  func(K, V)

	// Metrics using atomic for lock-free access.
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding at most capacity entries. onEvict, if not nil,
// is called with every value that leaves the cache through eviction,
// replacement or Clear. It runs with the cache lock held and must not call
// back into the cache.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		onEvict:  onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*entry[K, V]).value, true
}

// Peek returns the value for key without touching recency or metrics.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		return elem.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key. A previous value for key is replaced and
// passed to onEvict; if the cache is full the least recently used entry
// is evicted.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		e := elem.Value.(*entry[K, V])
		old := e.value
		e.value = value
		c.evicted(key, old)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// evictOldest must be called with the lock held.
func (c *LRU[K, V]) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	e := elem.Value.(*entry[K, V])
	delete(c.items, e.key)
	c.evictions.Add(1)
	c.evicted(e.key, e.value)
}

func (c *LRU[K, V]) evicted(key K, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes every entry, passing each to onEvict.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry[K, V])
		c.evicted(e.key, e.value)
	}
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}

// Stats holds cache performance metrics.
type Stats struct {
	Size      int     // Current number of entries.
	Capacity  int     // Maximum capacity.
	Hits      uint64  // Number of successful lookups.
	Misses    uint64  // Number of failed lookups.
	Evictions uint64  // Number of capacity evictions.
	HitRate   float64 // hits / (hits + misses).
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	size := c.Len()
	hits := c.hits.Load()
	misses := c.misses.Load()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      size,
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   hitRate,
	}
}
