// Package lru implements a small generic least-recently-used cache, used by
// internal/pad to cap the number of live per-transport-id MOT assemblers
// (spec.md §4.5, default capacity 10). container/list is the idiomatic Go
// building block for this; no generic-container library appears anywhere in
// the retrieved corpus to wire in instead (see DESIGN.md).
package lru

import "container/list"

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a fixed-capacity LRU keyed by K holding values of V. Eviction is
// silent: the evicted entry is simply dropped, matching spec.md's "eviction
// silently drops incomplete assemblies".
type Cache[K comparable, V any] struct {
	capacity int
	order    *list.List
	items    map[K]*list.Element
}

// New returns a Cache with the given capacity (at least 1).
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most-recently-used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// GetOrCreate returns the existing value for key, or calls create, stores,
// and returns its result if key is absent — evicting the least-recently-used
// entry first if the cache is at capacity.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	v := create()
	el := c.order.PushFront(&entry[K, V]{key: key, value: v})
	c.items[key] = el
	return v
}

// Remove drops key from the cache, if present.
func (c *Cache[K, V]) Remove(key K) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

func (c *Cache[K, V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry[K, V]).key)
}

// Len returns the number of entries currently cached.
func (c *Cache[K, V]) Len() int { return c.order.Len() }
