// Package cache provides a fixed-capacity key/value store with
// least-recently-used eviction. It caps per-client memory for the local
// rate-limit path: under sustained unique-client load the store never
// holds more than its configured capacity.
package cache

import "container/list"

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a bounded map with least-recently-used eviction. Both Get and Set
// count as a "touch" and move the key to the most-recently-used position.
//
// LRU is not safe for concurrent use; callers serialize access with their
// own lock, which also covers the surrounding read-modify-write sequences.
type LRU[K comparable, V any] struct {
	capacity int
	order    *list.List // front = most recently used
	items    map[K]*list.Element
	onEvict  func(K, V)
}

// NewLRU creates a cache holding at most capacity entries. Capacity is
// fixed for the lifetime of the cache; values below 1 are clamped to 1.
// onEvict, if non-nil, is called for every evicted entry.
func NewLRU[K comparable, V any](capacity int, onEvict func(K, V)) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
		onEvict:  onEvict,
	}
}

// Get returns the value stored under key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting the least-recently-used entry when
// a new key would exceed capacity.
func (c *LRU[K, V]) Set(key K, value V) {
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Delete removes key if present.
func (c *LRU[K, V]) Delete(key K) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Clear drops every entry without invoking the eviction callback.
func (c *LRU[K, V]) Clear() {
	c.order.Init()
	clear(c.items)
}

// Len reports the number of live entries.
func (c *LRU[K, V]) Len() int { return c.order.Len() }

// Contains reports whether key is present without touching recency.
func (c *LRU[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

func (c *LRU[K, V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	ent := el.Value.(*entry[K, V])
	c.order.Remove(el)
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
