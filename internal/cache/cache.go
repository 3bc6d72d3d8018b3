package cache

import (
	"sync"
	"time"
)

// Key identifies a memoized call: the function and its normalized arguments.
type Key struct {
	Func string
	Args string
}

type entry struct {
	value    any
	err      error
	storedAt time.Time
}

// Cache memoizes call results, errors included, until they are invalidated
// or older than MaxAge. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry

	// MaxAge bounds the lifetime of an entry; zero keeps entries until invalidated.
	MaxAge time.Duration
	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// New creates a cache with the given entry lifetime.
func New(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[Key]entry),
		MaxAge:  maxAge,
		Now:     time.Now,
	}
}

func (c *Cache) expired(e entry) bool {
	return c.MaxAge > 0 && c.Now().Sub(e.storedAt) >= c.MaxAge
}

// Get returns the stored result for key and whether a live entry exists.
func (c *Cache) Get(key Key) (any, error, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		return nil, nil, false
	}
	return e.value, e.err, true
}

// Put stores a result for key.
func (c *Cache) Put(key Key, value any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, err: err, storedAt: c.Now()}
}

// Invalidate drops the entry for key, so the next call re-executes.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateArgs drops every entry whose arguments equal args and reports how many were dropped.
func (c *Cache) InvalidateArgs(args string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if k.Args == args {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Do returns the stored result for key, calling fn and storing its result on a miss.
// The lock is not held while fn runs.
func Do[T any](c *Cache, key Key, fn func() (T, error)) (T, error) {
	if v, err, ok := c.Get(key); ok {
		t, _ := v.(T)
		return t, err
	}
	v, err := fn()
	c.Put(key, v, err)
	return v, err
}
