package grok

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// DefaultCacheExpiration is how long an unused compiled expression stays cached.
	DefaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = time.Hour
)

// Cache memoizes compilations of a Compiler and makes them safe to request
// from multiple goroutines.
//
// Entries are keyed by the registry version, so any change to the registry
// makes later lookups recompile. Compilations are serialised because inline
// definitions write to the registry; lookups of cached entries are not.
type Cache struct {
	compiler *Compiler
	mu       sync.Mutex
	store    *cache.Cache
}

// NewCache wraps c. ttl is how long an entry may go unused before it is
// evicted; zero means DefaultCacheExpiration and a negative value disables
// expiry.
func NewCache(c *Compiler, ttl time.Duration) *Cache {
	cleanup := cacheCleanupInterval
	switch {
	case ttl == 0:
		ttl = DefaultCacheExpiration
	case ttl < 0:
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &Cache{
		compiler: c,
		store:    cache.New(ttl, cleanup),
	}
}

// Compile returns the cached expression for expr, compiling it on a miss.
// Errors are not cached.
func (c *Cache) Compile(expr string) (*Expression, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strconv.FormatUint(c.compiler.registry.Version(), 10) + "\x00" + expr
	if v, ok := c.store.Get(key); ok {
		return v.(*Expression), nil
	}

	e, err := c.compiler.Compile(expr)
	if err != nil {
		return nil, err
	}
	// Inline definitions may have bumped the version; cache under the
	// version the next caller will see.
	key = strconv.FormatUint(c.compiler.registry.Version(), 10) + "\x00" + expr
	c.store.SetDefault(key, e)
	return e, nil
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Flush drops every cached entry.
func (c *Cache) Flush() {
	c.store.Flush()
}
