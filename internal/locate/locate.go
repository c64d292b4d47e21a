// Package locate obtains the user's position for nearby selection.
//
// A lookup either yields a coordinate or fails; callers turn failures into an
// unknown location with Resolve. Nothing here retries.
package locate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/woozymasta/servicefinder/internal/geo"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNoResult is returned when a lookup found no position.
	ErrNoResult = errors.New("no location found")
)

// Locator produces a position.
type Locator interface {
	Locate(ctx context.Context) (geo.Point, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (geo.Point, error)

// Locate calls f(ctx).
func (f LocatorFunc) Locate(ctx context.Context) (geo.Point, error) {
	return f(ctx)
}

// Static is a manually entered position.
type Static geo.Point

// Locate returns the fixed position.
func (s Static) Locate(context.Context) (geo.Point, error) {
	return geo.Point(s), nil
}

type cached struct {
	at    time.Time
	point geo.Point
}

// MaxCacheEntries caps how many positions a Cache holds. When full, the oldest
// entry is dropped to make room.
const MaxCacheEntries = 1024

// Cache bounds every lookup with a timeout and reuses positions younger than maxAge.
// Expired positions are evicted. It is safe for concurrent use.
type Cache struct {
	now     func() time.Time
	entries map[string]cached
	timeout time.Duration
	maxAge  time.Duration
	mu      sync.Mutex
}

// NewCache creates a cache. A zero maxAge disables reuse.
func NewCache(timeout, maxAge time.Duration) *Cache {
	return &Cache{
		now:     time.Now,
		entries: make(map[string]cached),
		timeout: timeout,
		maxAge:  maxAge,
	}
}

// Locate returns the cached position for key or asks l for a new one.
func (c *Cache) Locate(ctx context.Context, key string, l Locator) (geo.Point, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !c.fresh(entry) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if ok {
		return entry.point, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type outcome struct {
		err   error
		point geo.Point
	}

	done := make(chan outcome, 1)
	go func() {
		p, err := l.Locate(ctx)
		done <- outcome{point: p, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		return geo.Point{}, ctx.Err()
	}
	if res.err != nil {
		return geo.Point{}, res.err
	}

	if c.maxAge > 0 {
		c.mu.Lock()
		c.store(key, cached{point: res.point, at: c.now()})
		c.mu.Unlock()
	}

	return res.point, nil
}

// Len reports how many positions are held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) fresh(e cached) bool {
	return c.maxAge > 0 && c.now().Sub(e.at) <= c.maxAge
}

// store sweeps expired entries, then drops the oldest while the cache is full.
// c.mu must be held.
func (c *Cache) store(key string, e cached) {
	for k, v := range c.entries {
		if !c.fresh(v) {
			delete(c.entries, k)
		}
	}

	for len(c.entries) >= MaxCacheEntries {
		if _, ok := c.entries[key]; ok {
			break
		}

		oldest, first := "", true
		for k, v := range c.entries {
			if first || v.at.Before(c.entries[oldest].at) {
				oldest, first = k, false
			}
		}
		delete(c.entries, oldest)
	}

	c.entries[key] = e
}

// Resolve looks up key through c and reports failures as an unknown (nil) location.
func Resolve(ctx context.Context, c *Cache, key string, l Locator) *geo.Point {
	p, err := c.Locate(ctx, key, l)
	if err != nil {
		log.Warn().
			Err(err).
			Str("query", key).
			Msg("Location unavailable, continuing without it")
		return nil
	}

	return &p
}
