// Package rendercache is a content-addressable store for rendered seat
// views, keyed by camera-pose fingerprint.
//
// It guarantees that an expensive render runs at most once per distinct
// fingerprint concurrently outstanding: concurrent requests for the same
// key share a single in-flight render and all receive the same result or
// the same error. Completed renders are kept in a byte-bounded LRU with
// lazy TTL expiry, optionally backed by a shared store (Redis) so separate
// instances can reuse each other's renders.
package rendercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/seatlens/seatlens/pkg/errs"
)

// Default bounds applied when Config leaves them zero.
const (
	DefaultMaxBytes      = 512 << 20 // 512 MiB of image payloads
	DefaultMaxEntries    = 1024
	DefaultRenderTimeout = 60 * time.Second // GPU cold starts are slow
)

// RenderFunc produces the image bytes for a cache miss. The context carries
// the render timeout; implementations must respect it.
type RenderFunc func(ctx context.Context) ([]byte, error)

// Backing is an optional second-level store consulted on miss before
// rendering and written through after a successful render. Failures on the
// backing store degrade to a render; they never fail the request.
type Backing interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Config bounds the cache.
type Config struct {
	// MaxBytes caps the total size of cached image payloads.
	MaxBytes int64
	// MaxEntries caps the entry count.
	MaxEntries int
	// TTL expires entries after this age. Zero disables expiry. Expiry is
	// checked lazily at lookup: no background sweeper, stale entries
	// linger until touched or evicted by the LRU bound.
	TTL time.Duration
	// RenderTimeout bounds each render call.
	RenderTimeout time.Duration
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
}

// entry is a cached render. Owned exclusively by the cache; the byte slice
// is handed out on hits and must not be modified by callers.
type entry struct {
	data       []byte
	createdAt  time.Time
	lastAccess time.Time
	node       *lruNode
}

// Cache is the render cache. Safe for concurrent use.
type Cache struct {
	cfg     Config
	backing Backing
	logger  *log.Logger
	now     func() time.Time

	// mu guards entries, lru and sizeBytes. The render itself never runs
	// under mu, so a slow render blocks nothing but its own fingerprint.
	mu        sync.Mutex
	entries   map[string]*entry
	lru       lruList
	sizeBytes int64

	// flight serializes renders per fingerprint: the
	// check-in-flight-or-register step is atomic inside the group, and
	// the flight function re-checks the cache before rendering, so two
	// concurrent misses can never both start a render for the same key.
	flight singleflight.Group

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
}

// New creates a cache with the given bounds. A nil logger falls back to the
// package default; backing may be nil.
func New(cfg Config, backing Backing, logger *log.Logger) *Cache {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = DefaultRenderTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		cfg:     cfg,
		backing: backing,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// GetOrRender returns the cached image for fingerprint fp, rendering it via
// render on a miss. Concurrent callers for the same fingerprint share one
// render invocation and receive identical results.
//
// ctx cancels only this caller's wait: an abandoned caller detaches while
// the in-flight render keeps running for the remaining waiters and still
// populates the cache. The render itself is bounded by the configured
// RenderTimeout, not by any single caller's context.
func (c *Cache) GetOrRender(ctx context.Context, fp string, render RenderFunc) ([]byte, error) {
	if data, ok := c.lookup(fp); ok {
		c.hits.Add(1)
		return data, nil
	}
	c.misses.Add(1)

	ch := c.flight.DoChan(fp, func() (any, error) {
		return c.renderAndStore(fp, render)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// renderAndStore runs inside the singleflight group, at most once per
// outstanding fingerprint. On error the group clears the in-flight state on
// return, so a later request for the same fingerprint retries instead of
// blocking forever.
func (c *Cache) renderAndStore(fp string, render RenderFunc) ([]byte, error) {
	// Re-check under the flight: the entry may have been inserted between
	// this caller's lookup miss and the flight starting.
	if data, ok := c.lookup(fp); ok {
		return data, nil
	}

	if data, ok := c.fromBacking(fp); ok {
		c.insert(fp, data)
		return data, nil
	}

	// The render is detached from caller contexts and bounded only by the
	// configured timeout.
	rctx, cancel := context.WithTimeout(context.Background(), c.cfg.RenderTimeout)
	defer cancel()

	start := c.now()
	data, err := render(rctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.Wrap(errs.ErrCodeRenderTimeout, err,
				"render exceeded %s", c.cfg.RenderTimeout)
		}
		return nil, err
	}

	c.logger.Debug("render completed",
		"fingerprint", short(fp), "bytes", len(data), "duration", c.now().Sub(start))

	c.insert(fp, data)
	c.toBacking(fp, data)
	return data, nil
}

// lookup returns a cached entry, applying lazy TTL expiry and promoting the
// entry to most recently used.
func (c *Cache) lookup(fp string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp]
	if !ok {
		return nil, false
	}

	if c.cfg.TTL > 0 && c.now().Sub(e.createdAt) > c.cfg.TTL {
		c.removeLocked(fp, e)
		c.expirations.Add(1)
		return nil, false
	}

	e.lastAccess = c.now()
	c.lru.MoveToFront(e.node)
	return e.data, true
}

// insert stores a rendered image and evicts least-recently-used entries
// until the cache is back within its bounds.
func (c *Cache) insert(fp string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[fp]; ok {
		c.sizeBytes += int64(len(data)) - int64(len(e.data))
		e.data = data
		e.createdAt = c.now()
		e.lastAccess = e.createdAt
		c.lru.MoveToFront(e.node)
	} else {
		now := c.now()
		c.entries[fp] = &entry{
			data:       data,
			createdAt:  now,
			lastAccess: now,
			node:       c.lru.PushFront(fp),
		}
		c.sizeBytes += int64(len(data))
	}

	for (c.sizeBytes > c.cfg.MaxBytes || len(c.entries) > c.cfg.MaxEntries) && c.lru.Len() > 0 {
		oldest, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		if e, ok := c.entries[oldest]; ok {
			c.sizeBytes -= int64(len(e.data))
			delete(c.entries, oldest)
			c.evictions.Add(1)
		}
	}
}

// fromBacking consults the shared store; errors degrade to a miss.
func (c *Cache) fromBacking(fp string) ([]byte, bool) {
	if c.backing == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, ok, err := c.backing.Get(ctx, fp)
	if err != nil {
		c.logger.Warn("backing store get failed", "fingerprint", short(fp), "err", err)
		return nil, false
	}
	return data, ok
}

// toBacking writes through to the shared store, best effort.
func (c *Cache) toBacking(fp string, data []byte) {
	if c.backing == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.backing.Set(ctx, fp, data, c.cfg.TTL); err != nil {
		c.logger.Warn("backing store set failed", "fingerprint", short(fp), "err", err)
	}
}

// Remove deletes a fingerprint from the in-memory cache.
// Returns true if an entry was removed.
func (c *Cache) Remove(fp string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp]
	if !ok {
		return false
	}
	c.removeLocked(fp, e)
	return true
}

// Clear empties the in-memory cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.lru.Clear()
	c.sizeBytes = 0
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SizeBytes returns the total size of cached payloads.
func (c *Cache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizeBytes
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}

func (c *Cache) removeLocked(fp string, e *entry) {
	c.lru.Remove(e.node)
	c.sizeBytes -= int64(len(e.data))
	delete(c.entries, fp)
}

// short abbreviates a fingerprint for log output.
func short(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}
