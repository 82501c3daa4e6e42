package balancecache

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/quantumauth-io/balance-checker/internal/balances"
	"github.com/quantumauth-io/balance-checker/internal/constants"
	"github.com/quantumauth-io/balance-checker/internal/observability"
)

// Eviction reasons reported to metrics.
const (
	EvictExpired  = "expired"
	EvictCapacity = "capacity"
	EvictCleared  = "cleared"
)

// Entry is one cached snapshot and the time it was stored.
type Entry struct {
	Snapshot balances.Snapshot
	StoredAt time.Time
}

// Cache holds the latest snapshot per address for a fixed TTL. Expiry is
// checked on access only; there is no background sweeper.
type Cache struct {
	mu      sync.Mutex
	lru     *simplelru.LRU[string, Entry]
	ttl     time.Duration
	now     func() time.Time
	metrics *observability.Metrics

	// reason labels the evictions reported by the lru callback; guarded by mu.
	reason string
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a cache holding at most capacity addresses; the least recently
// used address is dropped when full.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		capacity = constants.BalanceCacheCapacity
	}

	c := &Cache{
		ttl:    constants.BalanceCacheTTL,
		now:    time.Now,
		reason: EvictCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		return nil, errors.Newf("balancecache: ttl must be positive, got %s", c.ttl)
	}

	lru, err := simplelru.NewLRU[string, Entry](capacity, func(string, Entry) {
		c.metrics.RecordCacheEviction(c.reason)
	})
	if err != nil {
		return nil, errors.Wrap(err, "balancecache: create lru")
	}
	c.lru = lru
	return c, nil
}

func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the snapshot for address if it was stored no longer than TTL ago.
// An expired entry is removed.
func (c *Cache) Get(address string) (balances.Snapshot, bool) {
	key := balances.NormalizeAddress(address)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		c.metrics.RecordCacheLookup(false)
		return balances.Snapshot{}, false
	}

	if c.now().Sub(entry.StoredAt) > c.ttl {
		c.removeWithReason(key, EvictExpired)
		c.metrics.RecordCacheLookup(false)
		return balances.Snapshot{}, false
	}

	c.metrics.RecordCacheLookup(true)
	return entry.Snapshot, true
}

// Set stores snapshot under address, replacing whatever was there.
func (c *Cache) Set(address string, snapshot balances.Snapshot) {
	key := balances.NormalizeAddress(address)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, Entry{Snapshot: snapshot, StoredAt: c.now()})
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reason = EvictCleared
	c.lru.Purge()
	c.reason = EvictCapacity
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

func (c *Cache) removeWithReason(key, reason string) {
	c.reason = reason
	c.lru.Remove(key)
	c.reason = EvictCapacity
}
