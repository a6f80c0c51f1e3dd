package filtered

import (
	"log/slog"
	"sync"

	"tidbyt.dev/transitnetwork/transit"
)

// DefaultCapacity is the per-network bound on cached FilteredPatterns
// entries (§4.5 "capacity ≈2" — a network is typically queried for
// one or two live service-day/mode combinations at a time).
const DefaultCapacity = 2

type cacheKey struct {
	modeSet    transit.ModeSet
	serviceKey string
}

type cacheEntry struct {
	key   cacheKey
	value *FilteredPatterns
}

// Cache is a small bounded, concurrency-safe FilteredPatterns cache
// meant to be owned by one TransitNetwork and shared across its
// concurrent readers. Eviction is least-recently-used; with the
// default capacity of 2 this is effectively "keep the last two
// distinct queries".
type Cache struct {
	mu       sync.Mutex
	capacity int
	logger   *slog.Logger
	entries  []cacheEntry // most-recently-used first
}

// NewCache returns a Cache with the given capacity (DefaultCapacity if
// capacity <= 0).
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{capacity: capacity, logger: slog.Default()}
}

// Get returns the FilteredPatterns for (net, modeSet, serviceBitset),
// computing and caching it if absent. Derivation happens with the
// cache lock held: §5 documents per-key derivation as single-threaded,
// so a second concurrent caller for the same new key waits rather than
// duplicating the work.
func (c *Cache) Get(net *transit.TransitNetwork, modeSet transit.ModeSet, serviceBitset transit.Bitset) *FilteredPatterns {
	key := cacheKey{modeSet: modeSet, serviceKey: serviceBitset.Key()}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.entries {
		if e.key == key {
			c.touch(i)
			return e.value
		}
	}

	value := Derive(net, modeSet, serviceBitset, c.logger)
	c.entries = append([]cacheEntry{{key: key, value: value}}, c.entries...)
	if len(c.entries) > c.capacity {
		c.entries = c.entries[:c.capacity]
	}
	return value
}

// touch moves entry i to the front (most-recently-used).
func (c *Cache) touch(i int) {
	if i == 0 {
		return
	}
	e := c.entries[i]
	copy(c.entries[1:i+1], c.entries[0:i])
	c.entries[0] = e
}
