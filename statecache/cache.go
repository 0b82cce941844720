// Package statecache holds the latest known reserve snapshot per pool,
// decoupling quote computation from whatever transport fetched the on-chain
// data. Updates arrive from an asynchronous feed; reads come from the
// caller's synchronous context. A single RWMutex over whole-snapshot
// replacement is the entire locking discipline — entries are replaced, never
// partially mutated.
package statecache

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/puckydev/puckswap-client-go/pool"
)

// ErrPoolUnknown is returned when a pool has no snapshot in the cache yet.
// This is an expected state during startup, before the first snapshot
// arrives, not a fatal condition.
var ErrPoolUnknown = errors.New("pool not present in state cache")

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Callback is invoked synchronously on every accepted update for a subscribed
// pool. Callbacks run outside the cache lock but on the updater's goroutine;
// they must be reentrant-safe to being called during their own update cycle
// and must not assume deduplicated delivery.
type Callback func(poolID string, p pool.Pool, snapshotVersion uint64)

// Entry is one cached pool snapshot with its provenance.
type Entry struct {
	Pool            pool.Pool
	SnapshotVersion uint64
	LastUpdatedAt   time.Time
}

// Cache is the process-wide source of truth for "the latest known reserve
// snapshot per pool". Safe for concurrent use.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]Entry
	subs      map[string]map[uint64]Callback
	nextSubID uint64

	logger  Logger
	metrics *Metrics
	now     func() time.Time
}

// New creates an empty cache. The registry is required so update traffic is
// always observable; pass prometheus.NewRegistry() if the caller has no
// global one.
func New(logger Logger, registry prometheus.Registerer) (*Cache, error) {
	if logger == nil {
		return nil, errors.New("statecache: Logger is required")
	}
	if registry == nil {
		return nil, errors.New("statecache: Registry is required")
	}
	return &Cache{
		entries: make(map[string]Entry),
		subs:    make(map[string]map[uint64]Callback),
		logger:  logger,
		metrics: NewMetrics(registry),
		now:     time.Now,
	}, nil
}

// Update replaces the entry for poolID wholesale. An update whose
// snapshotVersion is not strictly newer than the held one is dropped as a
// no-op (out-of-order network responses must not roll state backward) and
// Update returns false. The stored pool is a deep copy, so the caller may
// keep mutating its own copy freely.
func (c *Cache) Update(poolID string, p pool.Pool, snapshotVersion uint64) bool {
	c.mu.Lock()

	if cur, ok := c.entries[poolID]; ok && snapshotVersion <= cur.SnapshotVersion {
		c.mu.Unlock()
		c.metrics.updatesDropped.Inc()
		c.logger.Debug("Dropped stale pool snapshot",
			"pool_id", poolID,
			"held_version", cur.SnapshotVersion,
			"offered_version", snapshotVersion,
		)
		return false
	}

	c.entries[poolID] = Entry{
		Pool:            pool.DeepCopy(p),
		SnapshotVersion: snapshotVersion,
		LastUpdatedAt:   c.now(),
	}
	c.metrics.poolsTracked.Set(float64(len(c.entries)))

	callbacks := make([]Callback, 0, len(c.subs[poolID]))
	for _, cb := range c.subs[poolID] {
		callbacks = append(callbacks, cb)
	}
	c.mu.Unlock()

	c.metrics.updatesApplied.Inc()

	if len(callbacks) > 0 {
		timer := prometheus.NewTimer(c.metrics.notifyDuration)
		for _, cb := range callbacks {
			cb(poolID, pool.DeepCopy(p), snapshotVersion)
		}
		timer.ObserveDuration()
	}
	return true
}

// Get returns an immutable copy of the latest snapshot for poolID together
// with its snapshot version, or ErrPoolUnknown.
func (c *Cache) Get(poolID string) (pool.Pool, uint64, error) {
	c.mu.RLock()
	entry, ok := c.entries[poolID]
	c.mu.RUnlock()

	if !ok {
		return pool.Pool{}, 0, ErrPoolUnknown
	}
	return pool.DeepCopy(entry.Pool), entry.SnapshotVersion, nil
}

// Snapshot returns the full cache entry for poolID, or ErrPoolUnknown.
func (c *Cache) Snapshot(poolID string) (Entry, error) {
	c.mu.RLock()
	entry, ok := c.entries[poolID]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, ErrPoolUnknown
	}
	entry.Pool = pool.DeepCopy(entry.Pool)
	return entry, nil
}

// Remove discards the entry for poolID, if any. Subscriptions survive; the
// pool simply reads as unknown until the next accepted update.
func (c *Cache) Remove(poolID string) {
	c.mu.Lock()
	delete(c.entries, poolID)
	c.metrics.poolsTracked.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// Subscribe registers a callback for accepted updates on poolID and returns
// the subscription handle for Unsubscribe.
func (c *Cache) Subscribe(poolID string, cb Callback) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	if c.subs[poolID] == nil {
		c.subs[poolID] = make(map[uint64]Callback)
	}
	c.subs[poolID][id] = cb
	return id
}

// Unsubscribe removes a previously registered callback. Unknown handles are
// ignored.
func (c *Cache) Unsubscribe(poolID string, subID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if subs, ok := c.subs[poolID]; ok {
		delete(subs, subID)
		if len(subs) == 0 {
			delete(c.subs, poolID)
		}
	}
}

// PoolIDs returns the identifiers of every pool currently held.
func (c *Cache) PoolIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}
