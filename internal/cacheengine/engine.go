// Package cacheengine implements the core of an in-process, thread-safe
// key/value cache: a bounded-capacity, TTL-aware, LRU-evicting store with
// hit/miss/eviction counters, coordinated under a single exclusion
// primitive so every public operation stays linearizable.
//
// The HTTP façade, static UI, and process wiring are deliberately kept out
// of this package — they are external collaborators over the Engine
// contract, not part of the core.
package cacheengine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config constructs an Engine. MaxSize must be >= 1. DefaultTTL of zero
// means "no TTL unless one is given explicitly on Put". SweepInterval of
// zero disables the background sweeper (lazy expiration on Get still
// applies). SweepBatchSize bounds how many entries the sweeper inspects
// per lock acquisition; zero selects DefaultSweepBatchSize.
type Config struct {
	MaxSize        int
	DefaultTTL     time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
}

// DefaultSweepBatchSize is the default for Config.SweepBatchSize.
const DefaultSweepBatchSize = 1024

// Engine is a bounded, TTL-aware, LRU-evicting key/value cache. All
// exported methods are safe for concurrent use by any number of goroutines.
type Engine struct {
	mu sync.Mutex

	store      *store
	maxSize    int
	defaultTTL time.Duration
	hasDefault bool
	counters   counters
	sweepCur   string

	log *zap.Logger

	sweeper *sweeper
	closed  bool
}

// New constructs an Engine and, if cfg.SweepInterval > 0, starts its
// background sweeper. log may be nil, in which case a no-op logger is
// used.
func New(cfg Config, log *zap.Logger) *Engine {
	if cfg.MaxSize < 1 {
		cfg.MaxSize = 1
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = DefaultSweepBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		store:      newStore(),
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		hasDefault: cfg.DefaultTTL > 0,
		log:        log,
	}

	if cfg.SweepInterval > 0 {
		e.sweeper = newSweeper(e, cfg.SweepInterval, cfg.SweepBatchSize, log)
		e.sweeper.start()
	}

	return e
}

// Put stores key/value using the engine's default TTL (or "never" when no
// default TTL is configured).
func (e *Engine) Put(key string, value any) error {
	return e.put(key, value, e.defaultTTL, e.hasDefault)
}

// PutWithTTL stores key/value with an explicit TTL. ttl must be positive;
// ttl <= 0 is ErrInvalidTTL.
func (e *Engine) PutWithTTL(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return e.put(key, value, ttl, true)
}

func (e *Engine) put(key string, value any, ttl time.Duration, hasTTL bool) error {
	if key == "" {
		return ErrInvalidKey
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrShutdown
	}

	now := time.Now()
	var expiresAt time.Time
	if hasTTL {
		expiresAt = now.Add(ttl)
	}

	added := e.store.insert(key, value, expiresAt, hasTTL)
	if added && e.store.size() > e.maxSize {
		// Exactly one insert grows size by at most one, so exactly one
		// eviction restores the bound — this is an invariant, not an
		// optimization.
		if victim, ok := e.store.popLRU(); ok {
			e.counters.evictions++
			e.log.Debug("evicted lru entry", zap.String("key", victim.key))
		}
	}
	return nil
}

// Get returns the value for key and true on a hit, or (nil, false) on a
// miss — whether because key was never present or because it had expired.
// A hit promotes key to MRU.
func (e *Engine) Get(key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, false
	}

	el, ent, ok := e.store.lookup(key)
	if !ok {
		e.counters.misses++
		return nil, false
	}

	if ent.expired(time.Now()) {
		e.store.remove(el)
		e.counters.expiredRemovals++
		e.counters.misses++
		return nil, false
	}

	e.store.touch(el)
	e.counters.hits++
	return ent.value, true
}

// Delete removes key. It returns ErrNotFound if key is absent — this does
// not count as a miss.
func (e *Engine) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrShutdown
	}

	el, _, ok := e.store.lookup(key)
	if !ok {
		return ErrNotFound
	}
	e.store.remove(el)
	return nil
}

// Clear empties the store. Counters are preserved across Clear.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrShutdown
	}
	e.store.clear()
	e.sweepCur = ""
	return nil
}

// Pair is one key/value row as returned by All.
type Pair struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// All returns a snapshot of {key, value} pairs in MRU→LRU order, excluding
// entries expired as of the snapshot time. It does not mutate recency or
// counters — this is a read-only export.
func (e *Engine) All() []Pair {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	out := make([]Pair, 0, e.store.size())
	e.store.iterate(func(ent *entry) bool {
		if !ent.expired(now) {
			out = append(out, Pair{Key: ent.key, Value: ent.value})
		}
		return true
	})
	return out
}

// Stats returns an immutable snapshot of the engine's counters and derived
// hit rate.
func (e *Engine) Stats() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters.snapshot(e.store.size())
}

// Hits, Misses, Evictions, ExpiredRemovals, and CurrentSize expose single
// counters without building a full Snapshot. They exist so external
// observers — telemetry.CacheStatsSource is the only one in this repo —
// can mirror the engine's counters (e.g. into Prometheus GaugeFuncs)
// without the core package importing anything observability-specific.
func (e *Engine) Hits() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters.hits
}

func (e *Engine) Misses() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters.misses
}

func (e *Engine) Evictions() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters.evictions
}

func (e *Engine) ExpiredRemovals() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters.expiredRemovals
}

func (e *Engine) CurrentSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.size()
}

// IsShutdown reports whether Shutdown has already been called.
func (e *Engine) IsShutdown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Shutdown stops the background sweeper, if running, and marks the engine
// terminal: every subsequent Put/Delete/Clear returns ErrShutdown, and Get
// returns a miss. Shutdown is idempotent and safe to call more than once.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	sw := e.sweeper
	e.mu.Unlock()

	// Stop outside the lock: the sweeper's own loop acquires the same
	// lock per batch, so holding it here while waiting would deadlock.
	if sw != nil {
		sw.stop()
	}
}
