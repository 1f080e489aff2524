package cacheengine

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// sweeper is the engine's background TTL reaper: a single long-lived
// goroutine that wakes on a timer, acquires the engine's lock
// for one bounded batch at a time, removes expired entries, and yields
// between batches so it never holds the lock for unbounded time against a
// very large store.
//
// State machine: Idle → Sleeping → Sweeping → Sleeping → … → Stopping →
// Stopped. "Idle" is the period before start(); "Stopping"/"Stopped" are
// entered by stop(), which is cooperative — an in-flight batch always
// finishes before the goroutine observes the stop signal and exits.
type sweeper struct {
	engine    *Engine
	interval  time.Duration
	batchSize int
	log       *zap.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

func newSweeper(e *Engine, interval time.Duration, batchSize int, log *zap.Logger) *sweeper {
	return &sweeper{
		engine:    e,
		interval:  interval,
		batchSize: batchSize,
		log:       log,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (s *sweeper) start() {
	go s.run()
}

// stop signals the sweeper to exit and blocks until it has (Stopping →
// Stopped). Safe to call at most once — the engine only ever stops its
// sweeper from Shutdown, which is itself idempotent.
func (s *sweeper) stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *sweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepPass()
		}
	}
}

// sweepPass walks the whole store in bounded batches, stopping early if a
// stop signal arrives between batches.
func (s *sweeper) sweepPass() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		removed, wrapped := s.engine.sweepBatch(s.batchSize)
		if removed > 0 {
			s.log.Debug("sweeper removed expired entries", zap.Int("removed", removed))
		}
		if wrapped {
			return
		}
		// Yield between batches instead of immediately re-acquiring the
		// lock, so a large store's sweep doesn't starve concurrent ops.
		runtime.Gosched()
	}
}

// sweepBatch inspects up to limit entries starting from the engine's
// sweep cursor, removing any expired as of now, and returns how many were
// removed and whether the walk completed a full lap of the store
// (cursor returned to the front, i.e. wrapped == true).
func (e *Engine) sweepBatch(limit int) (removed int, wrapped bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, true
	}

	removed, next := e.store.sweepFrom(e.sweepCur, time.Now(), limit)
	e.counters.expiredRemovals += uint64(removed)
	e.sweepCur = next
	return removed, next == ""
}
