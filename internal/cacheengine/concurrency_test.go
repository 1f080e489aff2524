package cacheengine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentOperationsPreserveInvariants drives many goroutines through
// interleaved put/get/put-with-TTL/delete traffic on a shared engine and
// checks at the end the capacity bound, total_requests = hits + misses, and
// that All() (which skips expired entries) never lists more entries than
// Stats().CurrentSize reports.
func TestConcurrentOperationsPreserveInvariants(t *testing.T) {
	const goroutines = 16
	const opsPerGoroutine = 500
	const maxSize = 50

	e := New(Config{MaxSize: maxSize, SweepInterval: 5 * time.Millisecond}, nil)
	defer e.Shutdown()

	var g errgroup.Group
	for gid := 0; gid < goroutines; gid++ {
		gid := gid
		g.Go(func() error {
			for i := 0; i < opsPerGoroutine; i++ {
				key := fmt.Sprintf("k-%d-%d", gid, i%20)
				switch i % 4 {
				case 0:
					if err := e.Put(key, i); err != nil {
						return err
					}
				case 1:
					e.Get(key)
				case 2:
					if err := e.PutWithTTL(key, i, time.Millisecond); err != nil {
						return err
					}
				case 3:
					_ = e.Delete(key)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stats := e.Stats()
	assert.LessOrEqual(t, stats.CurrentSize, maxSize)
	assert.Equal(t, stats.TotalRequests, stats.Hits+stats.Misses)

	all := e.All()
	assert.LessOrEqual(t, len(all), stats.CurrentSize)
}

// TestConcurrentGetUpdatesRecencyAtomically checks the ordering guarantee: a
// hit and its recency promotion are observed
// together — a concurrent reader never sees incremented hits without the
// promoted key also being at MRU.
func TestConcurrentGetUpdatesRecencyAtomically(t *testing.T) {
	e := New(Config{MaxSize: 4}, nil)
	require.NoError(t, e.Put("a", 1))
	require.NoError(t, e.Put("b", 2))
	require.NoError(t, e.Put("c", 3))
	require.NoError(t, e.Put("d", 4))

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			if _, ok := e.Get("a"); !ok {
				return fmt.Errorf("unexpected miss for a")
			}
			all := e.All()
			if len(all) == 0 || all[0].Key != "a" {
				return fmt.Errorf("a was not MRU immediately after a hit: %v", all)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
