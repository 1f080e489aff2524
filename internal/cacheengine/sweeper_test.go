package cacheengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperBoundedBatchCompletesFullLap(t *testing.T) {
	e := newTestEngine(100)
	for i := 0; i < 10; i++ {
		require.NoError(t, e.PutWithTTL(string(rune('a'+i)), i, time.Nanosecond))
	}
	time.Sleep(time.Millisecond)

	removed := 0
	wrapped := false
	for !wrapped {
		var r int
		r, wrapped = e.sweepBatch(3)
		removed += r
	}
	assert.Equal(t, 10, removed)
	assert.Equal(t, 0, e.Stats().CurrentSize)
}

func TestSweeperStopIsCooperativeAndIdempotent(t *testing.T) {
	e := New(Config{MaxSize: 10, SweepInterval: 5 * time.Millisecond}, nil)
	require.NoError(t, e.Put("a", 1))

	e.Shutdown()
	// A second Shutdown must not block or panic.
	e.Shutdown()
}

func TestSweeperDisabledWhenIntervalIsZero(t *testing.T) {
	e := New(Config{MaxSize: 10}, nil)
	assert.Nil(t, e.sweeper)
	e.Shutdown()
}
