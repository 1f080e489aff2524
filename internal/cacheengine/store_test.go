package cacheengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreInsertLookupTouch(t *testing.T) {
	s := newStore()

	added := s.insert("a", 1, time.Time{}, false)
	assert.True(t, added)
	assert.Equal(t, 1, s.size())

	_, ent, ok := s.lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, ent.value)

	// Overwrite reports added=false and does not grow size.
	added = s.insert("a", 2, time.Time{}, false)
	assert.False(t, added)
	assert.Equal(t, 1, s.size())

	_, ent, _ = s.lookup("a")
	assert.Equal(t, 2, ent.value)
}

func TestStoreRecencyOrder(t *testing.T) {
	s := newStore()
	s.insert("a", "A", time.Time{}, false)
	s.insert("b", "B", time.Time{}, false)
	s.insert("c", "C", time.Time{}, false)

	var order []string
	s.iterate(func(e *entry) bool {
		order = append(order, e.key)
		return true
	})
	assert.Equal(t, []string{"c", "b", "a"}, order)

	el, _, ok := s.lookup("a")
	require.True(t, ok)
	s.touch(el)

	order = nil
	s.iterate(func(e *entry) bool {
		order = append(order, e.key)
		return true
	})
	assert.Equal(t, []string{"a", "c", "b"}, order)
}

func TestStorePopLRU(t *testing.T) {
	s := newStore()
	s.insert("a", "A", time.Time{}, false)
	s.insert("b", "B", time.Time{}, false)

	victim, ok := s.popLRU()
	require.True(t, ok)
	assert.Equal(t, "a", victim.key)
	assert.Equal(t, 1, s.size())

	_, ok = s.popLRU()
	require.True(t, ok)
	assert.Equal(t, 0, s.size())

	_, ok = s.popLRU()
	assert.False(t, ok)
}

func TestStoreRemoveKeepsIndexAndListInSync(t *testing.T) {
	s := newStore()
	s.insert("a", "A", time.Time{}, false)
	s.insert("b", "B", time.Time{}, false)

	el, _, ok := s.lookup("a")
	require.True(t, ok)
	s.remove(el)

	_, _, ok = s.lookup("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.size())

	var keys []string
	s.iterate(func(e *entry) bool {
		keys = append(keys, e.key)
		return true
	})
	assert.Equal(t, []string{"b"}, keys)
}

func TestStoreClear(t *testing.T) {
	s := newStore()
	s.insert("a", "A", time.Time{}, false)
	s.insert("b", "B", time.Time{}, false)
	s.clear()
	assert.Equal(t, 0, s.size())
	_, _, ok := s.lookup("a")
	assert.False(t, ok)
}

func TestStoreSweepFromRemovesExpiredAndResumes(t *testing.T) {
	s := newStore()
	now := time.Now()

	s.insert("expired1", "v", now.Add(-time.Minute), true)
	s.insert("live", "v", time.Time{}, false)
	s.insert("expired2", "v", now.Add(-time.Minute), true)

	removed, next := s.sweepFrom("", now, 1)
	assert.Equal(t, 1, removed)
	assert.NotEmpty(t, next)

	removed, next = s.sweepFrom(next, now, 10)
	assert.Equal(t, 1, removed)
	assert.Empty(t, next)

	assert.Equal(t, 1, s.size())
	_, _, ok := s.lookup("live")
	assert.True(t, ok)
}

func TestStoreSweepFromResumesFromTailWhenCursorStale(t *testing.T) {
	s := newStore()
	now := time.Now()
	s.insert("a", "A", time.Time{}, false)

	// A cursor naming a key that no longer exists must not panic; it
	// falls back to sweeping from the tail.
	removed, next := s.sweepFrom("gone", now, 10)
	assert.Equal(t, 0, removed)
	assert.Empty(t, next)
}
