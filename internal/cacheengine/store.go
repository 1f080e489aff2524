package cacheengine

import (
	"container/list"
	"time"
)

// entry is one live cache row. It is the *list.Element.Value payload; the
// element itself is the recency-list node and the index's owning handle.
type entry struct {
	key       string
	value     any
	expiresAt time.Time
	hasExpiry bool
}

func (e *entry) expired(now time.Time) bool {
	return e.hasExpiry && !e.expiresAt.After(now)
}

// store is the entry store: a keyed index over a recency list, ordered MRU
// (front) to LRU (back). Every method here assumes the caller already
// holds Engine's mutex — store has no locking of its own; the public API
// acquires the lock once and delegates to these non-locking helpers.
type store struct {
	index map[string]*list.Element
	ll    *list.List
}

func newStore() *store {
	return &store{
		index: make(map[string]*list.Element),
		ll:    list.New(),
	}
}

// insert overwrites an existing entry's value/expiry and promotes it to
// MRU, or creates a new entry at MRU. Returns true when a new entry was
// added (as opposed to an overwrite) so the caller can decide whether
// eviction accounting applies.
func (s *store) insert(key string, value any, expiresAt time.Time, hasExpiry bool) bool {
	if el, ok := s.index[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		e.hasExpiry = hasExpiry
		s.ll.MoveToFront(el)
		return false
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt, hasExpiry: hasExpiry}
	el := s.ll.PushFront(e)
	s.index[key] = el
	return true
}

// lookup returns the entry for key without any structural mutation.
func (s *store) lookup(key string) (*list.Element, *entry, bool) {
	el, ok := s.index[key]
	if !ok {
		return nil, nil, false
	}
	return el, el.Value.(*entry), true
}

// touch promotes el to MRU. O(1).
func (s *store) touch(el *list.Element) {
	s.ll.MoveToFront(el)
}

// remove unlinks el from the recency list and deletes it from the index.
// O(1). It panics if the index does not map el's key to el, since that
// means the index and the recency list have fallen out of sync.
func (s *store) remove(el *list.Element) {
	e := el.Value.(*entry)
	if s.index[e.key] != el {
		panic("cacheengine: index and recency list out of sync for key " + e.key)
	}
	delete(s.index, e.key)
	s.ll.Remove(el)
}

// popLRU removes and returns the tail entry, or (nil, false) when empty.
func (s *store) popLRU() (*entry, bool) {
	back := s.ll.Back()
	if back == nil {
		return nil, false
	}
	e := back.Value.(*entry)
	s.remove(back)
	return e, true
}

func (s *store) size() int {
	return s.ll.Len()
}

func (s *store) clear() {
	s.index = make(map[string]*list.Element)
	s.ll.Init()
}

// iterate yields entries MRU→LRU order into fn. It is read-only: fn must
// not mutate the store. Iteration stops early if fn returns false.
func (s *store) iterate(fn func(*entry) bool) {
	for el := s.ll.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*entry)) {
			return
		}
	}
}

// sweepFrom walks at most limit entries starting at the entry named by
// cursorKey (or the tail if cursorKey is empty or no longer present),
// moving toward the front, removing any expired as of now. It returns the
// count removed and the key to resume from next time ("" once the walk
// reaches the front, signalling a completed lap). Keying the cursor by
// entry key rather than holding a raw *list.Element across lock releases
// means a concurrent Delete/eviction of the cursor entry can never leave
// the sweeper holding a dangling pointer — worst case it just restarts
// the lap from the tail, which is fine for a best-effort reaper. This
// bounds the sweeper's per-acquisition work so a very large store never
// holds the lock in one shot.
func (s *store) sweepFrom(cursorKey string, now time.Time, limit int) (removed int, nextCursorKey string) {
	var el *list.Element
	if cursorKey != "" {
		el = s.index[cursorKey]
	}
	if el == nil {
		el = s.ll.Back()
	}

	for i := 0; el != nil && i < limit; i++ {
		prev := el.Prev()
		if el.Value.(*entry).expired(now) {
			s.remove(el)
			removed++
		}
		el = prev
	}

	if el == nil {
		return removed, ""
	}
	return removed, el.Value.(*entry).key
}
