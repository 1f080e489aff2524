package cacheengine

// counters holds the engine's monotonic counters. Every field is mutated
// only while the Engine's mutex is held — the same exclusion domain that
// protects the store — so plain uint64s are sufficient; no atomics are
// needed alongside a coarse lock that already serializes every mutation.
type counters struct {
	hits            uint64
	misses          uint64
	evictions       uint64
	expiredRemovals uint64
}

// Snapshot is an immutable point-in-time view of the engine's counters and
// derived statistics. It is a value, not a view over mutable state: once
// returned, nothing about it changes.
type Snapshot struct {
	Hits            uint64  `json:"hits"`
	Misses          uint64  `json:"misses"`
	HitRate         float64 `json:"hit_rate"`
	TotalRequests   uint64  `json:"total_requests"`
	CurrentSize     int     `json:"current_size"`
	Evictions       uint64  `json:"evictions"`
	ExpiredRemovals uint64  `json:"expired_removals"`
}

func (c *counters) snapshot(currentSize int) Snapshot {
	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Snapshot{
		Hits:            c.hits,
		Misses:          c.misses,
		HitRate:         rate,
		TotalRequests:   total,
		CurrentSize:     currentSize,
		Evictions:       c.evictions,
		ExpiredRemovals: c.expiredRemovals,
	}
}
