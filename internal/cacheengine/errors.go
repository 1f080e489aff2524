package cacheengine

import "errors"

// Sentinel errors returned by Engine operations. Callers should compare
// with errors.Is rather than string matching.
var (
	// ErrInvalidKey is returned when key is empty.
	ErrInvalidKey = errors.New("cacheengine: invalid key")

	// ErrInvalidTTL is returned when an explicit TTL is non-positive.
	ErrInvalidTTL = errors.New("cacheengine: invalid ttl")

	// ErrNotFound is returned by Delete when the key is not present.
	ErrNotFound = errors.New("cacheengine: key not found")

	// ErrShutdown is returned by Put, PutWithTTL, Delete and Clear when
	// attempted after Shutdown. Get reports a miss instead; All and Stats
	// stay readable.
	ErrShutdown = errors.New("cacheengine: engine is shut down")
)
