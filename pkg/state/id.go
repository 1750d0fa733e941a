package state

import "sync/atomic"

// globalIDCounter is the source of unique IDs for subscriptions.
// Using atomic operations ensures thread-safe ID generation without locks.
var globalIDCounter uint64

// nextID returns the next unique subscription ID.
// IDs are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
