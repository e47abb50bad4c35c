// Package tether binds auxiliary values to objects by reference identity
// without extending the objects themselves and without keeping them alive.
// Keys are pointers; once a key becomes unreachable everywhere else, its
// entry expires on its own and the slot is recovered by the next scavenge.
//
// A Table is safe for concurrent use; every operation serializes on one
// internal mutex, except the factory passed to GetOrAdd, which runs unlocked
// so it may touch the same table without deadlocking.
//
// Go's weak pointers are plain weak references, not ephemerons: a value that
// strongly references its own key keeps that key reachable and the entry
// never expires. Callers that need such cycles must break them explicitly
// with Remove.
package tether

// Version is the tether library version.
const Version = "0.1.0"
