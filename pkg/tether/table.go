package tether

import (
	"hash/maphash"
	"sync"

	"github.com/mesh-intelligence/tether/internal/weakref"
)

// none terminates a bucket chain or the freelist.
const none = -1

// slot is one entry cell. A slot is in exactly one of three states:
// free (link unallocated, threaded on the freelist), live (link allocated and
// its primary still resolves, threaded on a bucket chain), or expired (link
// allocated but the key has been collected; it stays on its bucket chain
// until the next scavenge).
type slot[K, V any] struct {
	hash uint64
	link weakref.Link[K, V]
	next int
}

// Table is an identity-keyed association table with weakly held keys.
// The zero value is not usable; call New.
type Table[K, V any] struct {
	mu   sync.Mutex
	seed maphash.Seed

	buckets  []int        // head slot index per bucket, or none
	slots    []slot[K, V] // capacity == len(slots), never shrinks
	freeHead int          // head of the intrusive freelist, or none

	poisoned bool
	closed   bool
}

// New creates an empty table. No storage is allocated until the first Add.
func New[K, V any]() *Table[K, V] {
	return &Table[K, V]{
		seed:     maphash.MakeSeed(),
		freeHead: none,
	}
}

// TryGet looks up key by identity. It reports whether a live entry exists and
// returns its value. An entry whose key has been collected reads as absent;
// the slot is left alone until the next scavenge.
func (t *Table[K, V]) TryGet(key *K) (V, bool, error) {
	var zero V
	if key == nil {
		return zero, false, ErrNilKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.poisoned {
		return zero, false, ErrCorrupted
	}
	v, ok := t.lookupLocked(key)
	return v, ok, nil
}

// Add inserts a new entry for key. It returns ErrDuplicateKey if a live entry
// for the same identity exists. If key is collected concurrently with the
// call, the prior entry reads as already gone and the insert proceeds.
func (t *Table[K, V]) Add(key *K, value V) error {
	if key == nil {
		return ErrNilKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.poisonOnPanicLocked()

	if t.poisoned {
		return ErrCorrupted
	}
	if _, ok := t.lookupLocked(key); ok {
		return ErrDuplicateKey
	}
	t.createEntryLocked(t.hashOf(key), key, value)
	return nil
}

// Remove deletes the entry for key and reports whether one was found. A
// removal racing the collector is benign: whichever observes the entry first
// determines the outcome.
func (t *Table[K, V]) Remove(key *K) (bool, error) {
	if key == nil {
		return false, ErrNilKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.poisonOnPanicLocked()

	if t.poisoned {
		return false, ErrCorrupted
	}
	if len(t.buckets) == 0 {
		return false, nil
	}

	h := t.hashOf(key)
	b := h % uint64(len(t.buckets))
	prev := none
	for i := t.buckets[b]; i != none; i = t.slots[i].next {
		s := &t.slots[i]
		if s.hash == h && s.link.Primary() == key {
			if prev == none {
				t.buckets[b] = s.next
			} else {
				t.slots[prev].next = s.next
			}
			s.hash = 0
			s.link.Free()
			s.next = t.freeHead
			t.freeHead = i
			return true, nil
		}
		prev = i
	}
	return false, nil
}

// GetOrAdd returns the value for key, invoking factory to produce one if no
// live entry exists. The factory runs outside the table lock, so it may use
// this table itself. Under contention the factory can run more than once, but
// every racing caller receives the single value that was installed first.
func (t *Table[K, V]) GetOrAdd(key *K, factory func(*K) V) (V, error) {
	var zero V
	if key == nil {
		return zero, ErrNilKey
	}
	if factory == nil {
		return zero, ErrNilFactory
	}

	t.mu.Lock()
	if t.poisoned {
		t.mu.Unlock()
		return zero, ErrCorrupted
	}
	if v, ok := t.lookupLocked(key); ok {
		t.mu.Unlock()
		return v, nil
	}
	t.mu.Unlock()

	produced := factory(key)

	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.poisonOnPanicLocked()

	if t.poisoned {
		return zero, ErrCorrupted
	}
	if v, ok := t.lookupLocked(key); ok {
		// Another caller installed an entry in the interim; that value
		// wins and the freshly produced one is discarded.
		return v, nil
	}
	t.createEntryLocked(t.hashOf(key), key, produced)
	return produced, nil
}

// Close releases every link and drops the slot and bucket arrays. Idempotent:
// repeated calls return nil, while every other operation on a closed table
// returns ErrCorrupted.
func (t *Table[K, V]) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.poisoned = true
	for i := range t.slots {
		t.slots[i].link.Free()
	}
	t.buckets = nil
	t.slots = nil
	t.freeHead = none
	return nil
}

// hashOf computes the identity hash of key. The per-table seed keeps bucket
// placement independent across tables.
func (t *Table[K, V]) hashOf(key *K) uint64 {
	return maphash.Comparable(t.seed, key)
}

// lookupLocked walks key's bucket chain comparing the cached hash first and
// the resolved primary second. The resolved comparison is what makes reused
// addresses safe: an expired link resolves to nil and can never match.
func (t *Table[K, V]) lookupLocked(key *K) (V, bool) {
	var zero V
	if len(t.buckets) == 0 {
		return zero, false
	}

	h := t.hashOf(key)
	for i := t.buckets[h%uint64(len(t.buckets))]; i != none; i = t.slots[i].next {
		s := &t.slots[i]
		if s.hash != h {
			continue
		}
		primary, secondary := s.link.PrimaryAndSecondary()
		if primary == key {
			return secondary, true
		}
	}
	return zero, false
}

// poisonOnPanicLocked latches the poison flag when a mutation is interrupted
// by a fault, then re-raises it. Registered after the unlock defer so the
// flag is set before the lock is released.
func (t *Table[K, V]) poisonOnPanicLocked() {
	if r := recover(); r != nil {
		t.poisoned = true
		panic(r)
	}
}
