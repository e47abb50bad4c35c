package tether

import (
	"github.com/mesh-intelligence/tether/internal/capacity"
	"github.com/mesh-intelligence/tether/internal/weakref"
)

// initialMinimum seeds the first growth; capacity.Next rounds it up to the
// first preferred prime, so a fresh table starts at 11 slots.
const initialMinimum = 8

// createEntryLocked binds a fresh link in a slot taken from the freelist,
// resizing first when the freelist is empty, and pushes the slot onto its
// bucket chain.
func (t *Table[K, V]) createEntryLocked(hash uint64, key *K, value V) {
	if t.freeHead == none {
		t.resizeAndScavengeLocked()
	}

	i := t.freeHead
	t.freeHead = t.slots[i].next

	s := &t.slots[i]
	s.hash = hash
	s.link = weakref.Make(key, value)

	b := hash % uint64(len(t.buckets))
	s.next = t.buckets[b]
	t.buckets[b] = i
}

// resizeAndScavengeLocked rebuilds the bucket chains and the freelist in a
// single pass over the slot array. Expired slots are released where they
// stand; the table only grows when no slot has expired, to the next preferred
// capacity above twice the current one. Postcondition: the freelist is
// non-empty.
func (t *Table[K, V]) resizeAndScavengeLocked() {
	oldCap := len(t.slots)

	expired := 0
	for i := range t.slots {
		s := &t.slots[i]
		if s.link.Allocated() && s.link.Primary() == nil {
			expired++
		}
	}

	newCap := oldCap
	switch {
	case oldCap == 0:
		newCap = capacity.Next(initialMinimum)
	case expired == 0:
		newCap = capacity.Next(2*oldCap + 1)
	}

	buckets := make([]int, newCap)
	for i := range buckets {
		buckets[i] = none
	}
	slots := make([]slot[K, V], newCap)
	freeHead := none

	// Live slots keep their index and rehash into the new buckets; expired
	// slots release their link and join the freelist alongside free ones.
	for i := range t.slots {
		old := &t.slots[i]
		if old.link.Allocated() {
			if old.link.Primary() != nil {
				slots[i].hash = old.hash
				slots[i].link = old.link
				b := old.hash % uint64(newCap)
				slots[i].next = buckets[b]
				buckets[b] = i
				continue
			}
			old.link.Free()
		}
		slots[i].next = freeHead
		freeHead = i
	}
	for i := oldCap; i < newCap; i++ {
		slots[i].next = freeHead
		freeHead = i
	}

	t.buckets = buckets
	t.slots = slots
	t.freeHead = freeHead
}
