// Package weakref pairs a non-owning reference to a primary object with an
// owning reference to a secondary value. The secondary stays reachable through
// the link only while the link itself is reachable; the primary is never kept
// alive by the link. Links perform no synchronization of their own; callers
// serialize access, normally under the owning table's lock.
package weakref

import "weak"

// Link binds a weakly held primary of type K to a strongly held secondary of
// type V. The zero Link is unallocated.
type Link[K, V any] struct {
	primary   weak.Pointer[K]
	secondary V
	allocated bool
}

// Make allocates a link for the given primary and secondary. The primary must
// be non-nil; the runtime tracks it without keeping it reachable.
func Make[K, V any](primary *K, secondary V) Link[K, V] {
	return Link[K, V]{
		primary:   weak.Make(primary),
		secondary: secondary,
		allocated: true,
	}
}

// Allocated reports whether the link currently holds a pair. It stays true
// after the primary has been reclaimed; only Free clears it.
func (l *Link[K, V]) Allocated() bool {
	return l.allocated
}

// Primary resolves the weak reference. It returns nil once the collector has
// determined the primary unreachable, or if the link is unallocated.
func (l *Link[K, V]) Primary() *K {
	if !l.allocated {
		return nil
	}
	return l.primary.Value()
}

// PrimaryAndSecondary resolves both halves of the pair together. A non-zero
// secondary is never returned with a nil primary: resolving the weak pointer
// first makes the primary strongly reachable through the returned pointer, so
// the pairing cannot be torn by a concurrent collection.
func (l *Link[K, V]) PrimaryAndSecondary() (*K, V) {
	var zero V
	if !l.allocated {
		return nil, zero
	}
	p := l.primary.Value()
	if p == nil {
		return nil, zero
	}
	return p, l.secondary
}

// Free releases the pair. Idempotent; a freed link resolves to nothing and
// drops its strong reference to the secondary.
func (l *Link[K, V]) Free() {
	if !l.allocated {
		return
	}
	var zero V
	l.primary = weak.Pointer[K]{}
	l.secondary = zero
	l.allocated = false
}
