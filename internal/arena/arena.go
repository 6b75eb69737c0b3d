// Package arena provides the single generic append-only arena shared by
// every component that hands out small, stable integer indices: HIR
// definitions/expressions/statements/patterns/types, type-system TyIds, and
// MIR locals/blocks. Index 0 is always reserved to mean "no id".
package arena

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is a generic typed arena for allocating elements. Indices are
// 1-based; index 0 is reserved to represent the absence of a reference.
type Arena[T any] struct {
	data []*T
}

// New creates an arena with an optional capacity hint.
func New[T any](capHint uint32) *Arena[T] {
	return &Arena[T]{data: make([]*T, 0, capHint)}
}

// Allocate appends a value to the arena and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	elem := new(T)
	*elem = value
	a.data = append(a.data, elem)
	return a.Len()
}

// Get returns a pointer to the element at the given 1-based index, or nil
// for index 0 or an out-of-range index.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return a.data[index-1]
}

// MustGet is like Get but panics on an invalid index; callers use it only
// where the index is known-valid by construction (e.g. iterating 1..Len()).
func (a *Arena[T]) MustGet(index uint32) *T {
	v := a.Get(index)
	if v == nil {
		panic(fmt.Errorf("arena: invalid index %d", index))
	}
	return v
}

// Len returns the number of allocated elements.
func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena len overflow: %w", err))
	}
	return n
}

// Slice returns a copy of the arena contents in allocation order.
func (a *Arena[T]) Slice() []T {
	out := make([]T, len(a.data))
	for i, ptr := range a.data {
		out[i] = *ptr
	}
	return out
}

// All iterates 1-based indices in allocation order, yielding pointers into
// the arena itself (mutations are visible to later Get calls).
func (a *Arena[T]) All(yield func(id uint32, value *T) bool) {
	for i, ptr := range a.data {
		idx, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("arena index overflow: %w", err))
		}
		if !yield(idx, ptr) {
			return
		}
	}
}
