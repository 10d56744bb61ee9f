// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package registry implements the opaque-handle-to-record mapping that
// spec.md §4.1 describes abstractly: each resource kind (memory
// object, object, command buffer, queue, swapchain) gets one Table
// keyed by a Handle issued from that Table's own monotonic counter
// (fences are records in the object Table), mirroring
// the teacher's dataMap identifier pattern in
// gviegas/neo3/engine/id.go (there keyed by recycled slot index; here
// the GPU API's own handles are opaque pointers that the tracker never
// reuses, so a counter is the faithful analogue).
package registry

import "iter"

// Handle is an opaque identifier handed back to the caller. The zero
// value is never issued and stands for "null handle", matching the
// convention of the GPU API this tracker shadows.
type Handle uint64

// Table is a handle-to-record map for one resource kind. It is not
// itself safe for concurrent use; callers serialize access (the
// tracker's single mutex, per spec.md §5).
type Table[T any] struct {
	recs map[Handle]*T
	next uint64
}

// NewTable constructs an empty Table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{recs: make(map[Handle]*T)}
}

// Create allocates a fresh handle for v and inserts it, returning the
// handle.
func (t *Table[T]) Create(v T) Handle {
	t.next++
	h := Handle(t.next)
	rec := v
	t.recs[h] = &rec
	return h
}

// Get looks up the record for h. ok is false if h is unknown (never
// created, or already destroyed) — lookup failure is not itself fatal
// per spec.md §4.1; callers emit a diagnostic and degrade gracefully.
func (t *Table[T]) Get(h Handle) (*T, bool) {
	r, ok := t.recs[h]
	return r, ok
}

// Delete removes the record for h, if present.
func (t *Table[T]) Delete(h Handle) {
	delete(t.recs, h)
}

// Has reports whether h currently identifies a record.
func (t *Table[T]) Has(h Handle) bool {
	_, ok := t.recs[h]
	return ok
}

// Len returns the number of live records.
func (t *Table[T]) Len() int { return len(t.recs) }

// All iterates over every (handle, record) pair in the table. Order is
// unspecified, matching spec.md §4.1's "insertion order is irrelevant".
func (t *Table[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for h, r := range t.recs {
			if !yield(h, r) {
				return
			}
		}
	}
}

// Clear removes every record from the table.
func (t *Table[T]) Clear() {
	clear(t.recs)
}
