// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import "github.com/kjhaus/memtrack/registry"

// AllocDesc is the immutable allocation descriptor supplied when a
// memory object is created: size, memory-property flags and type
// index, per spec.md's Glossary entry for "Allocation descriptor".
type AllocDesc struct {
	Size          uint64
	PropertyFlags uint32
	TypeIndex     int
}

// MemoryObject is the per-allocation record described in spec.md §3:
// a copy of the allocation descriptor, a reference count, the set of
// objects currently bound to it, and the set of command buffers
// currently referencing it.
//
// Invariant P1 (spec.md §8): RefCount == len(BoundObjects) +
// len(RefCommandBuffers), maintained incrementally by every operation
// that touches either set.
type MemoryObject struct {
	Desc              AllocDesc
	RefCount          int
	BoundObjects      map[registry.Handle]struct{}
	RefCommandBuffers map[registry.Handle]struct{}
}

func newMemoryObject(desc AllocDesc) MemoryObject {
	return MemoryObject{
		Desc:              desc,
		BoundObjects:      make(map[registry.Handle]struct{}),
		RefCommandBuffers: make(map[registry.Handle]struct{}),
	}
}

// AllocMemory creates a MemoryObject record for a new allocation and
// returns its handle. This models the driver's vkAllocateMemory entry
// point from the tracker's point of view (spec.md §2, "allocation
// events populate the memory table").
func (t *Tracker) AllocMemory(desc AllocDesc) registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.memory.Create(newMemoryObject(desc))
}

// allocSwapchainMemory allocates the zero-size, driver-owned memory
// record backing one swapchain image, per spec.md §3/§4.5. Caller
// must hold t.mu.
func (t *Tracker) allocSwapchainMemory() registry.Handle {
	return t.memory.Create(newMemoryObject(AllocDesc{Size: 0}))
}

// FreeMemory implements spec.md §4.5's free_memory(memory, internal).
// It is the most delicate operation in the tracker: it opportunistically
// garbage-collects stale command-buffer references before deciding
// whether the free may proceed. When holders remain it reports every
// one of them and still removes the record, so the tracker's own
// bookkeeping does not wedge on a single misbehaving application. An
// unknown handle, or an application free (internal == false) of
// swapchain-owned memory, is reported and leaves the table unchanged.
func (t *Tracker) FreeMemory(memory registry.Handle, internal bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freeMemoryLocked(memory, internal)
}

func (t *Tracker) freeMemoryLocked(memory registry.Handle, internal bool) bool {
	const site = "free_memory"
	m, ok := t.memory.Get(memory)
	if !ok {
		t.emit(errorSev, codeInvalidMemObj, site, memory, "double free or never-allocated memory handle")
		return false
	}
	if m.Desc.Size == 0 && !internal {
		t.emit(errorSev, codeInvalidMemObj, site, memory, "swapchain-owned memory must not be freed by the application")
		return false
	}

	// Opportunistic GC: drop edges from command buffers that have
	// since retired, per spec.md §4.5 step 3.
	for cb := range m.RefCommandBuffers {
		cbRec, ok := t.cbs.Get(cb)
		if !ok {
			continue
		}
		if t.isRetiredLocked(cbRec) {
			t.clearReferencesLocked(cb, cbRec)
		}
	}

	ok = true
	if m.RefCount != 0 {
		for obj := range m.BoundObjects {
			t.emit(errorSev, codeFreedMemRef, site, memory, "memory still bound by object "+handleName(obj))
		}
		for cb := range m.RefCommandBuffers {
			t.emit(errorSev, codeFreedMemRef, site, memory, "memory still referenced by command buffer "+handleName(cb))
		}
		// Recovery path: forcibly clear the dangling edges so
		// subsequent operations observe a consistent state.
		for obj := range m.BoundObjects {
			if objRec, found := t.objects.Get(obj); found {
				objRec.Memory = 0
			}
		}
		clear(m.BoundObjects)
		for cb := range m.RefCommandBuffers {
			if cbRec, found := t.cbs.Get(cb); found {
				delete(cbRec.Refs, memory)
			}
		}
		clear(m.RefCommandBuffers)
		m.RefCount = 0
		ok = false
	}

	t.memory.Delete(memory)
	return ok
}
