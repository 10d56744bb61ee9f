// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import "github.com/kjhaus/memtrack/registry"

// CreateObject creates an object record of the given kind holding
// desc, stamping the object-name supplement described in SPEC_FULL.md
// §4. Buffers, images, views, pipelines, samplers, events, query pools
// and dynamic-state objects are all created through this single path;
// fences go through CreateFence, which forwards here.
func (t *Tracker) CreateObject(kind ObjectKind, desc Descriptor) registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createObjectLocked(kind, desc)
}

func (t *Tracker) createObjectLocked(kind ObjectKind, desc Descriptor) registry.Handle {
	h := t.objects.Create(Object{Kind: kind, Desc: desc})
	if rec, ok := t.objects.Get(h); ok {
		rec.Name = objectName(kind, h)
	}
	return h
}

// DestroyObject implements spec.md §4.5's destroy_object, dispatching
// on the object's kind: a fence drops its fence-tracker entry; any
// object with a memory binding has that binding cleared, triggering an
// internal free of swapchain-owned (zero-size) memory per spec.md §9's
// preserved clear-binding/free-memory/erase-object ordering.
func (t *Tracker) DestroyObject(h registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "destroy_object"

	objRec, ok := t.objects.Get(h)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, h, "destroying an unknown object")
		return false
	}

	if objRec.Kind == KindFence {
		delete(t.fences, h)
	}

	if objRec.Memory != 0 {
		memRec, found := t.memory.Get(objRec.Memory)
		swapchainOwned := found && memRec.Desc.Size == 0
		mem := objRec.Memory
		t.clearBindingLocked(h, objRec)
		if swapchainOwned {
			t.freeMemoryLocked(mem, true)
		}
	}

	t.objects.Delete(h)
	return true
}

// DestroyCommandBuffer implements the command-buffer branch of
// spec.md §4.5's destroy_object: clear its references, then remove.
func (t *Tracker) DestroyCommandBuffer(cb registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cbRec, ok := t.cbs.Get(cb)
	if !ok {
		t.emit(errorSev, codeInvalidCB, "destroy_object", cb, "destroying an unknown command buffer")
		return false
	}
	t.destroyCommandBufferLocked(cb, cbRec)
	return true
}
