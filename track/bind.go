// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import "github.com/kjhaus/memtrack/registry"

// BindObjectMemory implements spec.md §4.2's bind_object_memory.
func (t *Tracker) BindObjectMemory(object, memory registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "bind_object_memory"

	if memory == 0 {
		t.emit(warningSev, codeMemoryBindingError, site, object, "binding object to null memory")
		return true
	}
	objRec, ok := t.objects.Get(object)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, object, "binding an unknown object")
		return false
	}
	memRec, ok := t.memory.Get(memory)
	if !ok {
		t.emit(errorSev, codeInvalidMemObj, site, memory, "binding to unknown memory")
		return false
	}
	if objRec.Memory != 0 {
		t.emit(errorSev, codeRebindObject, site, object, "object already has a memory edge")
		return false
	}
	t.addBindingLocked(object, objRec, memory, memRec)
	return true
}

// BindSparseBufferMemory implements spec.md §4.2's
// bind_sparse_buffer_memory: unlike BindObjectMemory, sparse bindings
// may rebind, clearing any prior edge first.
func (t *Tracker) BindSparseBufferMemory(object, memory registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "bind_sparse_buffer_memory"

	objRec, ok := t.objects.Get(object)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, object, "binding an unknown object")
		return false
	}
	if memory == 0 {
		if objRec.Memory != 0 {
			t.clearBindingLocked(object, objRec)
		}
		return true
	}
	memRec, ok := t.memory.Get(memory)
	if !ok {
		t.emit(errorSev, codeInvalidMemObj, site, memory, "binding to unknown memory")
		return false
	}
	if objRec.Memory != 0 {
		t.emit(infoSev, codeMemoryBindingError, site, object, "sparse rebind: clearing prior memory edge")
		t.clearBindingLocked(object, objRec)
	}
	t.addBindingLocked(object, objRec, memory, memRec)
	return true
}

// ClearObjectBinding implements spec.md §4.2's clear_object_binding.
func (t *Tracker) ClearObjectBinding(object registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "clear_object_binding"

	objRec, ok := t.objects.Get(object)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, object, "clearing binding of an unknown object")
		return false
	}
	if objRec.Memory == 0 {
		t.emit(warningSev, codeMemObjClearEmptyBindings, site, object, "clearing an empty binding")
		return false
	}
	memRec, ok := t.memory.Get(objRec.Memory)
	if !ok {
		// The object claims an edge to memory that no longer exists.
		objRec.Memory = 0
		return false
	}
	if _, found := memRec.BoundObjects[object]; !found {
		t.emit(errorSev, codeInternalError, site, object, "object's memory edge not reflected in memory's bound-object set (invariant 2)")
	}
	t.clearBindingLocked(object, objRec)
	return true
}

// addBindingLocked adds the object<->memory edge and updates the
// reference count. Assumes t.mu is held.
func (t *Tracker) addBindingLocked(object registry.Handle, objRec *Object, memory registry.Handle, memRec *MemoryObject) {
	memRec.BoundObjects[object] = struct{}{}
	memRec.RefCount++
	objRec.Memory = memory
}

// clearBindingLocked removes the object's memory edge. Assumes t.mu is
// held and objRec.Memory != 0.
func (t *Tracker) clearBindingLocked(object registry.Handle, objRec *Object) {
	if memRec, ok := t.memory.Get(objRec.Memory); ok {
		delete(memRec.BoundObjects, object)
		memRec.RefCount--
	}
	objRec.Memory = 0
}
