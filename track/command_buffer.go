// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import "github.com/kjhaus/memtrack/registry"

// CommandBuffer is the per-command-buffer record described in
// spec.md §3: the set of MemoryObjects it references, and the
// fence id, queue and fence handle assigned at its most recent
// submission.
type CommandBuffer struct {
	Refs    map[registry.Handle]struct{} // memory handles
	FenceID uint64                       // 0 until first submission
	Queue   registry.Handle
	Fence   registry.Handle
}

func newCommandBuffer() CommandBuffer {
	return CommandBuffer{Refs: make(map[registry.Handle]struct{})}
}

// CreateCommandBuffer creates a command-buffer record in the
// RECORDING-ALLOWED state (spec.md §4.6).
func (t *Tracker) CreateCommandBuffer() registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cbs.Create(newCommandBuffer())
}

// ReferenceObject implements spec.md §4.3's reference(commandBuffer,
// memory): it resolves object's bound memory via its binding edge and
// records a deduplicated commandBuffer<->memory edge.
func (t *Tracker) ReferenceObject(cb, object registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "reference"

	cbRec, ok := t.cbs.Get(cb)
	if !ok {
		t.emit(errorSev, codeInvalidCB, site, cb, "stale or destroyed command buffer")
		return false
	}
	objRec, ok := t.objects.Get(object)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, object, "unknown object handle")
		return false
	}
	if objRec.Memory == 0 {
		t.emit(errorSev, codeMissingMemBindings, site, object, "command recorded using an unbound object")
		return false
	}
	memRec, ok := t.memory.Get(objRec.Memory)
	if !ok {
		t.emit(errorSev, codeInvalidMemObj, site, objRec.Memory, "stale or freed memory bound to referenced object")
		return false
	}
	if _, already := cbRec.Refs[objRec.Memory]; !already {
		cbRec.Refs[objRec.Memory] = struct{}{}
		memRec.RefCommandBuffers[cb] = struct{}{}
		memRec.RefCount++
	}
	return true
}

// ClearReferences implements spec.md §4.3's clear_references: it drops
// every commandBuffer<->memory edge recorded by cb. Runs on buffer
// reset, on buffer begin (which implicitly resets), and when freeing
// memory whose referencing buffers have all retired.
func (t *Tracker) ClearReferences(cb registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cbRec, ok := t.cbs.Get(cb)
	if !ok {
		t.emit(errorSev, codeInvalidCB, "clear_references", cb, "stale or destroyed command buffer")
		return false
	}
	t.clearReferencesLocked(cb, cbRec)
	return true
}

// clearReferencesLocked assumes t.mu is held.
func (t *Tracker) clearReferencesLocked(cb registry.Handle, cbRec *CommandBuffer) {
	for mh := range cbRec.Refs {
		if m, ok := t.memory.Get(mh); ok {
			delete(m.RefCommandBuffers, cb)
			m.RefCount--
		}
	}
	clear(cbRec.Refs)
}

// BeginCommandBuffer implements spec.md §4.6: begin implicitly resets
// the buffer. A begin on an in-flight buffer emits
// RESET_CB_WHILE_IN_FLIGHT, but the references are cleared regardless,
// on the assumption the underlying driver call proceeds (spec.md §8
// scenario 6).
func (t *Tracker) BeginCommandBuffer(cb registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resetLocked(cb, "begin_command_buffer")
}

// ResetCommandBuffer implements the explicit vkResetCommandBuffer path,
// subject to the same in-flight check as begin.
func (t *Tracker) ResetCommandBuffer(cb registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resetLocked(cb, "reset_command_buffer")
}

func (t *Tracker) resetLocked(cb registry.Handle, site string) bool {
	cbRec, ok := t.cbs.Get(cb)
	if !ok {
		t.emit(errorSev, codeInvalidCB, site, cb, "stale or destroyed command buffer")
		return false
	}
	ok = true
	if cbRec.FenceID != 0 && !t.isRetiredLocked(cbRec) {
		t.emit(errorSev, codeResetCBWhileInFlight, site, cb, "begin/reset on an unretired command buffer")
		ok = false
	}
	t.clearReferencesLocked(cb, cbRec)
	return ok
}

// isRetiredLocked reports whether cb's last submission has retired.
// Assumes t.mu is held. A buffer that was never submitted is
// considered retired (nothing in flight to wait for).
func (t *Tracker) isRetiredLocked(cb *CommandBuffer) bool {
	if cb.FenceID == 0 {
		return true
	}
	q, ok := t.queues.Get(cb.Queue)
	if !ok {
		return true
	}
	return cb.FenceID <= q.LastRetiredId
}

// destroyCommandBufferLocked implements the command-buffer branch of
// spec.md §4.5's destroy_object: clear its references, then remove the
// record. Assumes t.mu is held.
func (t *Tracker) destroyCommandBufferLocked(cb registry.Handle, cbRec *CommandBuffer) {
	t.clearReferencesLocked(cb, cbRec)
	t.cbs.Delete(cb)
}
