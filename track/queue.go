// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import "github.com/kjhaus/memtrack/registry"

// Queue is the per-queue record described in spec.md §3: two monotonic
// 64-bit counters, with LastRetiredId <= LastSubmittedId always
// (invariant P5).
type Queue struct {
	LastSubmittedId uint64
	LastRetiredId   uint64
}

// CreateQueue creates a queue record. Queues exist for the lifetime of
// the device, per spec.md §3's Lifecycles.
func (t *Tracker) CreateQueue() registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queues.Create(Queue{})
}

// CreateFence creates a fence object with the given initial signalled
// state, per spec.md §4.4's fence state machine. It is not yet entered
// into the fence tracker: that happens on first submission.
func (t *Tracker) CreateFence(signalled bool) registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createObjectLocked(KindFence, FenceDesc{Signalled: signalled})
}

// QueueSubmit implements spec.md §4.4's submission model: a single
// process-wide counter assigns the next fence id, even when fence is
// null, stamping it onto every command buffer in the submission and
// advancing the queue's LastSubmittedId. Submitting an already-
// signalled fence is a violation that is reported but still proceeds
// (spec.md §8 scenario 5).
func (t *Tracker) QueueSubmit(queue registry.Handle, cbs []registry.Handle, fence registry.Handle) (id uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "queue_submit"

	qRec, found := t.queues.Get(queue)
	if !found {
		t.emit(errorSev, codeInternalError, site, queue, "submission on an unknown queue")
		return 0, false
	}

	ok = true
	var fenceRec *Object
	if fence != 0 {
		var present bool
		fenceRec, present = t.objects.Get(fence)
		if !present {
			t.emit(errorSev, codeInvalidObject, site, fence, "submission with an unknown fence")
			fenceRec = nil
		} else if fd, isFence := fenceRec.Desc.(FenceDesc); isFence && fd.Signalled {
			t.emit(errorSev, codeInvalidFenceState, site, fence, "submitting an already-signalled fence")
			ok = false
		}
	}

	id = t.nextFenceID
	t.nextFenceID++
	qRec.LastSubmittedId = id

	if fenceRec != nil {
		t.fences[fence] = fenceTrack{Queue: queue, ID: id}
	}
	for _, cb := range cbs {
		cbRec, found := t.cbs.Get(cb)
		if !found {
			t.emit(errorSev, codeInvalidCB, site, cb, "submission of an unknown command buffer")
			continue
		}
		cbRec.FenceID = id
		cbRec.Queue = queue
		cbRec.Fence = fence
	}
	return id, ok
}

// advanceRetirementLocked raises queue.LastRetiredId to id if id is
// greater, implementing the monotonicity invariant P6. Assumes t.mu
// held.
func advanceRetirementLocked(q *Queue, id uint64) {
	if id > q.LastRetiredId {
		q.LastRetiredId = id
	}
}

// signalFenceLocked marks fence as SIGNALLED and advances its queue's
// retirement watermark, implementing spec.md §4.4 rule 1. Assumes t.mu
// held.
func (t *Tracker) signalFenceLocked(fence registry.Handle) bool {
	if objRec, ok := t.objects.Get(fence); ok {
		if fd, isFence := objRec.Desc.(FenceDesc); isFence {
			fd.Signalled = true
			objRec.Desc = fd
		}
	}
	ft, ok := t.fences[fence]
	if !ok {
		return false
	}
	if q, ok := t.queues.Get(ft.Queue); ok {
		advanceRetirementLocked(q, ft.ID)
	}
	return true
}

// FenceStatus implements a successful fence-query (vkGetFenceStatus
// returning VK_SUCCESS): rule 1 of spec.md §4.4.
func (t *Tracker) FenceStatus(fence registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.signalFenceLocked(fence)
}

// WaitForFence implements a successful single-fence wait: also rule 1,
// but additionally warns if the fence was already signalled, per
// spec.md §4.4's fence state machine.
func (t *Tracker) WaitForFence(fence registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.warnIfAlreadySignalledLocked(fence, "wait_for_fences")
	return t.signalFenceLocked(fence)
}

// WaitForFences implements spec.md §4.4 rule 4: with waitAll true, or a
// single fence, every fence advances. With waitAll false and more than
// one fence, nothing advances — the tracker cannot tell which fence
// signalled first (spec.md §9's preserved pessimistic Open Question).
func (t *Tracker) WaitForFences(fences []registry.Handle, waitAll bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !waitAll && len(fences) > 1 {
		return true
	}
	ok := true
	for _, f := range fences {
		t.warnIfAlreadySignalledLocked(f, "wait_for_fences")
		if !t.signalFenceLocked(f) {
			ok = false
		}
	}
	return ok
}

func (t *Tracker) warnIfAlreadySignalledLocked(fence registry.Handle, site string) {
	if objRec, ok := t.objects.Get(fence); ok {
		if fd, isFence := objRec.Desc.(FenceDesc); isFence && fd.Signalled {
			t.emit(warningSev, codeInvalidFenceState, site, fence, "waiting on an already-signalled fence")
		}
	}
}

// ResetFences implements spec.md §4.4's reset rule: reset requires
// SIGNALLED; resetting an UNSIGNALLED fence is rejected. Per spec.md
// §7, this is the one place an API result code deviates from a
// pass-through: the caller (package layer) must surface an
// invalid-value result instead of forwarding to the driver when ok is
// false.
func (t *Tracker) ResetFences(fences []registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "reset_fences"
	ok := true
	for _, f := range fences {
		objRec, found := t.objects.Get(f)
		if !found {
			t.emit(errorSev, codeInvalidObject, site, f, "resetting an unknown fence")
			ok = false
			continue
		}
		fd, isFence := objRec.Desc.(FenceDesc)
		if !isFence || !fd.Signalled {
			t.emit(errorSev, codeInvalidFenceState, site, f, "resetting an unsignalled fence")
			ok = false
			continue
		}
		fd.Signalled = false
		objRec.Desc = fd
	}
	return ok
}

// QueueWaitIdle implements spec.md §4.4 rule 2.
func (t *Tracker) QueueWaitIdle(queue registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.queues.Get(queue)
	if !ok {
		return false
	}
	q.LastRetiredId = q.LastSubmittedId
	return true
}

// DeviceWaitIdle implements spec.md §4.4 rule 3, applied to every
// queue. Calling it twice in a row is idempotent (P7): the second call
// finds every queue already at its own watermark.
func (t *Tracker) DeviceWaitIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, q := range t.queues.All() {
		q.LastRetiredId = q.LastSubmittedId
	}
}
