// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import (
	"testing"

	"github.com/kjhaus/memtrack/diag"
	"github.com/kjhaus/memtrack/registry"
)

func newTestTracker() *Tracker {
	return New(diag.New(nil, diag.Info, diag.ActionLogFile))
}

// checkP1 verifies invariant P1: refCount == |boundObjects| +
// |referencingBuffers|, for every live memory object.
func checkP1(t *testing.T, tr *Tracker) {
	t.Helper()
	for h, m := range tr.memory.All() {
		want := len(m.BoundObjects) + len(m.RefCommandBuffers)
		if m.RefCount != want {
			t.Errorf("memory %v: RefCount\nhave %d\nwant %d", h, m.RefCount, want)
		}
	}
}

// checkP2 verifies invariant P2: object<->memory edge symmetry.
func checkP2(t *testing.T, tr *Tracker) {
	t.Helper()
	for h, o := range tr.objects.All() {
		if o.Memory == 0 {
			continue
		}
		m, ok := tr.memory.Get(o.Memory)
		if !ok {
			t.Errorf("object %v: edge to missing memory %v", h, o.Memory)
			continue
		}
		if _, found := m.BoundObjects[h]; !found {
			t.Errorf("object %v: edge to %v not reflected in memory's bound set", h, o.Memory)
		}
	}
	for mh, m := range tr.memory.All() {
		for oh := range m.BoundObjects {
			o, ok := tr.objects.Get(oh)
			if !ok || o.Memory != mh {
				t.Errorf("memory %v: bound object %v has no matching edge back", mh, oh)
			}
		}
	}
}

func TestP1RefcountAccuracy(t *testing.T) {
	tr := newTestTracker()
	m := tr.AllocMemory(AllocDesc{Size: 1024})
	b := tr.CreateObject(KindBuffer, BufferDesc{Size: 1024})
	tr.BindObjectMemory(b, m)
	cb := tr.CreateCommandBuffer()
	tr.ReferenceObject(cb, b)
	checkP1(t, tr)

	tr.ClearObjectBinding(b)
	checkP1(t, tr)

	tr.ClearReferences(cb)
	checkP1(t, tr)
}

func TestP2EdgeSymmetryObject(t *testing.T) {
	tr := newTestTracker()
	m1 := tr.AllocMemory(AllocDesc{Size: 1024})
	m2 := tr.AllocMemory(AllocDesc{Size: 1024})
	i := tr.CreateObject(KindImage, ImageDesc{Width: 8, Height: 8})
	tr.BindObjectMemory(i, m1)
	checkP2(t, tr)
	// Rebind must fail and leave the original edge in place.
	if tr.BindObjectMemory(i, m2) {
		t.Fatal("BindObjectMemory: rebind unexpectedly succeeded")
	}
	rec, _ := tr.objects.Get(i)
	if rec.Memory != m1 {
		t.Fatalf("object memory edge after failed rebind:\nhave %v\nwant %v", rec.Memory, m1)
	}
	checkP2(t, tr)
}

func TestP3EdgeSymmetryCommandBuffer(t *testing.T) {
	tr := newTestTracker()
	m := tr.AllocMemory(AllocDesc{Size: 1024})
	b := tr.CreateObject(KindBuffer, BufferDesc{Size: 1024})
	tr.BindObjectMemory(b, m)
	cb := tr.CreateCommandBuffer()
	tr.ReferenceObject(cb, b)

	cbRec, _ := tr.cbs.Get(cb)
	memRec, _ := tr.memory.Get(m)
	if _, ok := cbRec.Refs[m]; !ok {
		t.Fatal("command buffer missing reference edge to memory")
	}
	if _, ok := memRec.RefCommandBuffers[cb]; !ok {
		t.Fatal("memory missing back-reference to command buffer")
	}

	// Calling ReferenceObject again must not double-count (dedup).
	tr.ReferenceObject(cb, b)
	if memRec.RefCount != 2 { // 1 bound object + 1 referencing buffer
		t.Fatalf("RefCount after duplicate reference:\nhave %d\nwant 2", memRec.RefCount)
	}
}

func TestP4MonotonicFenceIDs(t *testing.T) {
	tr := newTestTracker()
	q := tr.CreateQueue()
	var last uint64
	for i := 0; i < 5; i++ {
		cb := tr.CreateCommandBuffer()
		f := tr.CreateFence(false)
		id, _ := tr.QueueSubmit(q, []registry.Handle{cb}, f)
		if id <= last {
			t.Fatalf("fence id not strictly increasing: %d after %d", id, last)
		}
		last = id
	}
}

func TestP5WatermarkOrdering(t *testing.T) {
	tr := newTestTracker()
	q := tr.CreateQueue()
	cb := tr.CreateCommandBuffer()
	f := tr.CreateFence(false)
	tr.QueueSubmit(q, []registry.Handle{cb}, f)

	qRec, _ := tr.queues.Get(q)
	if qRec.LastRetiredId > qRec.LastSubmittedId {
		t.Fatalf("LastRetiredId %d > LastSubmittedId %d", qRec.LastRetiredId, qRec.LastSubmittedId)
	}
	tr.QueueWaitIdle(q)
	if qRec.LastRetiredId > qRec.LastSubmittedId {
		t.Fatalf("LastRetiredId %d > LastSubmittedId %d after wait idle", qRec.LastRetiredId, qRec.LastSubmittedId)
	}
}

func TestP6RetirementMonotonicity(t *testing.T) {
	tr := newTestTracker()
	q := tr.CreateQueue()
	cb1 := tr.CreateCommandBuffer()
	f1 := tr.CreateFence(false)
	tr.QueueSubmit(q, []registry.Handle{cb1}, f1)
	tr.QueueWaitIdle(q)

	qRec, _ := tr.queues.Get(q)
	first := qRec.LastRetiredId

	cb2 := tr.CreateCommandBuffer()
	f2 := tr.CreateFence(false)
	tr.QueueSubmit(q, []registry.Handle{cb2}, f2)
	// No further retirement yet: watermark must not regress.
	if qRec.LastRetiredId < first {
		t.Fatalf("LastRetiredId regressed: %d < %d", qRec.LastRetiredId, first)
	}
	tr.QueueWaitIdle(q)
	if qRec.LastRetiredId < first {
		t.Fatalf("LastRetiredId regressed after second wait idle: %d < %d", qRec.LastRetiredId, first)
	}
}

func TestP7RetirementTriggerIdempotence(t *testing.T) {
	tr := newTestTracker()
	q := tr.CreateQueue()
	cb := tr.CreateCommandBuffer()
	f := tr.CreateFence(false)
	tr.QueueSubmit(q, []registry.Handle{cb}, f)

	tr.QueueWaitIdle(q)
	qRec, _ := tr.queues.Get(q)
	once := qRec.LastRetiredId
	tr.QueueWaitIdle(q)
	if qRec.LastRetiredId != once {
		t.Fatalf("QueueWaitIdle not idempotent:\nhave %d\nwant %d", qRec.LastRetiredId, once)
	}

	tr.DeviceWaitIdle()
	afterOnce := qRec.LastRetiredId
	tr.DeviceWaitIdle()
	if qRec.LastRetiredId != afterOnce {
		t.Fatalf("DeviceWaitIdle not idempotent:\nhave %d\nwant %d", qRec.LastRetiredId, afterOnce)
	}
}
