// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kjhaus/memtrack/diag"
	"github.com/kjhaus/memtrack/registry"
)

// TestScenarioLeakAtTeardown implements spec.md §8 scenario 1.
func TestScenarioLeakAtTeardown(t *testing.T) {
	tr := newTestTracker()
	m := tr.AllocMemory(AllocDesc{Size: 1024})
	require.Equal(t, 1, tr.LiveMemoryCount())

	tr.DestroyDevice()

	require.Equal(t, 1, tr.DiagnosticCount(diag.MemoryLeak))
	require.Equal(t, 0, tr.LiveMemoryCount())
	_, ok := tr.memory.Get(m)
	require.False(t, ok)
}

// TestScenarioDoubleFree implements spec.md §8 scenario 2.
func TestScenarioDoubleFree(t *testing.T) {
	tr := newTestTracker()
	m := tr.AllocMemory(AllocDesc{Size: 1024})

	require.True(t, tr.FreeMemory(m, false))
	require.Equal(t, 0, tr.DiagnosticCount(diag.InvalidMemObj))

	require.False(t, tr.FreeMemory(m, false))
	require.Equal(t, 1, tr.DiagnosticCount(diag.InvalidMemObj))
}

// TestScenarioFreeWithLiveBinding implements spec.md §8 scenario 3.
func TestScenarioFreeWithLiveBinding(t *testing.T) {
	tr := newTestTracker()
	m := tr.AllocMemory(AllocDesc{Size: 1024})
	b := tr.CreateObject(KindBuffer, BufferDesc{Size: 1024})
	require.True(t, tr.BindObjectMemory(b, m))

	ok := tr.FreeMemory(m, false)
	require.False(t, ok, "free with a live binding must report failure")
	require.Equal(t, 1, tr.DiagnosticCount(diag.FreedMemRef))

	_, stillThere := tr.memory.Get(m)
	require.False(t, stillThere, "memory record is removed anyway")

	bRec, _ := tr.objects.Get(b)
	require.Equal(t, registry.Handle(0), bRec.Memory, "dangling edge is force-cleared")
}

// TestScenarioRebind implements spec.md §8 scenario 4.
func TestScenarioRebind(t *testing.T) {
	tr := newTestTracker()
	m1 := tr.AllocMemory(AllocDesc{Size: 1024})
	m2 := tr.AllocMemory(AllocDesc{Size: 1024})
	i := tr.CreateObject(KindImage, ImageDesc{Width: 8, Height: 8})

	require.True(t, tr.BindObjectMemory(i, m1))
	require.False(t, tr.BindObjectMemory(i, m2))
	require.Equal(t, 1, tr.DiagnosticCount(diag.RebindObject))

	iRec, _ := tr.objects.Get(i)
	require.Equal(t, m1, iRec.Memory, "edge to M1 remains in place")
}

// TestScenarioSignalledFenceSubmitted implements spec.md §8 scenario 5.
func TestScenarioSignalledFenceSubmitted(t *testing.T) {
	tr := newTestTracker()
	f := tr.CreateFence(true)
	q := tr.CreateQueue()
	cb := tr.CreateCommandBuffer()

	id, ok := tr.QueueSubmit(q, []registry.Handle{cb}, f)
	require.False(t, ok)
	require.Equal(t, 1, tr.DiagnosticCount(diag.InvalidFenceState))
	require.NotZero(t, id, "fence id is still assigned")

	qRec, _ := tr.queues.Get(q)
	require.Equal(t, id, qRec.LastSubmittedId, "queue's LastSubmittedId still advances")
}

// TestScenarioResetWhileInFlight implements spec.md §8 scenario 6.
func TestScenarioResetWhileInFlight(t *testing.T) {
	tr := newTestTracker()
	m := tr.AllocMemory(AllocDesc{Size: 1024})
	b := tr.CreateObject(KindBuffer, BufferDesc{Size: 1024})
	require.True(t, tr.BindObjectMemory(b, m))

	q := tr.CreateQueue()
	cb := tr.CreateCommandBuffer()
	require.True(t, tr.ReferenceObject(cb, b))

	memRec, _ := tr.memory.Get(m)
	before := memRec.RefCount

	f := tr.CreateFence(false)
	tr.QueueSubmit(q, []registry.Handle{cb}, f)

	// No wait: the buffer is still in flight.
	ok := tr.BeginCommandBuffer(cb)
	require.False(t, ok)
	require.Equal(t, 1, tr.DiagnosticCount(diag.ResetCBWhileInFlight))

	cbRec, _ := tr.cbs.Get(cb)
	require.Empty(t, cbRec.Refs, "reference set is empty after the begin")
	require.Equal(t, before-1, memRec.RefCount, "M.refCount decreased by one")
}

// TestP8DiagnosticEmission spot-checks that a representative subset of
// spec.md §4.7's diagnostic codes fire under their documented
// precondition and nothing else.
func TestP8DiagnosticEmission(t *testing.T) {
	tr := newTestTracker()

	require.True(t, tr.BindObjectMemory(1234, 0)) // binding to null memory: warning, succeeds
	require.False(t, tr.BindObjectMemory(1234, 5678))
	require.Equal(t, 1, tr.DiagnosticCount(diag.InvalidObject))

	cb := tr.CreateCommandBuffer()
	ok := tr.ClearObjectBinding(9999)
	require.False(t, ok)
	require.Equal(t, 2, tr.DiagnosticCount(diag.InvalidObject))

	b := tr.CreateObject(KindBuffer, BufferDesc{Size: 8})
	require.False(t, tr.ReferenceObject(cb, b))
	require.Equal(t, 1, tr.DiagnosticCount(diag.MissingMemBindings))

	require.False(t, tr.ClearObjectBinding(b))
	require.Equal(t, 1, tr.DiagnosticCount(diag.MemObjClearEmptyBindings))
}
