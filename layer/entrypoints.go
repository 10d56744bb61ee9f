// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package layer

import (
	"github.com/kjhaus/memtrack/registry"
	"github.com/kjhaus/memtrack/track"
)

// AllocateMemory records a new allocation and forwards it downstream.
func (l *Layer) AllocateMemory(desc track.AllocDesc) (registry.Handle, error) {
	h := l.tracker.AllocMemory(desc)
	err := l.next.AllocateMemory(h, desc)
	return h, err
}

// FreeMemory implements spec.md §4.5's free_memory with internal=false
// (an application-initiated free).
func (l *Layer) FreeMemory(memory registry.Handle) error {
	l.tracker.FreeMemory(memory, false)
	return l.next.FreeMemory(memory)
}

// CreateBuffer records a new buffer object and forwards it downstream.
func (l *Layer) CreateBuffer(desc track.BufferDesc) (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindBuffer, desc)
	return h, l.next.CreateBuffer(h, desc)
}

// CreateImage records a new image object and forwards it downstream.
func (l *Layer) CreateImage(desc track.ImageDesc) (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindImage, desc)
	return h, l.next.CreateImage(h, desc)
}

// CreateView records a new buffer/image view object and forwards it
// downstream.
func (l *Layer) CreateView(desc track.ViewDesc) (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindView, desc)
	return h, l.next.CreateView(h, desc)
}

// CreatePipeline records a new pipeline object and forwards it
// downstream.
func (l *Layer) CreatePipeline(desc track.PipelineDesc) (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindPipeline, desc)
	return h, l.next.CreatePipeline(h, desc)
}

// CreateSampler records a new sampler object and forwards it
// downstream.
func (l *Layer) CreateSampler(desc track.SamplerDesc) (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindSampler, desc)
	return h, l.next.CreateSampler(h, desc)
}

// CreateFence records a new fence object and forwards it downstream.
func (l *Layer) CreateFence(signalled bool) (registry.Handle, error) {
	h := l.tracker.CreateFence(signalled)
	return h, l.next.CreateFence(h, signalled)
}

// CreateEvent records a new event object and forwards it downstream.
func (l *Layer) CreateEvent() (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindEvent, track.EventDesc{})
	return h, l.next.CreateEvent(h)
}

// CreateQueryPool records a new query-pool object and forwards it
// downstream.
func (l *Layer) CreateQueryPool(desc track.QueryPoolDesc) (registry.Handle, error) {
	h := l.tracker.CreateObject(track.KindQueryPool, desc)
	return h, l.next.CreateQueryPool(h, desc)
}

// DestroyObject implements spec.md §4.5's destroy_object for every
// object kind other than command buffers (see DestroyCommandBuffer).
func (l *Layer) DestroyObject(h registry.Handle) error {
	l.tracker.DestroyObject(h)
	return l.next.DestroyObject(h)
}

// CreateCommandBuffer records a new command buffer and forwards it
// downstream.
func (l *Layer) CreateCommandBuffer() (registry.Handle, error) {
	h := l.tracker.CreateCommandBuffer()
	return h, l.next.CreateCommandBuffer(h)
}

// BeginCommandBuffer implements spec.md §4.6: begin implicitly resets.
// The call still forwards downstream even when the tracker flags the
// buffer as in flight, per spec.md §4.6's "the tracker still clears
// the references afterwards on the assumption the underlying call will
// proceed".
func (l *Layer) BeginCommandBuffer(cb registry.Handle) error {
	l.tracker.BeginCommandBuffer(cb)
	return l.next.BeginCommandBuffer(cb)
}

// ResetCommandBuffer implements the explicit reset path.
func (l *Layer) ResetCommandBuffer(cb registry.Handle) error {
	l.tracker.ResetCommandBuffer(cb)
	return l.next.ResetCommandBuffer(cb)
}

// DestroyCommandBuffer implements the command-buffer branch of
// spec.md §4.5's destroy_object.
func (l *Layer) DestroyCommandBuffer(cb registry.Handle) error {
	l.tracker.DestroyCommandBuffer(cb)
	return l.next.DestroyCommandBuffer(cb)
}

// BindBufferMemory implements spec.md §4.2's bind_object_memory for a
// buffer object.
func (l *Layer) BindBufferMemory(buffer, memory registry.Handle) error {
	l.tracker.BindObjectMemory(buffer, memory)
	return l.next.BindBufferMemory(buffer, memory)
}

// BindImageMemory implements spec.md §4.2's bind_object_memory for an
// image object.
func (l *Layer) BindImageMemory(image, memory registry.Handle) error {
	l.tracker.BindObjectMemory(image, memory)
	return l.next.BindImageMemory(image, memory)
}

// BindSparseBufferMemory implements spec.md §4.2's
// bind_sparse_buffer_memory.
func (l *Layer) BindSparseBufferMemory(buffer, memory registry.Handle) error {
	l.tracker.BindSparseBufferMemory(buffer, memory)
	return l.next.BindSparseBufferMemory(buffer, memory)
}

// CreateQueue records a new queue and forwards it downstream.
func (l *Layer) CreateQueue() (registry.Handle, error) {
	h := l.tracker.CreateQueue()
	return h, l.next.CreateQueue(h)
}

// QueueSubmit implements spec.md §4.4's submission model and forwards
// downstream regardless of the validation outcome (result codes are
// forwarded unchanged, per spec.md §7).
func (l *Layer) QueueSubmit(queue registry.Handle, cbs []registry.Handle, fence registry.Handle) (uint64, error) {
	id, _ := l.tracker.QueueSubmit(queue, cbs, fence)
	return id, l.next.QueueSubmit(queue, cbs, fence)
}

// QueueWaitIdle implements spec.md §4.4 rule 2.
func (l *Layer) QueueWaitIdle(queue registry.Handle) error {
	l.tracker.QueueWaitIdle(queue)
	return l.next.QueueWaitIdle(queue)
}

// DeviceWaitIdle implements spec.md §4.4 rule 3.
func (l *Layer) DeviceWaitIdle() error {
	l.tracker.DeviceWaitIdle()
	return l.next.DeviceWaitIdle()
}

// GetFenceStatus implements spec.md §4.4 rule 1 on a successful
// driver query; retirement only advances when err is nil.
func (l *Layer) GetFenceStatus(fence registry.Handle) error {
	err := l.next.GetFenceStatus(fence)
	if err == nil {
		l.tracker.FenceStatus(fence)
	}
	return err
}

// WaitForFences implements spec.md §4.4 rule 4; retirement only
// advances on a successful wait.
func (l *Layer) WaitForFences(fences []registry.Handle, waitAll bool) error {
	err := l.next.WaitForFences(fences, waitAll)
	if err == nil {
		l.tracker.WaitForFences(fences, waitAll)
	}
	return err
}

// ResetFences implements spec.md §7's one exception: an unsignalled
// fence in the reset set short-circuits the call with ErrInvalidValue
// instead of forwarding to the driver.
func (l *Layer) ResetFences(fences []registry.Handle) error {
	if !l.tracker.ResetFences(fences) {
		return ErrInvalidValue
	}
	return l.next.ResetFences(fences)
}

// CreateSwapchain records a new swapchain and forwards it downstream.
func (l *Layer) CreateSwapchain() (registry.Handle, error) {
	h := l.tracker.CreateSwapchain()
	return h, l.next.CreateSwapchain(h)
}

// AcquireNextImage implements spec.md §3's implicit swapchain-memory
// allocation on image retrieval.
func (l *Layer) AcquireNextImage(swapchain registry.Handle) (registry.Handle, error) {
	image := l.tracker.CreateObject(track.KindImage, track.ImageDesc{})
	l.tracker.RetrieveSwapchainImage(swapchain, image)
	return image, l.next.AcquireNextImage(swapchain, image)
}

// DestroySwapchain implements spec.md §3's implicit swapchain-memory
// free on swapchain destruction.
func (l *Layer) DestroySwapchain(swapchain registry.Handle) error {
	l.tracker.DestroySwapchain(swapchain)
	return l.next.DestroySwapchain(swapchain)
}

// CmdReferenceObject records that a command recorded into cb touches
// object, resolving its bound memory via spec.md §4.3's reference
// operation. It stands in for the dozens of vkCmd* entry points that
// each bookkeep one such edge (spec.md §1's out-of-scope wrappers),
// giving the tracker's reference-tracking a single realistic call
// site instead of reimplementing every command.
func (l *Layer) CmdReferenceObject(cb, object registry.Handle) {
	l.tracker.ReferenceObject(cb, object)
}
