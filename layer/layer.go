// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package layer gives the tracker a concrete call site: a dispatch
// table standing in for the real Vulkan loader's function-pointer
// chain (spec.md §6), with each intercepted entry point updating the
// tracker and then forwarding to the next layer in the chain. The
// dozens of thin pass-through wrappers that bookkeep only one edge are
// out of scope (spec.md §1); Layer exposes the entry points the core
// tracker operations actually need a caller for.
package layer

import (
	"errors"

	"github.com/kjhaus/memtrack/registry"
	"github.com/kjhaus/memtrack/track"
)

// ErrInvalidValue is returned in place of forwarding to the driver
// when reset_fences is called on an unsignalled fence, per spec.md §7's
// one exception to "result codes are forwarded unchanged".
var ErrInvalidValue = errors.New("layer: invalid value")

// NextLayer is the interface Layer forwards every intercepted call to:
// the next interposer in the chain, or the real driver at the bottom
// of it. It mirrors driver.GPU in the teacher repo, trimmed to the
// entry points the memory-reference tracker observes.
//
// Handles are minted by Layer (via its Tracker) rather than by
// NextLayer: Non-goals rule out simulating GPU execution, so the
// downstream driver is a bookkeeping stub, not a resource allocator —
// every create/bind/submit call below hands the driver the handle the
// tracker already assigned and asks it to record it.
type NextLayer interface {
	AllocateMemory(h registry.Handle, desc track.AllocDesc) error
	FreeMemory(memory registry.Handle) error

	CreateBuffer(h registry.Handle, desc track.BufferDesc) error
	CreateImage(h registry.Handle, desc track.ImageDesc) error
	CreateView(h registry.Handle, desc track.ViewDesc) error
	CreatePipeline(h registry.Handle, desc track.PipelineDesc) error
	CreateSampler(h registry.Handle, desc track.SamplerDesc) error
	CreateFence(h registry.Handle, signalled bool) error
	CreateEvent(h registry.Handle) error
	CreateQueryPool(h registry.Handle, desc track.QueryPoolDesc) error
	DestroyObject(h registry.Handle) error

	CreateCommandBuffer(h registry.Handle) error
	BeginCommandBuffer(cb registry.Handle) error
	ResetCommandBuffer(cb registry.Handle) error
	DestroyCommandBuffer(cb registry.Handle) error

	BindBufferMemory(buffer, memory registry.Handle) error
	BindImageMemory(image, memory registry.Handle) error
	BindSparseBufferMemory(buffer, memory registry.Handle) error

	CreateQueue(h registry.Handle) error
	QueueSubmit(queue registry.Handle, cbs []registry.Handle, fence registry.Handle) error
	QueueWaitIdle(queue registry.Handle) error
	DeviceWaitIdle() error
	GetFenceStatus(fence registry.Handle) error
	WaitForFences(fences []registry.Handle, waitAll bool) error
	ResetFences(fences []registry.Handle) error

	CreateSwapchain(h registry.Handle) error
	AcquireNextImage(swapchain, image registry.Handle) error
	DestroySwapchain(swapchain registry.Handle) error
}

// ExtensionProperties is one entry in the layer-enumeration response
// described in spec.md §6.
type ExtensionProperties struct {
	Name    string
	Version uint32
}

// EntryPoint is the generic function-pointer shape every entry in the
// dispatch table shares, mirroring PFN_vkVoidFunction.
type EntryPoint func(args ...any) (any, error)

// Layer is the validation interposer itself: it owns a track.Tracker
// for bookkeeping and forwards every call to the next layer down the
// chain once its own bookkeeping is done.
type Layer struct {
	tracker *track.Tracker
	next    NextLayer
	table   map[string]EntryPoint
}

// New constructs a Layer wrapping tracker and forwarding to next, and
// builds its GetProcAddress dispatch table.
func New(tracker *track.Tracker, next NextLayer) *Layer {
	l := &Layer{tracker: tracker, next: next}
	l.buildTable()
	return l
}

// GetProcAddress resolves an entry point by name, mirroring the real
// loader's vkGetInstanceProcAddr/vkGetDeviceProcAddr. Entry points this
// layer does not intercept are not present here and ok is false;
// NextLayer has no name-resolved lookup of its own.
func (l *Layer) GetProcAddress(name string) (EntryPoint, bool) {
	ep, ok := l.table[name]
	return ep, ok
}

// Extensions returns the (name, version) pairs this layer advertises
// to the layer-enumeration query, per spec.md §6.
func (l *Layer) Extensions() []ExtensionProperties {
	return []ExtensionProperties{
		{Name: "MemTracker", Version: 1},
		{Name: "Validation", Version: 1},
	}
}

// Tracker returns the underlying tracker, mainly for tests and the
// metrics collector.
func (l *Layer) Tracker() *track.Tracker { return l.tracker }
