// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package layer

import (
	"fmt"

	"github.com/kjhaus/memtrack/registry"
	"github.com/kjhaus/memtrack/track"
)

// buildTable wires the typed methods in entrypoints.go listed below
// into the generic, name-resolved dispatch table described in spec.md
// §6, mirroring the upstream half of a real Vulkan loader chain: each
// named entry point accepts its arguments as a generic []any and
// returns a generic (any, error), the way PFN_vkVoidFunction is cast
// back to a concrete signature at the call site. CreateView,
// CreatePipeline, CreateSampler, CreateEvent, CreateQueryPool,
// BindSparseBufferMemory, CreateQueue and CmdReferenceObject have no
// table entry and are reachable only as methods.
func (l *Layer) buildTable() {
	l.table = map[string]EntryPoint{
		"vkAllocateMemory": func(args ...any) (any, error) {
			return l.AllocateMemory(args[0].(track.AllocDesc))
		},
		"vkFreeMemory": func(args ...any) (any, error) {
			return nil, l.FreeMemory(args[0].(registry.Handle))
		},
		"vkCreateBuffer": func(args ...any) (any, error) {
			return l.CreateBuffer(args[0].(track.BufferDesc))
		},
		"vkCreateImage": func(args ...any) (any, error) {
			return l.CreateImage(args[0].(track.ImageDesc))
		},
		"vkCreateFence": func(args ...any) (any, error) {
			return l.CreateFence(args[0].(bool))
		},
		"vkDestroyObject": func(args ...any) (any, error) {
			return nil, l.DestroyObject(args[0].(registry.Handle))
		},
		"vkCreateCommandBuffer": func(args ...any) (any, error) {
			return l.CreateCommandBuffer()
		},
		"vkBeginCommandBuffer": func(args ...any) (any, error) {
			return nil, l.BeginCommandBuffer(args[0].(registry.Handle))
		},
		"vkResetCommandBuffer": func(args ...any) (any, error) {
			return nil, l.ResetCommandBuffer(args[0].(registry.Handle))
		},
		"vkDestroyCommandBuffer": func(args ...any) (any, error) {
			return nil, l.DestroyCommandBuffer(args[0].(registry.Handle))
		},
		"vkBindBufferMemory": func(args ...any) (any, error) {
			return nil, l.BindBufferMemory(args[0].(registry.Handle), args[1].(registry.Handle))
		},
		"vkBindImageMemory": func(args ...any) (any, error) {
			return nil, l.BindImageMemory(args[0].(registry.Handle), args[1].(registry.Handle))
		},
		"vkQueueSubmit": func(args ...any) (any, error) {
			return l.QueueSubmit(args[0].(registry.Handle), args[1].([]registry.Handle), args[2].(registry.Handle))
		},
		"vkQueueWaitIdle": func(args ...any) (any, error) {
			return nil, l.QueueWaitIdle(args[0].(registry.Handle))
		},
		"vkDeviceWaitIdle": func(args ...any) (any, error) {
			return nil, l.DeviceWaitIdle()
		},
		"vkGetFenceStatus": func(args ...any) (any, error) {
			return nil, l.GetFenceStatus(args[0].(registry.Handle))
		},
		"vkWaitForFences": func(args ...any) (any, error) {
			return nil, l.WaitForFences(args[0].([]registry.Handle), args[1].(bool))
		},
		"vkResetFences": func(args ...any) (any, error) {
			return nil, l.ResetFences(args[0].([]registry.Handle))
		},
		"vkCreateSwapchainKHR": func(args ...any) (any, error) {
			return l.CreateSwapchain()
		},
		"vkAcquireNextImageKHR": func(args ...any) (any, error) {
			return l.AcquireNextImage(args[0].(registry.Handle))
		},
		"vkDestroySwapchainKHR": func(args ...any) (any, error) {
			return nil, l.DestroySwapchain(args[0].(registry.Handle))
		},
	}
}

// String renders an ExtensionProperties entry the way the layer
// enumeration query's output would be printed.
func (e ExtensionProperties) String() string {
	return fmt.Sprintf("%s v%d", e.Name, e.Version)
}
