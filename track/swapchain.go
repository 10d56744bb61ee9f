// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import "github.com/kjhaus/memtrack/registry"

// SwapChainImage pairs one swapchain-owned image with the zero-size
// memory record backing it, per spec.md §3's SwapChain entity and the
// original's MT_SWAP_CHAIN_INFO (SPEC_FULL.md §4 supplement).
type SwapChainImage struct {
	Image  registry.Handle
	Memory registry.Handle
}

// SwapChain owns a vector of (image, memory) pairs representing
// persistent, driver-owned allocations the application must not free
// directly (spec.md §3/§4.5).
type SwapChain struct {
	Images []SwapChainImage
}

// CreateSwapchain creates an empty swapchain record.
func (t *Tracker) CreateSwapchain() registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.swapchains.Create(SwapChain{})
}

// RetrieveSwapchainImage implicitly allocates the zero-size memory
// backing image and binds it, per spec.md §3: "Swapchain-owned memory
// is allocated implicitly on swapchain image retrieval".
func (t *Tracker) RetrieveSwapchainImage(swapchain, image registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "retrieve_swapchain_image"

	scRec, ok := t.swapchains.Get(swapchain)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, swapchain, "unknown swapchain")
		return false
	}
	imgRec, ok := t.objects.Get(image)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, image, "unknown swapchain image")
		return false
	}

	mem := t.allocSwapchainMemory()
	memRec, _ := t.memory.Get(mem)
	t.addBindingLocked(image, imgRec, mem, memRec)
	scRec.Images = append(scRec.Images, SwapChainImage{Image: image, Memory: mem})
	return true
}

// DestroySwapchain frees every swapchain-owned memory allocation and
// removes the swapchain record, per spec.md §3: "freed implicitly on
// swapchain destruction".
func (t *Tracker) DestroySwapchain(swapchain registry.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	const site = "destroy_swapchain"

	scRec, ok := t.swapchains.Get(swapchain)
	if !ok {
		t.emit(errorSev, codeInvalidObject, site, swapchain, "unknown swapchain")
		return false
	}
	for _, pair := range scRec.Images {
		if objRec, found := t.objects.Get(pair.Image); found && objRec.Memory == pair.Memory {
			t.clearBindingLocked(pair.Image, objRec)
		}
		t.freeMemoryLocked(pair.Memory, true)
	}
	t.swapchains.Delete(swapchain)
	return true
}
