// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package sim

import (
	"errors"

	"github.com/kjhaus/memtrack/registry"
)

// errNotReady mirrors VK_NOT_READY/VK_TIMEOUT: the driver has not
// finished the work, so the tracker must not advance retirement.
var errNotReady = errors.New("sim: not ready")

// CreateSwapchain records h as a live swapchain.
func (d *Driver) CreateSwapchain(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// AcquireNextImage is a no-op beyond the lost-device check: the
// swapchain image handle was already minted by the tracker.
func (d *Driver) AcquireNextImage(swapchain, image registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// DestroySwapchain releases the backing-store slot for h.
func (d *Driver) DestroySwapchain(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.releaseSlot(h)
	return nil
}
