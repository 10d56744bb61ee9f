// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package sim

import "github.com/kjhaus/memtrack/registry"

// CreateCommandBuffer records h as a live command buffer.
func (d *Driver) CreateCommandBuffer(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// BeginCommandBuffer is a no-op beyond the lost-device check: Non-goals
// rule out simulating GPU execution, so there is no recorded-command
// state for the fake driver to reset.
func (d *Driver) BeginCommandBuffer(cb registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// ResetCommandBuffer is a no-op for the same reason as
// BeginCommandBuffer.
func (d *Driver) ResetCommandBuffer(cb registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// DestroyCommandBuffer releases the backing-store slot for cb.
func (d *Driver) DestroyCommandBuffer(cb registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.releaseSlot(cb)
	return nil
}
