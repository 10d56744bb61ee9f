// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package sim

import (
	"github.com/kjhaus/memtrack/registry"
	"github.com/kjhaus/memtrack/track"
)

// CreateBuffer records h as a live buffer.
func (d *Driver) CreateBuffer(h registry.Handle, desc track.BufferDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// CreateImage records h as a live image.
func (d *Driver) CreateImage(h registry.Handle, desc track.ImageDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// CreateView records h as a live view.
func (d *Driver) CreateView(h registry.Handle, desc track.ViewDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// CreatePipeline records h as a live pipeline.
func (d *Driver) CreatePipeline(h registry.Handle, desc track.PipelineDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// CreateSampler records h as a live sampler.
func (d *Driver) CreateSampler(h registry.Handle, desc track.SamplerDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// CreateFence records h as a live fence with the given initial
// signalled state.
func (d *Driver) CreateFence(h registry.Handle, signalled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	d.fenceSig[h] = signalled
	return nil
}

// CreateEvent records h as a live event.
func (d *Driver) CreateEvent(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// CreateQueryPool records h as a live query pool.
func (d *Driver) CreateQueryPool(h registry.Handle, desc track.QueryPoolDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// DestroyObject releases the backing-store slot for h.
func (d *Driver) DestroyObject(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.releaseSlot(h)
	delete(d.fenceSig, h)
	return nil
}

// BindBufferMemory is a no-op: Non-goals rule out replicating memory
// contents, so the fake driver has nothing to bind.
func (d *Driver) BindBufferMemory(buffer, memory registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// BindImageMemory is a no-op for the same reason as BindBufferMemory.
func (d *Driver) BindImageMemory(image, memory registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// BindSparseBufferMemory is a no-op for the same reason as
// BindBufferMemory.
func (d *Driver) BindSparseBufferMemory(buffer, memory registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}
