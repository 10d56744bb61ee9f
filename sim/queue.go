// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package sim

import "github.com/kjhaus/memtrack/registry"

// CreateQueue records h as a live queue.
func (d *Driver) CreateQueue(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// QueueSubmit is a no-op beyond the lost-device check: spec.md's
// Non-goals rule out simulating GPU execution, so there is no actual
// work to enqueue.
func (d *Driver) QueueSubmit(queue registry.Handle, cbs []registry.Handle, fence registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// QueueWaitIdle is a no-op beyond the lost-device check.
func (d *Driver) QueueWaitIdle(queue registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// DeviceWaitIdle is a no-op beyond the lost-device check.
func (d *Driver) DeviceWaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLost()
}

// GetFenceStatus succeeds only while the fence is signalled: created
// signalled, or marked through SignalFence (the stand-in for the GPU
// actually completing the work) and not reset since.
func (d *Driver) GetFenceStatus(fence registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	if d.fenceSig[fence] {
		return nil
	}
	return errNotReady
}

// WaitForFences succeeds once every fence named is signalled, or
// (waitAll == false) once at least one is.
func (d *Driver) WaitForFences(fences []registry.Handle, waitAll bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	any := false
	all := true
	for _, f := range fences {
		if d.fenceSig[f] {
			any = true
		} else {
			all = false
		}
	}
	if waitAll && !all {
		return errNotReady
	}
	if !waitAll && !any {
		return errNotReady
	}
	return nil
}

// ResetFences clears the signalled bit tracked for each fence,
// mirroring vkResetFences' own precondition check lives in the
// tracker layer rather than here.
func (d *Driver) ResetFences(fences []registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	for _, f := range fences {
		d.fenceSig[f] = false
	}
	return nil
}

// SignalFence marks fence as completed by the simulated GPU, so a
// subsequent GetFenceStatus/WaitForFences call succeeds, standing in
// for actual GPU execution (out of scope per spec.md §1). No test or
// CLI scenario in this repository calls it.
func (d *Driver) SignalFence(fence registry.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fenceSig[fence] = true
}
