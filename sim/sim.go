// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package sim implements a fake downstream driver standing in for the
// real GPU driver the validation layer forwards to (spec.md §1's
// "driver interface... forwards calls, surfaces return codes").
// Non-goals rule out simulating GPU execution, so Driver does no real
// work: it records which handles it has seen, using the same
// slotset-backed slot-recycling pattern the teacher's internal/bitm
// uses for its own backing-store allocation, and returns nil unless it
// has been marked lost (SetLost) or, for fence queries and waits, the
// fences are not signalled.
package sim

import (
	"errors"
	"sync"

	"github.com/kjhaus/memtrack/internal/slotset"
	"github.com/kjhaus/memtrack/registry"
	"github.com/kjhaus/memtrack/track"
)

// ErrDeviceLost is returned by Driver methods once SetLost has been
// called, mimicking spec.md §7's ErrFatal class of driver error.
var ErrDeviceLost = errors.New("sim: device lost")

// Driver is a fake GPU driver. It is safe for concurrent use.
type Driver struct {
	mu   sync.Mutex
	lost bool

	// slots tracks which backing-store slots are in use, purely to
	// exercise the bitvec-style allocator the way a real driver's
	// memory pool would; memtrack's own handles are minted by the
	// tracker (see layer.NextLayer's doc comment).
	slots    slotset.Slots[uint64]
	slotOf   map[registry.Handle]int
	seen     map[registry.Handle]struct{}
	fenceSig map[registry.Handle]bool
}

// New constructs an empty Driver.
func New() *Driver {
	return &Driver{
		slotOf:   make(map[registry.Handle]int),
		seen:     make(map[registry.Handle]struct{}),
		fenceSig: make(map[registry.Handle]bool),
	}
}

// SetLost marks the driver as lost; every subsequent call returns
// ErrDeviceLost, mirroring how a real driver degrades after a fatal
// error (spec.md §7).
func (d *Driver) SetLost(lost bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lost = lost
}

func (d *Driver) checkLost() error {
	if d.lost {
		return ErrDeviceLost
	}
	return nil
}

func (d *Driver) reserveSlot(h registry.Handle) {
	idx := d.slots.Alloc(1)
	d.slotOf[h] = idx
	d.seen[h] = struct{}{}
}

func (d *Driver) releaseSlot(h registry.Handle) {
	if idx, ok := d.slotOf[h]; ok {
		d.slots.Recycle(idx)
		delete(d.slotOf, h)
	}
	delete(d.seen, h)
}

// AllocateMemory records that h now backs a live allocation.
func (d *Driver) AllocateMemory(h registry.Handle, desc track.AllocDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.reserveSlot(h)
	return nil
}

// FreeMemory releases the backing-store slot for h.
func (d *Driver) FreeMemory(h registry.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}
	d.releaseSlot(h)
	return nil
}
