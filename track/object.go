// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package track

import (
	"fmt"

	"github.com/kjhaus/memtrack/registry"
)

// ObjectKind tags the variant a Descriptor holds, per spec.md §9's
// design note preferring a tagged variant over a raw-byte union so the
// fence signalled bit can live in FenceDesc alone.
type ObjectKind int

const (
	KindBuffer ObjectKind = iota
	KindImage
	KindView
	KindPipeline
	KindSampler
	KindFence
	KindEvent
	KindQueryPool
	KindDynamicState
)

// String implements fmt.Stringer, and doubles as the object-name prefix
// the original implementation stamps on every record (object_name =
// "%s_%p"), per SPEC_FULL.md §4's object-naming supplement.
func (k ObjectKind) String() string {
	switch k {
	case KindBuffer:
		return "Buffer"
	case KindImage:
		return "Image"
	case KindView:
		return "View"
	case KindPipeline:
		return "Pipeline"
	case KindSampler:
		return "Sampler"
	case KindFence:
		return "Fence"
	case KindEvent:
		return "Event"
	case KindQueryPool:
		return "QueryPool"
	case KindDynamicState:
		return "DynamicState"
	default:
		return "Unknown"
	}
}

// Descriptor is the creation-info payload carried by an Object. Each
// object kind implements it with its own concrete descriptor type.
type Descriptor interface {
	objectKind() ObjectKind
}

// BufferDesc is the creation descriptor for a buffer object.
type BufferDesc struct {
	Size  uint64
	Usage uint32
}

func (BufferDesc) objectKind() ObjectKind { return KindBuffer }

// ImageDesc is the creation descriptor for an image object.
type ImageDesc struct {
	Width, Height, Depth uint32
	Format               uint32
	Usage                uint32
}

func (ImageDesc) objectKind() ObjectKind { return KindImage }

// ViewDesc is the creation descriptor for a buffer or image view.
type ViewDesc struct {
	Target registry.Handle
	Format uint32
}

func (ViewDesc) objectKind() ObjectKind { return KindView }

// PipelineDesc is the creation descriptor for a pipeline object.
type PipelineDesc struct {
	Compute bool
}

func (PipelineDesc) objectKind() ObjectKind { return KindPipeline }

// SamplerDesc is the creation descriptor for a sampler object.
type SamplerDesc struct {
	Filter uint32
}

func (SamplerDesc) objectKind() ObjectKind { return KindSampler }

// FenceDesc is the creation descriptor for a fence object. It carries
// the signalled-state bit described in spec.md §3/§4.4; this is the
// only descriptor with mutable state.
type FenceDesc struct {
	Signalled bool
}

func (FenceDesc) objectKind() ObjectKind { return KindFence }

// EventDesc is the creation descriptor for an event object.
type EventDesc struct{}

func (EventDesc) objectKind() ObjectKind { return KindEvent }

// QueryPoolDesc is the creation descriptor for a query pool object.
type QueryPoolDesc struct {
	QueryCount uint32
}

func (QueryPoolDesc) objectKind() ObjectKind { return KindQueryPool }

// DynamicStateDesc is the creation descriptor for a dynamic-state
// object (e.g. a viewport or scissor state block).
type DynamicStateDesc struct{}

func (DynamicStateDesc) objectKind() ObjectKind { return KindDynamicState }

// Object is the per-created-object record described in spec.md §3: a
// kind tag, a copy of its creation descriptor, and at most one optional
// memory binding.
type Object struct {
	Kind   ObjectKind
	Desc   Descriptor
	Memory registry.Handle // 0 if unbound
	Name   string
}

// objectName stamps the "<kind>_<handle>" name the original
// implementation's add_object_info gives every record, per
// SPEC_FULL.md §4's object-naming supplement.
func objectName(kind ObjectKind, h registry.Handle) string {
	return fmt.Sprintf("%s_%#x", kind, uint64(h))
}
