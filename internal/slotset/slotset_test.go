// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package slotset

import (
	"testing"
	"unsafe"
)

func TestNbit(t *testing.T) {
	for _, x := range [...][2]int{
		{int(unsafe.Sizeof(uint(0))) * 8, (&Slots[uint]{}).nbit()},
		{int(unsafe.Sizeof(uint8(0))) * 8, (&Slots[uint8]{}).nbit()},
		{int(unsafe.Sizeof(uint16(0))) * 8, (&Slots[uint16]{}).nbit()},
		{int(unsafe.Sizeof(uint32(0))) * 8, (&Slots[uint32]{}).nbit()},
		{int(unsafe.Sizeof(uint64(0))) * 8, (&Slots[uint64]{}).nbit()},
		{int(unsafe.Sizeof(uintptr(0))) * 8, (&Slots[uintptr]{}).nbit()},
	} {
		if x[0] != x[1] {
			t.Fatalf("Slots[T].nbit:\nhave %d\nwant %d", x[1], x[0])
		}
	}
}

func TestZero(t *testing.T) {
	var s16 Slots[uint16]
	if s16.s != nil {
		t.Fatalf("s16.s:\nhave %v\nwant nil", s16.s)
	}
	if s16.rem != 0 {
		t.Fatalf("s16.rem:\nhave %d\nwant 0", s16.rem)
	}
	if n := s16.Len(); n != 0 {
		t.Fatalf("s16.Len:\nhave %d\nwant 0", n)
	}
	if n := s16.Rem(); n != 0 {
		t.Fatalf("s16.Rem:\nhave %d\nwant 0", n)
	}
}

func TestGrow(t *testing.T) {
	var s32 Slots[uint32]
	for _, x := range [...]struct {
		nplus, wantLen int
	}{
		{1, 32},
		{2, 96},
		{3, 192},
		{0, 192},
		{16, 704},
		{-1, 704},
	} {
		prev := s32.Len()
		idx := s32.Grow(x.nplus)
		if idx != prev {
			t.Fatalf("s32.Grow: index\nhave %d\nwant %d", idx, prev)
		}
		if n := s32.Len(); n != x.wantLen {
			t.Fatalf("s32.Grow: Len\nhave %d\nwant %d", n, x.wantLen)
		}
	}
}

func TestIssueRecycle(t *testing.T) {
	var s8 Slots[uint8]
	s8.Grow(1)
	if s8.Rem() != 8 {
		t.Fatalf("s8.Rem:\nhave %d\nwant 8", s8.Rem())
	}
	s8.Issue(3)
	if !s8.IsIssued(3) {
		t.Fatal("s8.IsIssued(3):\nhave false\nwant true")
	}
	if s8.Rem() != 7 {
		t.Fatalf("s8.Rem:\nhave %d\nwant 7", s8.Rem())
	}
	// Issuing an already-issued slot must not double-count.
	s8.Issue(3)
	if s8.Rem() != 7 {
		t.Fatalf("s8.Rem (re-issue):\nhave %d\nwant 7", s8.Rem())
	}
	s8.Recycle(3)
	if s8.IsIssued(3) {
		t.Fatal("s8.IsIssued(3) after Recycle:\nhave true\nwant false")
	}
	if s8.Rem() != 8 {
		t.Fatalf("s8.Rem after Recycle:\nhave %d\nwant 8", s8.Rem())
	}
}

func TestSearchAndAlloc(t *testing.T) {
	var s8 Slots[uint8]
	if _, ok := s8.Search(); ok {
		t.Fatal("s8.Search on empty vector:\nhave ok=true\nwant ok=false")
	}
	first := s8.Alloc(1)
	second := s8.Alloc(1)
	if first == second {
		t.Fatalf("s8.Alloc returned same index twice: %d", first)
	}
	if !s8.IsIssued(first) || !s8.IsIssued(second) {
		t.Fatal("s8.Alloc: returned index not marked issued")
	}
	// Exhaust the byte and force a grow.
	for i := 0; i < 6; i++ {
		s8.Alloc(1)
	}
	if s8.Rem() != 0 {
		t.Fatalf("s8.Rem after exhausting byte:\nhave %d\nwant 0", s8.Rem())
	}
	idx := s8.Alloc(1)
	if idx < 8 {
		t.Fatalf("s8.Alloc after exhaustion should grow:\nhave index %d\nwant >= 8", idx)
	}
}

func TestClear(t *testing.T) {
	var s32 Slots[uint32]
	s32.Grow(2)
	s32.Issue(0)
	s32.Issue(10)
	s32.Issue(63)
	s32.Clear()
	for i, issued := range s32.All() {
		if issued {
			t.Fatalf("slot %d still issued after Clear", i)
		}
	}
	if s32.Rem() != s32.Len() {
		t.Fatalf("s32.Rem after Clear:\nhave %d\nwant %d", s32.Rem(), s32.Len())
	}
}

func TestShrink(t *testing.T) {
	var s32 Slots[uint32]
	s32.Grow(4)
	s32.Shrink(1)
	if n := s32.Len(); n != 96 {
		t.Fatalf("s32.Shrink: Len\nhave %d\nwant 96", n)
	}
	s32.Shrink(10)
	if n := s32.Len(); n != 0 {
		t.Fatalf("s32.Shrink (over-shrink): Len\nhave %d\nwant 0", n)
	}
}
