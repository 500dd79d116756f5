// Copyright 2019 The Cockroach Authors.
// Copyright (c) 2024-present, The veloxdb Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package colexec

import "github.com/veloxdb/veloxdb/pkg/colexec/execerror"

// SlotID identifies a cell in a Scratchpad. Slot ids are assigned by the
// planner when it wires an operator DAG and are only meaningful within a
// single Scratchpad instance.
type SlotID int

// BufferRef is a compile-time-typed handle to a scratchpad slot. T is
// phantom -- Go has no const-generic slot tags -- but every call site that
// holds a BufferRef[int64] (say) is a static claim that the slot's
// TypedVec.Kind is KindInteger, checked at runtime by Scratchpad.GetTyped.
type BufferRef[T any] struct {
	Slot SlotID
}

// Any erases T, producing the untyped handle the planner uses to wire
// operator inputs/outputs generically.
func (r BufferRef[T]) Any() AnyBufferRef { return AnyBufferRef(r.Slot) }

// AnyBufferRef is the type-erased form of BufferRef[T], used by the
// operator DAG for wiring (Operator.InputSlots/OutputSlots).
type AnyBufferRef SlotID

// Scratchpad is a slot-indexed arena of TypedVec cells, lifetimed to a
// single batch execution. It is not safe for concurrent use -- a query's
// per-batch execution is single-threaded by design.
type Scratchpad struct {
	cells    []*TypedVec
	init     []bool
	mutOut   []bool // true while a get_mut borrow on this slot is outstanding
}

// NewScratchpad allocates a Scratchpad sized for numSlots slot ids, as
// determined by the planner while building the operator DAG.
func NewScratchpad(numSlots int) *Scratchpad {
	return &Scratchpad{
		cells:  make([]*TypedVec, numSlots),
		init:   make([]bool, numSlots),
		mutOut: make([]bool, numSlots),
	}
}

// Init installs an empty, Kind-tagged buffer of the given capacity at
// slot, to be appended to by a streaming operator's execute().
func (s *Scratchpad) Init(slot AnyBufferRef, kind Kind, capacity int) {
	s.cells[slot] = NewEmptyVec(kind, capacity)
	s.init[slot] = true
}

// Set installs a fully-materialized TypedVec at slot, overwriting
// whatever was there (used by non-streaming operators and by ConstLoad).
func (s *Scratchpad) Set(slot AnyBufferRef, v *TypedVec) {
	s.cells[slot] = v
	s.init[slot] = true
}

// Get returns a shared (read-only in practice) view of slot's buffer.
// Panics via execerror if the slot was never initialized.
func (s *Scratchpad) Get(slot AnyBufferRef) *TypedVec {
	if !s.init[slot] {
		execerror.Panicf("scratchpad slot %d read before init", slot)
	}
	return s.cells[slot]
}

// GetMut returns an exclusive view of slot's buffer for a streaming
// operator to append to. Panics if another get_mut borrow on the same
// slot is already outstanding; the caller must call Release when done.
func (s *Scratchpad) GetMut(slot AnyBufferRef) *TypedVec {
	if !s.init[slot] {
		execerror.Panicf("scratchpad slot %d mutated before init", slot)
	}
	if s.mutOut[slot] {
		execerror.Panicf("scratchpad slot %d: double mutable borrow", slot)
	}
	s.mutOut[slot] = true
	return s.cells[slot]
}

// Release ends an outstanding GetMut borrow on slot.
func (s *Scratchpad) Release(slot AnyBufferRef) {
	s.mutOut[slot] = false
}

// GetConst returns the RawVal of a KindConstant slot. Panics if the slot
// does not hold a constant -- this is a scratchpad type mismatch between
// the declared BufferRef[T] and the stored variant.
func (s *Scratchpad) GetConst(slot AnyBufferRef) *TypedVec {
	v := s.Get(slot)
	if v.Kind != KindConstant {
		execerror.Panicf("scratchpad slot %d: expected constant, got %s", slot, v.Type())
	}
	return v
}

// GetTyped fetches slot and asserts its Kind matches want, panicking with
// a scratchpad-type-mismatch error otherwise. Operators use this instead
// of raw Get when they only accept one or two specific Kinds.
func (s *Scratchpad) GetTyped(slot AnyBufferRef, want Kind) *TypedVec {
	v := s.Get(slot)
	if v.Kind != want {
		execerror.Panicf("scratchpad slot %d: expected kind %d, got %d", slot, want, v.Kind)
	}
	return v
}
