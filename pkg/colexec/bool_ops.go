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

// AndBV computes the bitwise AND of two Boolean scratchpad slots of equal
// length.
type AndBV struct {
	base
}

// NewAndBV builds an AndBV operator over left and right Boolean slots.
func NewAndBV(left, right, out AnyBufferRef) *AndBV {
	return &AndBV{base: base{inputs: []AnyBufferRef{left, right}, outputs: []AnyBufferRef{out}, allocates: true, name: "AndBV"}}
}

// Init implements Operator.
func (a *AndBV) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (a *AndBV) Execute(stream bool, sp *Scratchpad) {
	l := sp.GetTyped(a.inputs[0], KindBoolean)
	r := sp.GetTyped(a.inputs[1], KindBoolean)
	sp.Set(a.outputs[0], &TypedVec{Kind: KindBoolean, Bool: l.Bool.And(r.Bool)})
}

// OrBV computes the bitwise OR of two Boolean scratchpad slots of equal
// length.
type OrBV struct {
	base
}

// NewOrBV builds an OrBV operator over left and right Boolean slots.
func NewOrBV(left, right, out AnyBufferRef) *OrBV {
	return &OrBV{base: base{inputs: []AnyBufferRef{left, right}, outputs: []AnyBufferRef{out}, allocates: true, name: "OrBV"}}
}

// Init implements Operator.
func (o *OrBV) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *OrBV) Execute(stream bool, sp *Scratchpad) {
	l := sp.GetTyped(o.inputs[0], KindBoolean)
	r := sp.GetTyped(o.inputs[1], KindBoolean)
	sp.Set(o.outputs[0], &TypedVec{Kind: KindBoolean, Bool: l.Bool.Or(r.Bool)})
}
