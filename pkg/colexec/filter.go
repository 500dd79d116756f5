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

// Filter compacts a data slot down to the rows selected by a mask slot,
// preserving whatever encoding the data slot carried -- it never decodes.
// Output length is popcount(mask). Filter composes: Filter(x, And(m1,
// m2)) == Filter(Filter(x, m1), m2) regardless of how the planner happens
// to fuse the mask computation, since both forms select exactly the rows
// where both predicates hold.
type Filter struct {
	base
	maskSlot AnyBufferRef
}

// NewFilter builds a Filter operator reading data and mask, writing the
// compacted result to out.
func NewFilter(data, mask, out AnyBufferRef) *Filter {
	return &Filter{base: base{inputs: []AnyBufferRef{data, mask}, outputs: []AnyBufferRef{out}, allocates: true, name: "Filter"}, maskSlot: mask}
}

// Init implements Operator.
func (f *Filter) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (f *Filter) Execute(stream bool, sp *Scratchpad) {
	data := sp.Get(f.inputs[0])
	mask := sp.GetTyped(f.maskSlot, KindBoolean)

	switch data.Kind {
	case KindInteger:
		out := make([]int64, 0, mask.Bool.Popcount())
		for i, v := range data.Int {
			if mask.Bool.Get(i) {
				out = append(out, v)
			}
		}
		sp.Set(f.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
	case KindEncodedU8:
		out := make([]uint8, 0, mask.Bool.Popcount())
		for i, v := range data.U8 {
			if mask.Bool.Get(i) {
				out = append(out, v)
			}
		}
		sp.Set(f.outputs[0], &TypedVec{Kind: KindEncodedU8, U8: out, U8Codec: data.U8Codec})
	case KindEncodedU16:
		out := make([]uint16, 0, mask.Bool.Popcount())
		for i, v := range data.U16 {
			if mask.Bool.Get(i) {
				out = append(out, v)
			}
		}
		sp.Set(f.outputs[0], &TypedVec{Kind: KindEncodedU16, U16: out, U16Codec: data.U16Codec})
	case KindEncodedU32:
		out := make([]uint32, 0, mask.Bool.Popcount())
		for i, v := range data.U32 {
			if mask.Bool.Get(i) {
				out = append(out, v)
			}
		}
		sp.Set(f.outputs[0], &TypedVec{Kind: KindEncodedU32, U32: out, U32Codec: data.U32Codec})
	case KindString:
		if data.Str != nil {
			out := make([]string, 0, mask.Bool.Popcount())
			for i, v := range data.Str {
				if mask.Bool.Get(i) {
					out = append(out, v)
				}
			}
			sp.Set(f.outputs[0], &TypedVec{Kind: KindString, Str: out})
		} else {
			out := make([]uint32, 0, mask.Bool.Popcount())
			for i, v := range data.Codes {
				if mask.Bool.Get(i) {
					out = append(out, v)
				}
			}
			sp.Set(f.outputs[0], &TypedVec{Kind: KindString, Codes: out, StrCodec: data.StrCodec})
		}
	case KindBoolean:
		out := NewBitSet(mask.Bool.Popcount())
		j := 0
		for i := 0; i < data.Bool.Len(); i++ {
			if mask.Bool.Get(i) {
				out.Set(j, data.Bool.Get(i))
				j++
			}
		}
		sp.Set(f.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
	case KindEmpty:
		sp.Set(f.outputs[0], &TypedVec{Kind: KindEmpty, length: mask.Bool.Popcount()})
	default:
		execerror.Panicf("Filter: unsupported TypedVec kind %d", data.Kind)
	}
}
