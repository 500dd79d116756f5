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

import (
	"sort"

	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
)

// Sort computes a stable permutation of [0, n) ordering the keys slot
// ascending, with ties broken by original row index. It does
// not itself reorder any data -- ApplyPermutation applies the permutation
// to whichever columns need ordering. The store driver does not use Sort;
// it orders materialized rows itself.
type Sort struct {
	base
}

// NewSort builds a Sort operator over a keys slot, writing the resulting
// permutation (as a KindInteger TypedVec of row indices) to out.
func NewSort(keys, out AnyBufferRef) *Sort {
	return &Sort{base: base{inputs: []AnyBufferRef{keys}, outputs: []AnyBufferRef{out}, allocates: true, name: "Sort"}}
}

// Init implements Operator.
func (s *Sort) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (s *Sort) Execute(stream bool, sp *Scratchpad) {
	keys := sp.Get(s.inputs[0])
	n := keys.Len()
	perm := make([]int64, n)
	for i := range perm {
		perm[i] = int64(i)
	}

	var less func(a, b int) bool
	switch keys.Kind {
	case KindInteger:
		less = func(a, b int) bool { return keys.Int[a] < keys.Int[b] }
	case KindEncodedU8:
		less = func(a, b int) bool { return keys.U8[a] < keys.U8[b] }
	case KindEncodedU16:
		less = func(a, b int) bool { return keys.U16[a] < keys.U16[b] }
	case KindEncodedU32:
		less = func(a, b int) bool { return keys.U32[a] < keys.U32[b] }
	case KindString:
		decoded := keys.DecodeStrings()
		less = func(a, b int) bool { return decoded[a] < decoded[b] }
	default:
		execerror.Panicf("Sort: unsupported key kind %d", keys.Kind)
	}

	sort.SliceStable(perm, func(i, j int) bool { return less(int(perm[i]), int(perm[j])) })
	sp.Set(s.outputs[0], &TypedVec{Kind: KindInteger, Int: perm})
}

// ApplyPermutation reorders any TypedVec according to perm, such as the
// permutation Sort produces. It decodes
// encoded columns in the process since the final row materialization
// needs RawVal-ready values anyway.
func ApplyPermutation(v *TypedVec, perm []int64) *TypedVec {
	switch v.Kind {
	case KindString:
		decoded := v.DecodeStrings()
		out := make([]string, len(perm))
		for i, p := range perm {
			out[i] = decoded[p]
		}
		return &TypedVec{Kind: KindString, Str: out}
	case KindEmpty:
		return &TypedVec{Kind: KindEmpty, length: len(perm)}
	default:
		decoded := v.DecodeInts()
		out := make([]int64, len(perm))
		for i, p := range perm {
			out[i] = decoded[p]
		}
		return &TypedVec{Kind: KindInteger, Int: out}
	}
}
