// Copyright 2024-present, The veloxdb Authors. All rights reserved.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortProducesStablePermutationOverInts(t *testing.T) {
	sp := NewScratchpad(2)
	sp.Set(0, &TypedVec{Kind: KindInteger, Int: []int64{3, 1, 1, 2}})

	s := NewSort(0, 1)
	s.Init(0, 4, sp)
	s.Execute(false, sp)

	perm := sp.GetTyped(1, KindInteger)
	require.Len(t, perm.Int, 4)
	assert.Equal(t, []int64{1, 2, 3, 0}, perm.Int, "ties at value 1 must keep original row order (indices 1 before 2)")
}

func TestSortOverEncodedKeyOrdersByCode(t *testing.T) {
	sp := NewScratchpad(2)
	sp.Set(0, &TypedVec{Kind: KindEncodedU8, U8: []uint8{2, 0, 1}})

	s := NewSort(0, 1)
	s.Init(0, 3, sp)
	s.Execute(false, sp)

	perm := sp.GetTyped(1, KindInteger)
	assert.Equal(t, []int64{1, 2, 0}, perm.Int)
}

func TestSortOverStringKeyOrdersLexically(t *testing.T) {
	sp := NewScratchpad(2)
	sp.Set(0, &TypedVec{Kind: KindString, Str: []string{"banana", "apple", "cherry"}})

	s := NewSort(0, 1)
	s.Init(0, 3, sp)
	s.Execute(false, sp)

	perm := sp.GetTyped(1, KindInteger)
	assert.Equal(t, []int64{1, 0, 2}, perm.Int)
}

func TestApplyPermutationReordersIntValues(t *testing.T) {
	v := &TypedVec{Kind: KindInteger, Int: []int64{10, 20, 30}}
	out := ApplyPermutation(v, []int64{2, 0, 1})
	assert.Equal(t, []int64{30, 10, 20}, out.Int)
}

func TestApplyPermutationDecodesStringsWhileReordering(t *testing.T) {
	v := &TypedVec{Kind: KindString, Codes: []uint32{0, 1, 0}, StrCodec: DictCodec{Dict: []string{"x", "y"}}}
	out := ApplyPermutation(v, []int64{1, 2, 0})
	assert.Equal(t, []string{"y", "x", "x"}, out.Str)
}

func TestApplyPermutationOnEmptyVecPreservesLength(t *testing.T) {
	v := &TypedVec{Kind: KindEmpty, length: 5}
	out := ApplyPermutation(v, []int64{0, 1, 2})
	assert.Equal(t, KindEmpty, out.Kind)
	assert.Equal(t, 3, out.Len())
}
