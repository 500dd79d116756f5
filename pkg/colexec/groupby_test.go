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

	"github.com/veloxdb/veloxdb/pkg/rawval"
)

// TestGroupingKeyNoColumnsIsOneImplicitGroup covers a plain aggregate query
// with no GROUP BY column: every row of the batch must fall into the same
// (zero-valued) group, not zero groups.
func TestGroupingKeyNoColumnsIsOneImplicitGroup(t *testing.T) {
	sp := NewScratchpad(1)
	gk := NewGroupingKey(nil, nil, 0)
	gk.Init(0, 5, sp)
	gk.Execute(false, sp)

	out := sp.GetTyped(0, KindInteger)
	require.Len(t, out.Int, 5)
	for _, v := range out.Int {
		assert.Equal(t, int64(0), v)
	}
}

func TestGroupingKeySingleEncodedColumnPassesThroughCode(t *testing.T) {
	sp := NewScratchpad(2)
	sp.Set(0, &TypedVec{Kind: KindEncodedU8, U8: []uint8{0, 1, 2, 1}})

	gk := NewGroupingKey([]AnyBufferRef{0}, []uint64{256}, 1)
	gk.Init(0, 4, sp)
	gk.Execute(false, sp)

	out := sp.GetTyped(1, KindInteger)
	assert.Equal(t, []int64{0, 1, 2, 1}, out.Int)
}

func TestGroupingKeyPacksKnownCardinalities(t *testing.T) {
	sp := NewScratchpad(2)
	sp.Set(0, &TypedVec{Kind: KindEncodedU8, U8: []uint8{0, 1}})
	sp.Set(1, &TypedVec{Kind: KindEncodedU8, U8: []uint8{1, 1}})

	gk := NewGroupingKey([]AnyBufferRef{0, 1}, []uint64{4, 4}, 2)
	gk.Init(0, 2, sp)
	gk.Execute(false, sp)

	out := sp.GetTyped(2, KindInteger)
	// Row 0: (0,1) and row 1: (1,1) must pack to different keys.
	assert.NotEqual(t, out.Int[0], out.Int[1])
}

func TestGroupingKeyHashFallbackIsConsistent(t *testing.T) {
	sp := NewScratchpad(2)
	sp.Set(0, &TypedVec{Kind: KindInteger, Int: []int64{1, 1, 2}})
	sp.Set(1, &TypedVec{Kind: KindString, Str: []string{"a", "a", "b"}})

	// Unknown cardinality on both columns forces the hash path.
	gk := NewGroupingKey([]AnyBufferRef{0, 1}, []uint64{0, 0}, 2)
	gk.Init(0, 3, sp)
	gk.Execute(false, sp)

	out := sp.GetTyped(2, KindInteger)
	assert.Equal(t, out.Int[0], out.Int[1], "identical tuples must hash to the same key")
	assert.NotEqual(t, out.Int[0], out.Int[2])
}

func TestHashAggregateCountAndSum(t *testing.T) {
	// Slots: 0=per-row group key, 1=sum input, 2=group-by string column,
	// 3=count output, 4=decoded representative keys, 5=sum output.
	sp := NewScratchpad(6)
	sp.Set(0, &TypedVec{Kind: KindInteger, Int: []int64{0, 1, 0}})
	sp.Set(1, &TypedVec{Kind: KindInteger, Int: []int64{10, 20, 30}})
	sp.Set(2, &TypedVec{Kind: KindString, Str: []string{"NYC", "SF", "NYC"}})

	state := NewGroupState()
	countOp := NewHashAggregate(AggCount, 0, 0, []AnyBufferRef{2}, state, true, 3, []AnyBufferRef{4})
	countOp.Init(0, 3, sp)
	countOp.Execute(false, sp)

	sumOp := NewHashAggregate(AggSum, 0, 1, []AnyBufferRef{2}, state, false, 5, nil)
	sumOp.Init(1, 3, sp)
	sumOp.Execute(false, sp)

	counts := sp.GetTyped(3, KindInteger)
	require.Len(t, counts.Int, 2)
	assert.Equal(t, int64(2), counts.Int[0], "key 0 (NYC) saw two rows")
	assert.Equal(t, int64(1), counts.Int[1], "key 1 (SF) saw one row")

	sums := sp.GetTyped(5, KindInteger)
	require.Len(t, sums.Int, 2)
	assert.Equal(t, int64(40), sums.Int[0])
	assert.Equal(t, int64(20), sums.Int[1])

	keys := sp.GetTyped(4, KindString)
	assert.Equal(t, []string{"NYC", "SF"}, keys.Str)
}

func TestRawValColumnToTypedVecEmpty(t *testing.T) {
	v := rawValColumnToTypedVec(nil)
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestRawValColumnToTypedVecString(t *testing.T) {
	v := rawValColumnToTypedVec([]rawval.RawVal{rawval.StrVal("a"), rawval.StrVal("b")})
	assert.Equal(t, []string{"a", "b"}, v.Str)
}
