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

package coldata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxdb/veloxdb/pkg/coltypes"
)

func TestChooseIntEncoding(t *testing.T) {
	cases := []struct {
		min, max int64
		want     coltypes.T
	}{
		{0, 0, coltypes.Uint8},
		{0, 255, coltypes.Uint8},
		{0, 256, coltypes.Uint16},
		{0, 1 << 16, coltypes.Uint32},
		{0, 1 << 33, coltypes.Int64},
		{5, 2, coltypes.Uint8}, // empty column: max < min
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ChooseIntEncoding(c.min, c.max), "span [%d,%d]", c.min, c.max)
	}
}

func TestNewIntOffsetColumnRoundTrip(t *testing.T) {
	values := []int64{10, 12, 11, 10}
	col := NewIntOffsetColumn("a", values, 10, 12)

	c8, ok := col.(*IntOffsetColumn8)
	require.True(t, ok, "expected u8 encoding, got %T", col)
	assert.Equal(t, int64(10), c8.Offset)
	assert.Equal(t, values, c8.Decode())
}

func TestNewIntOffsetColumnWidensToInt64(t *testing.T) {
	values := []int64{0, 1 << 40}
	col := NewIntOffsetColumn("a", values, 0, 1<<40)
	ic, ok := col.(*IntColumn)
	require.True(t, ok, "expected plain IntColumn, got %T", col)
	assert.Equal(t, values, ic.Values)
}

func TestIntOffsetColumnEncodeConst(t *testing.T) {
	col := NewIntOffsetColumn("a", []int64{100, 101, 102}, 100, 102).(*IntOffsetColumn8)
	code, ok := col.EncodeConst(101)
	require.True(t, ok)
	assert.Equal(t, uint8(1), code)

	_, ok = col.EncodeConst(50)
	assert.False(t, ok)
	_, ok = col.EncodeConst(1000)
	assert.False(t, ok)
}

func TestStringColumn(t *testing.T) {
	col := NewStringColumn("city", []string{"NYC", "SF"}, []uint32{0, 1, 0})
	assert.Equal(t, []string{"NYC", "SF", "NYC"}, col.Decode())

	code, ok := col.CodeOf("SF")
	require.True(t, ok)
	assert.Equal(t, uint32(1), code)

	_, ok = col.CodeOf("LA")
	assert.False(t, ok)
}

func TestNullColumn(t *testing.T) {
	col := NewNullColumn("x", 3)
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, coltypes.Null, col.Type())
}
