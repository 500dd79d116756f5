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
)

func TestNewBatch(t *testing.T) {
	a := NewIntColumn("a", []int64{1, 2, 3})
	b := NewIntColumn("b", []int64{10, 20, 30})
	batch, err := NewBatch([]Column{a, b})
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Len())
	assert.Equal(t, []string{"a", "b"}, batch.ColumnNames())

	col, ok := batch.Column("b")
	require.True(t, ok)
	assert.Same(t, Column(b), col)

	_, ok = batch.Column("missing")
	assert.False(t, ok)
}

func TestNewBatchRejectsMismatchedRowCounts(t *testing.T) {
	a := NewIntColumn("a", []int64{1, 2, 3})
	b := NewIntColumn("b", []int64{10, 20})
	_, err := NewBatch([]Column{a, b})
	assert.Error(t, err)
}

func TestNewBatchRejectsDuplicateNames(t *testing.T) {
	a := NewIntColumn("a", []int64{1})
	a2 := NewIntColumn("a", []int64{2})
	_, err := NewBatch([]Column{a, a2})
	assert.Error(t, err)
}

func TestEmptyBatch(t *testing.T) {
	batch, err := NewBatch(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Len())
}
