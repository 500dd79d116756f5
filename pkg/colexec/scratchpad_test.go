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

	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
)

func TestScratchpadSetGetRoundTrip(t *testing.T) {
	sp := NewScratchpad(1)
	sp.Set(0, &TypedVec{Kind: KindInteger, Int: []int64{1, 2, 3}})
	got := sp.Get(0)
	assert.Equal(t, []int64{1, 2, 3}, got.Int)
}

func TestScratchpadGetBeforeInitPanics(t *testing.T) {
	sp := NewScratchpad(1)
	err := execerror.CatchVectorizedRuntimeError(func() {
		sp.Get(0)
	})
	require.Error(t, err)
}

func TestScratchpadDoubleMutableBorrowPanics(t *testing.T) {
	sp := NewScratchpad(1)
	sp.Init(0, KindInteger, 0)
	sp.GetMut(0)

	err := execerror.CatchVectorizedRuntimeError(func() {
		sp.GetMut(0)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double mutable borrow")
}

func TestScratchpadReleaseAllowsReborrow(t *testing.T) {
	sp := NewScratchpad(1)
	sp.Init(0, KindInteger, 0)
	sp.GetMut(0)
	sp.Release(0)

	err := execerror.CatchVectorizedRuntimeError(func() {
		sp.GetMut(0)
	})
	assert.NoError(t, err)
}

func TestScratchpadGetTypedMismatch(t *testing.T) {
	sp := NewScratchpad(1)
	sp.Set(0, &TypedVec{Kind: KindInteger})

	err := execerror.CatchVectorizedRuntimeError(func() {
		sp.GetTyped(0, KindBoolean)
	})
	require.Error(t, err)
}

func TestScratchpadGetConstRejectsNonConstant(t *testing.T) {
	sp := NewScratchpad(1)
	sp.Set(0, &TypedVec{Kind: KindInteger})

	err := execerror.CatchVectorizedRuntimeError(func() {
		sp.GetConst(0)
	})
	require.Error(t, err)
}
