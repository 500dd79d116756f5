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

package execerror

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatchVectorizedRuntimeErrorRecoversPanic(t *testing.T) {
	err := CatchVectorizedRuntimeError(func() {
		Panicf("slot %d read before init", 3)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot 3 read before init")
}

func TestCatchVectorizedRuntimeErrorNoPanic(t *testing.T) {
	err := CatchVectorizedRuntimeError(func() {})
	assert.NoError(t, err)
}

func TestCatchVectorizedRuntimeErrorPropagatesUnrelatedPanic(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.Equal(t, "not ours", r)
	}()
	_ = CatchVectorizedRuntimeError(func() {
		panic("not ours")
	})
	t.Fatal("expected panic to propagate")
}

func TestPanicWrapsGivenError(t *testing.T) {
	sentinel := errors.New("boom")
	err := CatchVectorizedRuntimeError(func() {
		Panic(sentinel)
	})
	assert.Equal(t, sentinel, err)
}
