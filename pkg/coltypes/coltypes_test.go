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

package coltypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIntEncoding(t *testing.T) {
	assert.True(t, Uint8.IsIntEncoding())
	assert.True(t, Uint16.IsIntEncoding())
	assert.True(t, Uint32.IsIntEncoding())
	assert.False(t, Int64.IsIntEncoding())
	assert.False(t, Str.IsIntEncoding())
}

func TestMaxUint(t *testing.T) {
	assert.Equal(t, uint64(1<<8-1), Uint8.MaxUint())
	assert.Equal(t, uint64(1<<16-1), Uint16.MaxUint())
	assert.Equal(t, uint64(1<<32-1), Uint32.MaxUint())
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 8, Uint8.Width())
	assert.Equal(t, 16, Uint16.Width())
	assert.Equal(t, 32, Uint32.Width())
	assert.Equal(t, 64, Int64.Width())
}

func TestString(t *testing.T) {
	assert.Equal(t, "uint8_offset", Uint8.String())
	assert.Equal(t, "string", Str.String())
	assert.Equal(t, "unknown", T(99).String())
}
