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

package rawval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	assert.Equal(t, IntVal(1), Bool(true))
	assert.Equal(t, IntVal(0), Bool(false))
}

func TestString(t *testing.T) {
	assert.Equal(t, "NULL", NullVal.String())
	assert.Equal(t, "42", IntVal(42).String())
	assert.Equal(t, "hi", StrVal("hi").String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(NullVal, NullVal))
	assert.True(t, Equal(IntVal(7), IntVal(7)))
	assert.False(t, Equal(IntVal(7), IntVal(8)))
	assert.True(t, Equal(StrVal("a"), StrVal("a")))
	assert.False(t, Equal(StrVal("a"), StrVal("b")))
	assert.False(t, Equal(IntVal(0), StrVal("")))
}

func TestJSONRoundTrip(t *testing.T) {
	for _, v := range []RawVal{NullVal, IntVal(-3), StrVal("hello")} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var got RawVal
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.True(t, Equal(v, got), "round trip of %v produced %v", v, got)
	}
}
