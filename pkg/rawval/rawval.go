// Copyright 2018 The Cockroach Authors.
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

// Package rawval holds the boundary-layer tagged value used to materialize
// query result rows and constants parsed out of SQL text. Inside the
// vectorized execution core it appears only as the payload of constant
// cells and as decoded group-by representative values; column data flows
// through TypedVecs.
package rawval

import "fmt"

// Kind tags the variant held by a RawVal.
type Kind int

const (
	// Null marks an absent/empty value.
	Null Kind = iota
	// Int marks an int64 payload.
	Int
	// Str marks a string payload.
	Str
)

// RawVal is a tagged value: {Null, Int(int64), Str(string)}.
type RawVal struct {
	Kind Kind   `json:"kind"`
	I    int64  `json:"i,omitempty"`
	S    string `json:"s,omitempty"`
}

// NullVal is the singleton Null RawVal.
var NullVal = RawVal{Kind: Null}

// IntVal constructs an Int RawVal.
func IntVal(v int64) RawVal { return RawVal{Kind: Int, I: v} }

// StrVal constructs a Str RawVal.
func StrVal(v string) RawVal { return RawVal{Kind: Str, S: v} }

// Bool encodes a boolean as the 0/1 convention used throughout the engine
// (there is no three-valued boolean in this system).
func Bool(b bool) RawVal {
	if b {
		return IntVal(1)
	}
	return IntVal(0)
}

// String implements fmt.Stringer for debug printing and test failure
// messages.
func (r RawVal) String() string {
	switch r.Kind {
	case Null:
		return "NULL"
	case Int:
		return fmt.Sprintf("%d", r.I)
	case Str:
		return r.S
	default:
		return "<invalid RawVal>"
	}
}

// Equal reports whether two RawVals carry the same variant and payload.
func Equal(a, b RawVal) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Int:
		return a.I == b.I
	case Str:
		return a.S == b.S
	default:
		return false
	}
}
