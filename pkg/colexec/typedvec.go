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
	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
	"github.com/veloxdb/veloxdb/pkg/coltypes"
	"github.com/veloxdb/veloxdb/pkg/rawval"
)

// Kind tags a TypedVec's variant. TypedVec is a closed sum type: every
// operator matches the subset of kinds it accepts and fails loud
// (execerror.Panic) on anything else.
type Kind int

const (
	// KindInteger holds decoded int64 values.
	KindInteger Kind = iota
	// KindEncodedU8 holds uint8 codes plus an IntCodec to decode them.
	KindEncodedU8
	// KindEncodedU16 holds uint16 codes plus an IntCodec.
	KindEncodedU16
	// KindEncodedU32 holds uint32 codes plus an IntCodec.
	KindEncodedU32
	// KindString holds decoded string values, or dictionary codes plus a
	// DictCodec when Codes is set instead of Str.
	KindString
	// KindBoolean holds a BitSet produced by a predicate operator.
	KindBoolean
	// KindConstant holds a single RawVal broadcast across every row.
	KindConstant
	// KindEmpty holds no values, only a row count (e.g. the result of
	// scanning a NullColumn without decoding it).
	KindEmpty
)

// IntCodec decodes an offset-encoded integer code back to int64 and
// attempts the inverse re-encoding of a constant, mirroring
// coldata.IntOffsetColumn{8,16,32}.
type IntCodec struct {
	Offset int64
	Width  coltypes.T
}

// Decode returns int64(code) + Offset.
func (c IntCodec) Decode(code uint64) int64 { return int64(code) + c.Offset }

// Encode re-encodes v into this codec's domain, returning ok=false if v
// falls outside [Offset, Offset+Width.MaxUint()].
func (c IntCodec) Encode(v int64) (uint64, bool) {
	shifted := v - c.Offset
	if shifted < 0 || uint64(shifted) > c.Width.MaxUint() {
		return 0, false
	}
	return uint64(shifted), true
}

// DictCodec decodes a dictionary code back to its string and looks up the
// code for a literal string, mirroring coldata.StringColumn.
type DictCodec struct {
	Dict []string
}

// Decode returns the dictionary string for code.
func (c DictCodec) Decode(code uint32) string { return c.Dict[code] }

// Encode returns the dictionary code for s, or ok=false if s is not in the
// dictionary (the comparison is then always-false without scanning).
func (c DictCodec) Encode(s string) (uint32, bool) {
	for i, d := range c.Dict {
		if d == s {
			return uint32(i), true
		}
	}
	return 0, false
}

// TypedVec is the runtime container for a run of values produced or
// consumed by an operator. Exactly one of the payload fields is valid for
// a given Kind; Borrowed marks a view over another TypedVec's backing
// array (e.g. a ColumnScan that exposes the column's own code slice)
// rather than a freshly materialized buffer.
type TypedVec struct {
	Kind     Kind
	Borrowed bool

	Int []int64

	U8Codec IntCodec
	U8      []uint8

	U16Codec IntCodec
	U16      []uint16

	U32Codec IntCodec
	U32      []uint32

	StrCodec DictCodec
	Str      []string
	Codes    []uint32 // valid when Kind == KindString and Str == nil

	Bool *BitSet

	Const rawval.RawVal

	length int // valid for KindEmpty
}

// Len reports the TypedVec's row count.
func (v *TypedVec) Len() int {
	switch v.Kind {
	case KindInteger:
		return len(v.Int)
	case KindEncodedU8:
		return len(v.U8)
	case KindEncodedU16:
		return len(v.U16)
	case KindEncodedU32:
		return len(v.U32)
	case KindString:
		if v.Str != nil {
			return len(v.Str)
		}
		return len(v.Codes)
	case KindBoolean:
		return v.Bool.Len()
	case KindEmpty:
		return v.length
	case KindConstant:
		return 0 // a Constant has no intrinsic length; it broadcasts.
	default:
		return 0
	}
}

// Type reports the coltypes.T that corresponds to this TypedVec's Kind.
func (v *TypedVec) Type() coltypes.T {
	switch v.Kind {
	case KindInteger:
		return coltypes.Int64
	case KindEncodedU8:
		return coltypes.Uint8
	case KindEncodedU16:
		return coltypes.Uint16
	case KindEncodedU32:
		return coltypes.Uint32
	case KindString:
		return coltypes.Str
	case KindBoolean:
		return coltypes.Bool
	case KindEmpty:
		return coltypes.Null
	default:
		return coltypes.Unknown
	}
}

// NewEmptyVec constructs a TypedVec of the given Kind with zero-length (but
// for KindInteger/KindEncodedU*/KindString, pre-sized) buffers, for
// operators that append incrementally across streamed execute() calls.
func NewEmptyVec(kind Kind, capacity int) *TypedVec {
	v := &TypedVec{Kind: kind}
	switch kind {
	case KindInteger:
		v.Int = make([]int64, 0, capacity)
	case KindEncodedU8:
		v.U8 = make([]uint8, 0, capacity)
	case KindEncodedU16:
		v.U16 = make([]uint16, 0, capacity)
	case KindEncodedU32:
		v.U32 = make([]uint32, 0, capacity)
	case KindString:
		v.Str = make([]string, 0, capacity)
	case KindBoolean:
		v.Bool = NewBitSet(0)
	}
	return v
}

// DecodeInts materializes any TypedVec as a []int64, decoding offset-encoded
// integers through their codec. Panics (execerror) if called on a
// non-integer-compatible Kind -- the planner is responsible for only
// wiring Decode after checking the type.
func (v *TypedVec) DecodeInts() []int64 {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindEncodedU8:
		out := make([]int64, len(v.U8))
		for i, c := range v.U8 {
			out[i] = v.U8Codec.Decode(uint64(c))
		}
		return out
	case KindEncodedU16:
		out := make([]int64, len(v.U16))
		for i, c := range v.U16 {
			out[i] = v.U16Codec.Decode(uint64(c))
		}
		return out
	case KindEncodedU32:
		out := make([]int64, len(v.U32))
		for i, c := range v.U32 {
			out[i] = v.U32Codec.Decode(uint64(c))
		}
		return out
	case KindEmpty:
		return make([]int64, v.length)
	default:
		execerror.Panicf("DecodeInts: cannot decode TypedVec kind %d as integers", v.Kind)
		return nil
	}
}

// DecodeStrings materializes a KindString TypedVec as a []string, whether
// it is currently carrying decoded strings or dictionary codes.
func (v *TypedVec) DecodeStrings() []string {
	if v.Str != nil {
		return v.Str
	}
	out := make([]string, len(v.Codes))
	for i, c := range v.Codes {
		out[i] = v.StrCodec.Decode(c)
	}
	return out
}
