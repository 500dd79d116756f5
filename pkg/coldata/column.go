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

// Package coldata implements the immutable, encoded column representations
// that make up a Batch: plain int64, offset-narrowed integers at three
// widths, dictionary-encoded strings, and an all-null column. Columns are
// produced once by ingestion and never mutated afterwards; every downstream
// read either works on the raw encoded codes directly or goes through
// Decode to materialize int64/string values.
package coldata

import (
	"math"

	"github.com/veloxdb/veloxdb/pkg/coltypes"
)

// Column is the interface every encoded column body implements. Name and
// Len are cheap; the encoded-vs-decoded accessors are provided by the
// concrete types below since their signatures differ by width.
type Column interface {
	// Name returns the column's name within its batch.
	Name() string
	// Len returns the column's logical row count.
	Len() int
	// Type returns the physical encoding of the column.
	Type() coltypes.T
}

// IntColumn is an unencoded []int64 column, used when no offset encoding
// narrower than int64 applies.
type IntColumn struct {
	name   string
	Values []int64
}

// NewIntColumn constructs an unencoded integer column.
func NewIntColumn(name string, values []int64) *IntColumn {
	return &IntColumn{name: name, Values: values}
}

// Name implements Column.
func (c *IntColumn) Name() string { return c.name }

// Len implements Column.
func (c *IntColumn) Len() int { return len(c.Values) }

// Type implements Column.
func (c *IntColumn) Type() coltypes.T { return coltypes.Int64 }

// IntOffsetColumn8 stores `codes []uint8` plus an additive Offset such that
// the logical value at row i is int64(codes[i]) + Offset. Constructed only
// through NewIntOffsetColumn so the narrowest-fit invariant (offset <= v,
// v - offset <= 255) is enforced once, at encode time.
type IntOffsetColumn8 struct {
	name   string
	Codes  []uint8
	Offset int64
}

// Name implements Column.
func (c *IntOffsetColumn8) Name() string { return c.name }

// Len implements Column.
func (c *IntOffsetColumn8) Len() int { return len(c.Codes) }

// Type implements Column.
func (c *IntOffsetColumn8) Type() coltypes.T { return coltypes.Uint8 }

// Decode materializes the full column as int64 values.
func (c *IntOffsetColumn8) Decode() []int64 {
	out := make([]int64, len(c.Codes))
	for i, code := range c.Codes {
		out[i] = int64(code) + c.Offset
	}
	return out
}

// EncodeConst attempts to re-encode a constant into this column's code
// domain, returning (code, true) on success or (0, false) if v falls
// outside [Offset, Offset+255].
func (c *IntOffsetColumn8) EncodeConst(v int64) (uint8, bool) {
	shifted := v - c.Offset
	if shifted < 0 || shifted > math.MaxUint8 {
		return 0, false
	}
	return uint8(shifted), true
}

// IntOffsetColumn16 is the uint16-coded analogue of IntOffsetColumn8.
type IntOffsetColumn16 struct {
	name   string
	Codes  []uint16
	Offset int64
}

// Name implements Column.
func (c *IntOffsetColumn16) Name() string { return c.name }

// Len implements Column.
func (c *IntOffsetColumn16) Len() int { return len(c.Codes) }

// Type implements Column.
func (c *IntOffsetColumn16) Type() coltypes.T { return coltypes.Uint16 }

// Decode materializes the full column as int64 values.
func (c *IntOffsetColumn16) Decode() []int64 {
	out := make([]int64, len(c.Codes))
	for i, code := range c.Codes {
		out[i] = int64(code) + c.Offset
	}
	return out
}

// EncodeConst attempts to re-encode a constant into this column's code
// domain.
func (c *IntOffsetColumn16) EncodeConst(v int64) (uint16, bool) {
	shifted := v - c.Offset
	if shifted < 0 || shifted > math.MaxUint16 {
		return 0, false
	}
	return uint16(shifted), true
}

// IntOffsetColumn32 is the uint32-coded analogue of IntOffsetColumn8.
type IntOffsetColumn32 struct {
	name   string
	Codes  []uint32
	Offset int64
}

// Name implements Column.
func (c *IntOffsetColumn32) Name() string { return c.name }

// Len implements Column.
func (c *IntOffsetColumn32) Len() int { return len(c.Codes) }

// Type implements Column.
func (c *IntOffsetColumn32) Type() coltypes.T { return coltypes.Uint32 }

// Decode materializes the full column as int64 values.
func (c *IntOffsetColumn32) Decode() []int64 {
	out := make([]int64, len(c.Codes))
	for i, code := range c.Codes {
		out[i] = int64(code) + c.Offset
	}
	return out
}

// EncodeConst attempts to re-encode a constant into this column's code
// domain.
func (c *IntOffsetColumn32) EncodeConst(v int64) (uint32, bool) {
	shifted := v - c.Offset
	if shifted < 0 || shifted > math.MaxUint32 {
		return 0, false
	}
	return uint32(shifted), true
}

// StringColumn is a dictionary-encoded string column: Dict holds the
// distinct strings in the column (in first-seen order when built by
// ingestion), and Codes indexes into Dict per row. Codes are always
// uint32, whatever len(Dict) is.
type StringColumn struct {
	name  string
	Dict  []string
	Codes []uint32
}

// NewStringColumn constructs a dictionary-encoded string column from a
// pre-built dictionary and per-row codes.
func NewStringColumn(name string, dict []string, codes []uint32) *StringColumn {
	return &StringColumn{name: name, Dict: dict, Codes: codes}
}

// Name implements Column.
func (c *StringColumn) Name() string { return c.name }

// Len implements Column.
func (c *StringColumn) Len() int { return len(c.Codes) }

// Type implements Column.
func (c *StringColumn) Type() coltypes.T { return coltypes.Str }

// Decode materializes the full column as strings.
func (c *StringColumn) Decode() []string {
	out := make([]string, len(c.Codes))
	for i, code := range c.Codes {
		out[i] = c.Dict[code]
	}
	return out
}

// CodeOf returns the dictionary code for s and true if s is present in the
// dictionary, used to lower `col = 'literal'` to an encoded-domain
// comparison without decoding the column.
func (c *StringColumn) CodeOf(s string) (uint32, bool) {
	for i, d := range c.Dict {
		if d == s {
			return uint32(i), true
		}
	}
	return 0, false
}

// NullColumn represents an all-empty column of a known length: every row
// is the sentinel empty value (0 for the numeric domain, "" for strings).
type NullColumn struct {
	name   string
	length int
}

// NewNullColumn constructs a NullColumn of the given length.
func NewNullColumn(name string, length int) *NullColumn {
	return &NullColumn{name: name, length: length}
}

// Name implements Column.
func (c *NullColumn) Name() string { return c.name }

// Len implements Column.
func (c *NullColumn) Len() int { return c.length }

// Type implements Column.
func (c *NullColumn) Type() coltypes.T { return coltypes.Null }

// ChooseIntEncoding picks the narrowest of {u8, u16, u32, i64} such that
// max - min fits in the width's unsigned range, mirroring
// a simple min/max span check against each width's unsigned range.
func ChooseIntEncoding(min, max int64) coltypes.T {
	span := max - min
	switch {
	case span < 0:
		// max < min only happens for an empty column; any width works.
		return coltypes.Uint8
	case span <= math.MaxUint8:
		return coltypes.Uint8
	case span <= math.MaxUint16:
		return coltypes.Uint16
	case span <= math.MaxUint32:
		return coltypes.Uint32
	default:
		return coltypes.Int64
	}
}

// NewIntOffsetColumn builds the narrowest IntOffsetColumn* (or IntColumn, if
// no offset encoding fits) for values observed to span [min, max].
func NewIntOffsetColumn(name string, values []int64, min, max int64) Column {
	switch ChooseIntEncoding(min, max) {
	case coltypes.Uint8:
		codes := make([]uint8, len(values))
		for i, v := range values {
			codes[i] = uint8(v - min)
		}
		return &IntOffsetColumn8{name: name, Codes: codes, Offset: min}
	case coltypes.Uint16:
		codes := make([]uint16, len(values))
		for i, v := range values {
			codes[i] = uint16(v - min)
		}
		return &IntOffsetColumn16{name: name, Codes: codes, Offset: min}
	case coltypes.Uint32:
		codes := make([]uint32, len(values))
		for i, v := range values {
			codes[i] = uint32(v - min)
		}
		return &IntOffsetColumn32{name: name, Codes: codes, Offset: min}
	default:
		cp := make([]int64, len(values))
		copy(cp, values)
		return NewIntColumn(name, cp)
	}
}
