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
	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
	"github.com/veloxdb/veloxdb/pkg/rawval"
)

// ColumnScan materializes a batch column's encoded representation into a
// scratchpad slot, borrowing the column's own backing array rather than
// copying it. It never decodes -- downstream operators that need decoded
// values wire a Decode operator after it.
type ColumnScan struct {
	base
	Col coldata.Column
}

// NewColumnScan builds a ColumnScan for col, writing to out.
func NewColumnScan(col coldata.Column, out AnyBufferRef) *ColumnScan {
	return &ColumnScan{
		base: base{outputs: []AnyBufferRef{out}, allocates: false, name: "ColumnScan(" + col.Name() + ")"},
		Col:  col,
	}
}

// Init implements Operator; ColumnScan is non-streaming, it produces its
// whole output in Execute.
func (s *ColumnScan) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (s *ColumnScan) Execute(stream bool, sp *Scratchpad) {
	out := s.outputs[0]
	switch c := s.Col.(type) {
	case *coldata.IntColumn:
		sp.Set(out, &TypedVec{Kind: KindInteger, Int: c.Values, Borrowed: true})
	case *coldata.IntOffsetColumn8:
		sp.Set(out, &TypedVec{
			Kind: KindEncodedU8, U8: c.Codes, Borrowed: true,
			U8Codec: IntCodec{Offset: c.Offset, Width: c.Type()},
		})
	case *coldata.IntOffsetColumn16:
		sp.Set(out, &TypedVec{
			Kind: KindEncodedU16, U16: c.Codes, Borrowed: true,
			U16Codec: IntCodec{Offset: c.Offset, Width: c.Type()},
		})
	case *coldata.IntOffsetColumn32:
		sp.Set(out, &TypedVec{
			Kind: KindEncodedU32, U32: c.Codes, Borrowed: true,
			U32Codec: IntCodec{Offset: c.Offset, Width: c.Type()},
		})
	case *coldata.StringColumn:
		sp.Set(out, &TypedVec{
			Kind: KindString, Codes: c.Codes, Borrowed: true,
			StrCodec: DictCodec{Dict: c.Dict},
		})
	case *coldata.NullColumn:
		sp.Set(out, &TypedVec{Kind: KindEmpty, length: c.Len()})
	default:
		execerror.Panicf("ColumnScan: unsupported column type %T", s.Col)
	}
}

// Decode reads an encoded slot and writes the fully decoded int64/string
// values to a new output slot. For an IntOffset column this is
// `c as i64 + offset`; for a dictionary string column it is a dict lookup
// per code.
type Decode struct {
	base
}

// NewDecode builds a Decode reading in and writing decoded values to out.
func NewDecode(in, out AnyBufferRef) *Decode {
	return &Decode{base: base{inputs: []AnyBufferRef{in}, outputs: []AnyBufferRef{out}, allocates: true, name: "Decode"}}
}

// Init implements Operator.
func (d *Decode) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (d *Decode) Execute(stream bool, sp *Scratchpad) {
	in := sp.Get(d.inputs[0])
	switch in.Kind {
	case KindInteger, KindEncodedU8, KindEncodedU16, KindEncodedU32, KindEmpty:
		sp.Set(d.outputs[0], &TypedVec{Kind: KindInteger, Int: in.DecodeInts()})
	case KindString:
		sp.Set(d.outputs[0], &TypedVec{Kind: KindString, Str: in.DecodeStrings()})
	default:
		execerror.Panicf("Decode: cannot decode TypedVec kind %d", in.Kind)
	}
}

// ConstLoad stores a literal RawVal as a Constant scratchpad cell.
type ConstLoad struct {
	base
	Val rawval.RawVal
}

// NewConstLoad builds a ConstLoad writing val to out.
func NewConstLoad(val rawval.RawVal, out AnyBufferRef) *ConstLoad {
	return &ConstLoad{base: base{outputs: []AnyBufferRef{out}, name: "ConstLoad(" + val.String() + ")"}, Val: val}
}

// Init implements Operator.
func (c *ConstLoad) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (c *ConstLoad) Execute(stream bool, sp *Scratchpad) {
	sp.Set(c.outputs[0], &TypedVec{Kind: KindConstant, Const: c.Val})
}
