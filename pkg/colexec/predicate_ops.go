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

// This file implements the vectorized const-compare and arithmetic
// operators, writing a Boolean mask or a decoded i64 buffer. The
// vector-against-constant operators take {input slot of T, constant slot
// of U, output slot of result type} and read the constant from a
// KindConstant scratchpad cell, so the DAG only ever wires slots, never
// bare Go values, between operators. AdditionVV, Negate and RegexMatchStr
// take no constant slot.
package colexec

import (
	"regexp"

	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
)

// EqualsVSU8 compares a KindEncodedU8 input's codes against a constant
// re-encoded into the same code domain: when the constant fits
// [offset, offset+255] the comparison runs entirely on bytes without ever
// decoding the column; when it doesn't fit, equality can never hold and
// the operator produces an all-clear mask without scanning row by row.
type EqualsVSU8 struct {
	base
	codec     IntCodec
	constSlot AnyBufferRef
}

// NewEqualsVSU8 builds an encoded-domain equality operator for a
// KindEncodedU8 input.
func NewEqualsVSU8(in, constSlot, out AnyBufferRef, codec IntCodec) *EqualsVSU8 {
	return &EqualsVSU8{
		base:      base{inputs: []AnyBufferRef{in, constSlot}, outputs: []AnyBufferRef{out}, allocates: true, name: "EqualsVS(u8)"},
		codec:     codec,
		constSlot: constSlot,
	}
}

// Init implements Operator.
func (o *EqualsVSU8) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *EqualsVSU8) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(o.inputs[0], KindEncodedU8)
	c := sp.GetConst(o.constSlot).Const
	out := NewBitSet(len(in.U8))
	if code, ok := o.codec.Encode(c.I); ok {
		want := uint8(code)
		for i, v := range in.U8 {
			out.Set(i, v == want)
		}
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
}

// EqualsVSU16 is the uint16-coded analogue of EqualsVSU8.
type EqualsVSU16 struct {
	base
	codec     IntCodec
	constSlot AnyBufferRef
}

// NewEqualsVSU16 builds an encoded-domain equality operator for a
// KindEncodedU16 input.
func NewEqualsVSU16(in, constSlot, out AnyBufferRef, codec IntCodec) *EqualsVSU16 {
	return &EqualsVSU16{
		base:      base{inputs: []AnyBufferRef{in, constSlot}, outputs: []AnyBufferRef{out}, allocates: true, name: "EqualsVS(u16)"},
		codec:     codec,
		constSlot: constSlot,
	}
}

// Init implements Operator.
func (o *EqualsVSU16) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *EqualsVSU16) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(o.inputs[0], KindEncodedU16)
	c := sp.GetConst(o.constSlot).Const
	out := NewBitSet(len(in.U16))
	if code, ok := o.codec.Encode(c.I); ok {
		want := uint16(code)
		for i, v := range in.U16 {
			out.Set(i, v == want)
		}
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
}

// EqualsVSU32 is the uint32-coded analogue of EqualsVSU8.
type EqualsVSU32 struct {
	base
	codec     IntCodec
	constSlot AnyBufferRef
}

// NewEqualsVSU32 builds an encoded-domain equality operator for a
// KindEncodedU32 input.
func NewEqualsVSU32(in, constSlot, out AnyBufferRef, codec IntCodec) *EqualsVSU32 {
	return &EqualsVSU32{
		base:      base{inputs: []AnyBufferRef{in, constSlot}, outputs: []AnyBufferRef{out}, allocates: true, name: "EqualsVS(u32)"},
		codec:     codec,
		constSlot: constSlot,
	}
}

// Init implements Operator.
func (o *EqualsVSU32) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *EqualsVSU32) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(o.inputs[0], KindEncodedU32)
	c := sp.GetConst(o.constSlot).Const
	out := NewBitSet(len(in.U32))
	if code, ok := o.codec.Encode(c.I); ok {
		want := uint32(code)
		for i, v := range in.U32 {
			out.Set(i, v == want)
		}
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
}

// compareOp distinguishes LT/GT/Equals for CompareInt -- kept as a single
// parameterized operator rather than three copies since, unlike the
// encoded-width operators above, the branch is taken once per batch (in
// Execute's outer scope would still be per row; here it is truly a
// different inner loop per op, so CompareInt switches once and runs a
// fixed loop body per instance, set at construction).
type compareOp int

const (
	cmpEquals compareOp = iota
	cmpLT
	cmpGT
)

// CompareInt compares a decoded int64 vector against an int64 constant,
// producing a Boolean mask. This is the fallback path used whenever the
// constant cannot be (or was not) lowered into an encoded comparison, and
// the only path for LT/GT: encoded ordering is not lowered without
// decoding, only encoded equality is.
type CompareInt struct {
	base
	op        compareOp
	constSlot AnyBufferRef
}

func newCompareInt(op compareOp, name string, in, constSlot, out AnyBufferRef) *CompareInt {
	return &CompareInt{
		base:      base{inputs: []AnyBufferRef{in, constSlot}, outputs: []AnyBufferRef{out}, allocates: true, name: name},
		op:        op,
		constSlot: constSlot,
	}
}

// NewEqualsInt builds a CompareInt performing int64 equality.
func NewEqualsInt(in, constSlot, out AnyBufferRef) *CompareInt {
	return newCompareInt(cmpEquals, "EqualsInt", in, constSlot, out)
}

// NewLessThanInt builds a CompareInt performing int64 `<`.
func NewLessThanInt(in, constSlot, out AnyBufferRef) *CompareInt {
	return newCompareInt(cmpLT, "LessThanInt", in, constSlot, out)
}

// NewGreaterThanInt builds a CompareInt performing int64 `>`.
func NewGreaterThanInt(in, constSlot, out AnyBufferRef) *CompareInt {
	return newCompareInt(cmpGT, "GreaterThanInt", in, constSlot, out)
}

// Init implements Operator.
func (o *CompareInt) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *CompareInt) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(o.inputs[0], KindInteger)
	c := sp.GetConst(o.constSlot).Const.I
	out := NewBitSet(len(in.Int))
	switch o.op {
	case cmpEquals:
		for i, v := range in.Int {
			out.Set(i, v == c)
		}
	case cmpLT:
		for i, v := range in.Int {
			out.Set(i, v < c)
		}
	case cmpGT:
		for i, v := range in.Int {
			out.Set(i, v > c)
		}
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
}

// EqualsStr compares a string vector against a string constant, preferring
// the dictionary-coded domain (no per-row decode) when the input is still
// carrying codes, and comparing decoded strings directly otherwise.
type EqualsStr struct {
	base
	constSlot AnyBufferRef
}

// NewEqualsStr builds a string equality operator.
func NewEqualsStr(in, constSlot, out AnyBufferRef) *EqualsStr {
	return &EqualsStr{base: base{inputs: []AnyBufferRef{in, constSlot}, outputs: []AnyBufferRef{out}, allocates: true, name: "EqualsStr"}, constSlot: constSlot}
}

// Init implements Operator.
func (o *EqualsStr) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *EqualsStr) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(o.inputs[0], KindString)
	want := sp.GetConst(o.constSlot).Const.S
	var out *BitSet
	if in.Str == nil {
		// Still dictionary-coded: look the literal up once and compare codes.
		out = NewBitSet(len(in.Codes))
		if code, ok := in.StrCodec.Encode(want); ok {
			for i, c := range in.Codes {
				out.Set(i, c == code)
			}
		}
	} else {
		out = NewBitSet(len(in.Str))
		for i, s := range in.Str {
			out.Set(i, s == want)
		}
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
}

// AdditionVS adds an int64 constant to a decoded int64 vector, producing a
// new decoded int64 buffer. Overflow wraps.
type AdditionVS struct {
	base
	constSlot AnyBufferRef
}

// NewAdditionVS builds an AdditionVS operator.
func NewAdditionVS(in, constSlot, out AnyBufferRef) *AdditionVS {
	return &AdditionVS{base: base{inputs: []AnyBufferRef{in, constSlot}, outputs: []AnyBufferRef{out}, allocates: true, name: "AdditionVS"}, constSlot: constSlot}
}

// Init implements Operator.
func (o *AdditionVS) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *AdditionVS) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(o.inputs[0], KindInteger)
	c := sp.GetConst(o.constSlot).Const.I
	out := make([]int64, len(in.Int))
	for i, v := range in.Int {
		out[i] = v + c // wraps on overflow per Go int64 semantics.
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
}

// AdditionVV adds two decoded-or-encoded int64 vectors element-wise,
// decoding either side first if needed, producing a new decoded int64
// buffer. Overflow wraps.
type AdditionVV struct {
	base
}

// NewAdditionVV builds an AdditionVV operator.
func NewAdditionVV(left, right, out AnyBufferRef) *AdditionVV {
	return &AdditionVV{base: base{inputs: []AnyBufferRef{left, right}, outputs: []AnyBufferRef{out}, allocates: true, name: "AdditionVV"}}
}

// Init implements Operator.
func (o *AdditionVV) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (o *AdditionVV) Execute(stream bool, sp *Scratchpad) {
	left := sp.Get(o.inputs[0]).DecodeInts()
	right := sp.Get(o.inputs[1]).DecodeInts()
	if len(left) != len(right) {
		execerror.Panicf("AdditionVV: operand length mismatch %d vs %d", len(left), len(right))
	}
	out := make([]int64, len(left))
	for i := range left {
		out[i] = left[i] + right[i] // wraps on overflow per Go int64 semantics.
	}
	sp.Set(o.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
}

// Negate decodes its input (if not already decoded) and negates every
// value into a fresh i64 buffer.
type Negate struct {
	base
}

// NewNegate builds a Negate operator.
func NewNegate(in, out AnyBufferRef) *Negate {
	return &Negate{base: base{inputs: []AnyBufferRef{in}, outputs: []AnyBufferRef{out}, allocates: true, name: "Negate"}}
}

// Init implements Operator.
func (n *Negate) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (n *Negate) Execute(stream bool, sp *Scratchpad) {
	in := sp.Get(n.inputs[0])
	vals := in.DecodeInts()
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = -v
	}
	sp.Set(n.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
}

// RegexMatchStr matches a compiled regex against a (decoded or
// dictionary-coded) string vector, producing a Boolean mask. The regex is
// compiled once, at planning time, and handed in already-compiled (spec
// compiled once rather than per row.
type RegexMatchStr struct {
	base
	re *regexp.Regexp
}

// NewRegexMatchStr builds a RegexMatchStr operator. Compilation failures
// are a plan-time error surfaced by the planner before the operator is
// ever constructed.
func NewRegexMatchStr(re *regexp.Regexp, in, out AnyBufferRef) *RegexMatchStr {
	return &RegexMatchStr{base: base{inputs: []AnyBufferRef{in}, outputs: []AnyBufferRef{out}, allocates: true, name: "RegexMatch(" + re.String() + ")"}, re: re}
}

// Init implements Operator.
func (r *RegexMatchStr) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (r *RegexMatchStr) Execute(stream bool, sp *Scratchpad) {
	in := sp.GetTyped(r.inputs[0], KindString)
	if in.Str != nil {
		out := NewBitSet(len(in.Str))
		for i, s := range in.Str {
			out.Set(i, r.re.MatchString(s))
		}
		sp.Set(r.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
		return
	}
	// Dictionary-coded: evaluate the regex once per distinct dictionary
	// entry instead of once per row.
	matches := make([]bool, len(in.StrCodec.Dict))
	for i, s := range in.StrCodec.Dict {
		matches[i] = r.re.MatchString(s)
	}
	out := NewBitSet(len(in.Codes))
	for i, c := range in.Codes {
		out.Set(i, matches[c])
	}
	sp.Set(r.outputs[0], &TypedVec{Kind: KindBoolean, Bool: out})
}
