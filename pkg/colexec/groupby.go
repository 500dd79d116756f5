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
	"github.com/veloxdb/veloxdb/pkg/hashutil"
	"github.com/veloxdb/veloxdb/pkg/rawval"
)

// GroupingKey computes a per-row integer identifying the row's group,
// from one or more already-computed expression-result slots.
// Three strategies, cheapest first:
//
//  1. a single offset-encoded integer column: the key is the column's own
//     code, with no extra work;
//  2. several columns whose cardinalities multiply to something that fits
//     in 64 bits: codes are packed via mixed-radix multiplication;
//  3. otherwise: a non-cryptographic hash (xxhash) of the decoded tuple.
//
// The key produced here is only used as a per-batch hash map identifier.
// Cross-batch combination of groups is always done by the driver on
// decoded representative values (see HashAggregate), so it is safe for
// strategies 1 and 2 to produce keys that are meaningless outside this
// batch (different batches may dictionary-encode the same string
// differently).
type GroupingKey struct {
	base
	cardinalities []uint64 // parallel to inputs; 0 means "unknown cardinality"
	batchSize     int
}

// NewGroupingKey builds a GroupingKey over groupCols, with cardinalities
// supplying each column's known cardinality (0 if unbounded/unknown, e.g.
// an already-decoded int64 column), as determined by the planner from the
// column's encoding. groupCols may be empty: a query with aggregates but no
// GROUP BY columns groups every row of the batch into a single group.
func NewGroupingKey(groupCols []AnyBufferRef, cardinalities []uint64, out AnyBufferRef) *GroupingKey {
	return &GroupingKey{
		base:          base{inputs: groupCols, outputs: []AnyBufferRef{out}, allocates: true, name: "GroupingKey"},
		cardinalities: cardinalities,
	}
}

// Init implements Operator.
func (g *GroupingKey) Init(stageIndex, batchSize int, sp *Scratchpad) { g.batchSize = batchSize }

// Execute implements Operator.
func (g *GroupingKey) Execute(stream bool, sp *Scratchpad) {
	cols := make([]*TypedVec, len(g.inputs))
	for i, slot := range g.inputs {
		cols[i] = sp.Get(slot)
	}
	if len(cols) == 0 {
		out := make([]int64, g.batchSize)
		sp.Set(g.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
		return
	}
	n := 0
	for _, c := range cols {
		if l := c.Len(); l > 0 {
			n = l
			break
		}
	}

	if len(cols) == 1 && cols[0].Kind == KindEncodedU8 {
		out := make([]int64, len(cols[0].U8))
		for i, c := range cols[0].U8 {
			out[i] = int64(c)
		}
		sp.Set(g.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
		return
	}
	if len(cols) == 1 && cols[0].Kind == KindEncodedU16 {
		out := make([]int64, len(cols[0].U16))
		for i, c := range cols[0].U16 {
			out[i] = int64(c)
		}
		sp.Set(g.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
		return
	}
	if len(cols) == 1 && cols[0].Kind == KindEncodedU32 {
		out := make([]int64, len(cols[0].U32))
		for i, c := range cols[0].U32 {
			out[i] = int64(c)
		}
		sp.Set(g.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
		return
	}

	if packed, ok := g.tryPack(cols, n); ok {
		sp.Set(g.outputs[0], packed)
		return
	}

	out := make([]int64, n)
	digest := hashutil.NewDigest()
	for row := 0; row < n; row++ {
		digest.Reset()
		for _, c := range cols {
			switch c.Kind {
			case KindInteger:
				digest.WriteInt64(c.Int[row])
			case KindEncodedU8:
				digest.WriteInt64(c.U8Codec.Decode(uint64(c.U8[row])))
			case KindEncodedU16:
				digest.WriteInt64(c.U16Codec.Decode(uint64(c.U16[row])))
			case KindEncodedU32:
				digest.WriteInt64(c.U32Codec.Decode(uint64(c.U32[row])))
			case KindString:
				if c.Str != nil {
					digest.WriteString(c.Str[row])
				} else {
					digest.WriteString(c.StrCodec.Decode(c.Codes[row]))
				}
			case KindEmpty:
				digest.WriteInt64(0)
			default:
				execerror.Panicf("GroupingKey: unsupported TypedVec kind %d", c.Kind)
			}
		}
		out[row] = int64(digest.Sum64())
	}
	sp.Set(g.outputs[0], &TypedVec{Kind: KindInteger, Int: out})
}

// tryPack attempts the mixed-radix packing strategy; ok is false if any
// column's cardinality is unknown or the product overflows 64 bits.
func (g *GroupingKey) tryPack(cols []*TypedVec, n int) (*TypedVec, bool) {
	if len(cols) < 2 {
		return nil, false
	}
	strides := make([]uint64, len(cols))
	stride := uint64(1)
	for i, card := range g.cardinalities {
		if card == 0 {
			return nil, false
		}
		strides[i] = stride
		next := stride * card
		if next/card != stride || next == 0 {
			return nil, false // overflow
		}
		stride = next
	}

	out := make([]int64, n)
	for row := 0; row < n; row++ {
		var key uint64
		for i, c := range cols {
			var code uint64
			switch c.Kind {
			case KindEncodedU8:
				code = uint64(c.U8[row])
			case KindEncodedU16:
				code = uint64(c.U16[row])
			case KindEncodedU32:
				code = uint64(c.U32[row])
			case KindString:
				if c.Str == nil {
					code = uint64(c.Codes[row])
				} else {
					return nil, false
				}
			default:
				return nil, false
			}
			key += code * strides[i]
		}
		out[row] = int64(key)
	}
	return &TypedVec{Kind: KindInteger, Int: out}, true
}

// groupAccum is the per-group accumulator state for one aggregator.
type groupAccum struct {
	count int64
	sum   int64
}

// GroupState is the per-batch hash map from a GroupingKey's per-row key to
// a slot position, shared by every HashAggregate operator compiled for the
// same query so that all aggregators over the same grouping agree on
// group order: every aggregator for the same grouping reuses the same
// key order.
type GroupState struct {
	index map[int64]int
	order []int64
	// rep holds, for each group in order, the decoded group-by column
	// values captured the first time that group was seen -- this is what
	// HashAggregate emits as its "distinct-keys slot".
	rep [][]rawval.RawVal
}

// NewGroupState allocates an empty GroupState for one batch's execution.
func NewGroupState() *GroupState {
	return &GroupState{index: make(map[int64]int)}
}

// posFor returns the slot position for key, assigning repVals as that
// group's representative row the first time key is seen.
func (s *GroupState) posFor(key int64, repVals []rawval.RawVal) int {
	if i, ok := s.index[key]; ok {
		return i
	}
	i := len(s.order)
	s.order = append(s.order, key)
	s.rep = append(s.rep, repVals)
	s.index[key] = i
	return i
}

// HashAggregate maintains one accumulator per distinct group and, for the
// first aggregator sharing a GroupState, also the distinct representative
// group-by values in first-seen order.
type HashAggregate struct {
	base
	agg           Aggregator
	keySlot       AnyBufferRef
	valueSlot     AnyBufferRef // only read when agg == AggSum
	groupColSlots []AnyBufferRef
	state         *GroupState
	emitKeys      bool
	keysOutSlots  []AnyBufferRef // one per groupColSlot, only written if emitKeys

	accums []groupAccum
}

// Aggregator is the operator-level counterpart of sqlast.Aggregator; the
// planner maps one onto the other, and HashAggregate only needs to know
// Count vs Sum, not the rest of the parsed query shape.
type Aggregator int

const (
	// AggCount counts rows passing the filter within a group.
	AggCount Aggregator = iota
	// AggSum sums a decoded int64 expression within a group.
	AggSum
)

// NewHashAggregate builds a HashAggregate operator. keysOutSlots is empty
// unless emitKeys is true, in which case it must have one slot per
// groupColSlot.
func NewHashAggregate(
	agg Aggregator,
	keySlot, valueSlot AnyBufferRef,
	groupColSlots []AnyBufferRef,
	state *GroupState,
	emitKeys bool,
	aggOutSlot AnyBufferRef,
	keysOutSlots []AnyBufferRef,
) *HashAggregate {
	inputs := append([]AnyBufferRef{keySlot, valueSlot}, groupColSlots...)
	outputs := append([]AnyBufferRef{aggOutSlot}, keysOutSlots...)
	return &HashAggregate{
		base:          base{inputs: inputs, outputs: outputs, allocates: true, name: "HashAggregate(" + aggName(agg) + ")"},
		agg:           agg,
		keySlot:       keySlot,
		valueSlot:     valueSlot,
		groupColSlots: groupColSlots,
		state:         state,
		emitKeys:      emitKeys,
		keysOutSlots:  keysOutSlots,
	}
}

func aggName(a Aggregator) string {
	if a == AggCount {
		return "count"
	}
	return "sum"
}

// Init implements Operator.
func (h *HashAggregate) Init(stageIndex, batchSize int, sp *Scratchpad) {}

// Execute implements Operator.
func (h *HashAggregate) Execute(stream bool, sp *Scratchpad) {
	keys := sp.GetTyped(h.keySlot, KindInteger).Int

	var vals []int64
	if h.agg == AggSum {
		vals = sp.Get(h.valueSlot).DecodeInts()
	}

	groupCols := make([]*TypedVec, len(h.groupColSlots))
	for i, slot := range h.groupColSlots {
		groupCols[i] = sp.Get(slot)
	}

	if len(h.groupColSlots) == 0 {
		// The single implicit group exists even when no row passes the
		// filter, so count and sum report 0 rather than no group at all.
		h.state.posFor(0, nil)
	}

	for row, key := range keys {
		pos := h.state.posFor(key, decodeRow(groupCols, row))
		for len(h.accums) <= pos {
			h.accums = append(h.accums, groupAccum{})
		}
		switch h.agg {
		case AggCount:
			h.accums[pos].count++
		case AggSum:
			h.accums[pos].sum += vals[row]
		}
	}

	out := make([]int64, len(h.state.order))
	for i := range out {
		if i < len(h.accums) {
			if h.agg == AggCount {
				out[i] = h.accums[i].count
			} else {
				out[i] = h.accums[i].sum
			}
		}
	}
	sp.Set(h.outputs[0], &TypedVec{Kind: KindInteger, Int: out})

	if h.emitKeys {
		for ci := range h.groupColSlots {
			col := make([]rawval.RawVal, len(h.state.rep))
			for gi, rep := range h.state.rep {
				col[gi] = rep[ci]
			}
			sp.Set(h.keysOutSlots[ci], rawValColumnToTypedVec(col))
		}
	}
}

func decodeRow(cols []*TypedVec, row int) []rawval.RawVal {
	out := make([]rawval.RawVal, len(cols))
	for i, c := range cols {
		switch c.Kind {
		case KindInteger:
			out[i] = rawval.IntVal(c.Int[row])
		case KindEncodedU8:
			out[i] = rawval.IntVal(c.U8Codec.Decode(uint64(c.U8[row])))
		case KindEncodedU16:
			out[i] = rawval.IntVal(c.U16Codec.Decode(uint64(c.U16[row])))
		case KindEncodedU32:
			out[i] = rawval.IntVal(c.U32Codec.Decode(uint64(c.U32[row])))
		case KindString:
			if c.Str != nil {
				out[i] = rawval.StrVal(c.Str[row])
			} else {
				out[i] = rawval.StrVal(c.StrCodec.Decode(c.Codes[row]))
			}
		case KindEmpty:
			out[i] = rawval.NullVal
		default:
			execerror.Panicf("HashAggregate: unsupported group column kind %d", c.Kind)
		}
	}
	return out
}

// rawValColumnToTypedVec materializes a []rawval.RawVal group-by
// representative column as a TypedVec for downstream row materialization;
// it assumes (as the planner guarantees) that every RawVal in col shares a
// kind, matching the original column's type.
func rawValColumnToTypedVec(col []rawval.RawVal) *TypedVec {
	if len(col) == 0 {
		return &TypedVec{Kind: KindEmpty}
	}
	switch col[0].Kind {
	case rawval.Str:
		out := make([]string, len(col))
		for i, v := range col {
			out[i] = v.S
		}
		return &TypedVec{Kind: KindString, Str: out}
	default:
		out := make([]int64, len(col))
		for i, v := range col {
			out[i] = v.I
		}
		return &TypedVec{Kind: KindInteger, Int: out}
	}
}
