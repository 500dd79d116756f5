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
	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
	"github.com/veloxdb/veloxdb/pkg/rawval"
)

// MaterializeRows decodes each of slots fully into a column of RawVal and
// transposes the result into per-row tuples, for final result assembly
// outside the execution core. Every slot must have the same row count;
// the planner guarantees this for a single plan's SelectSlots/AggSlots.
func MaterializeRows(sp *Scratchpad, slots []AnyBufferRef) [][]rawval.RawVal {
	if len(slots) == 0 {
		return nil
	}
	cols := make([][]rawval.RawVal, len(slots))
	n := 0
	for i, slot := range slots {
		cols[i] = decodeColumnToRawVals(sp.Get(slot))
		if len(cols[i]) > n {
			n = len(cols[i])
		}
	}
	rows := make([][]rawval.RawVal, n)
	for r := 0; r < n; r++ {
		row := make([]rawval.RawVal, len(slots))
		for c := range slots {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows
}

func decodeColumnToRawVals(v *TypedVec) []rawval.RawVal {
	switch v.Kind {
	case KindInteger, KindEncodedU8, KindEncodedU16, KindEncodedU32, KindEmpty:
		ints := v.DecodeInts()
		out := make([]rawval.RawVal, len(ints))
		for i, x := range ints {
			out[i] = rawval.IntVal(x)
		}
		return out
	case KindString:
		strs := v.DecodeStrings()
		out := make([]rawval.RawVal, len(strs))
		for i, s := range strs {
			out[i] = rawval.StrVal(s)
		}
		return out
	case KindBoolean:
		out := make([]rawval.RawVal, v.Bool.Len())
		for i := range out {
			out[i] = rawval.Bool(v.Bool.Get(i))
		}
		return out
	default:
		execerror.Panicf("MaterializeRows: unsupported TypedVec kind %d", v.Kind)
		return nil
	}
}
