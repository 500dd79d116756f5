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

package ingest

import (
	"strconv"

	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/hashutil"
)

// Extractor pulls an int64 out of a raw CSV field for one column,
// bypassing type inference entirely. Used for columns whose values need a
// transform inference can't express (timestamps, enum-to-code maps).
type Extractor func(raw string) int64

// colType accumulates, across a raw column's values, which variants have
// been observed so far: plain OR-combination, matching the narrowest
// finalize rule (any string forces a StringColumn; else any non-empty
// forces an IntColumn; all-empty finalizes to NullColumn).
type colType struct {
	sawString bool
	sawInt    bool
}

func (c colType) observe(raw string) colType {
	if raw == "" {
		return c
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		c.sawInt = true
		return c
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		c.sawInt = true
		return c
	}
	c.sawString = true
	return c
}

// rawColumn accumulates one column's raw string values across a chunk,
// tracking the observed type as it goes.
type rawColumn struct {
	typ  colType
	data []string
}

func newRawColumn(capacity int) *rawColumn {
	return &rawColumn{data: make([]string, 0, capacity)}
}

func (c *rawColumn) push(raw string) {
	c.typ = c.typ.observe(raw)
	c.data = append(c.data, raw)
}

// finalize converts the accumulated raw values into an encoded Column,
// choosing StringColumn, an offset-encoded/plain IntColumn, or an all-null
// NullColumn depending on what was observed.
func (c *rawColumn) finalize(name string) coldata.Column {
	switch {
	case c.typ.sawString:
		return buildStringColumn(name, c.data)
	case c.typ.sawInt:
		return buildIntColumn(name, c.data)
	default:
		return coldata.NewNullColumn(name, len(c.data))
	}
}

// extract converts the accumulated raw values via a user-supplied
// Extractor, always producing an (offset-encoded where possible) int
// column -- extraction bypasses the finalize type-inference path.
func (c *rawColumn) extract(name string, fn Extractor) coldata.Column {
	values := make([]int64, len(c.data))
	for i, raw := range c.data {
		values[i] = fn(raw)
	}
	return intColumnFromValues(name, values)
}

// parseIntField parses one CSV field per the same empty->0,
// int-then-float-truncation fallback rule the original ingester uses.
func parseIntField(raw string) int64 {
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// observe() already classified this field as numeric; a parse
		// failure here would mean colType and parseIntField disagree.
		return 0
	}
	return int64(f)
}

func buildIntColumn(name string, raw []string) coldata.Column {
	values := make([]int64, len(raw))
	for i, s := range raw {
		values[i] = parseIntField(s)
	}
	return intColumnFromValues(name, values)
}

func intColumnFromValues(name string, values []int64) coldata.Column {
	if len(values) == 0 {
		return coldata.NewIntColumn(name, values)
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return coldata.NewIntOffsetColumn(name, values, min, max)
}

// buildStringColumn builds a dictionary by first-seen order, hashing each
// candidate with xxhash and linear-probing the hash bucket on collision
// rather than doing an O(n) scan of Dict per row.
func buildStringColumn(name string, raw []string) coldata.Column {
	dict := make([]string, 0, len(raw)/4+1)
	index := make(map[uint64][]uint32, len(raw)/4+1)
	codes := make([]uint32, len(raw))

	for i, s := range raw {
		h := hashutil.NewDigest()
		h.WriteString(s)
		sum := h.Sum64()

		code, ok := lookupDict(index, dict, sum, s)
		if !ok {
			code = uint32(len(dict))
			dict = append(dict, s)
			index[sum] = append(index[sum], code)
		}
		codes[i] = code
	}
	return coldata.NewStringColumn(name, dict, codes)
}

func lookupDict(index map[uint64][]uint32, dict []string, sum uint64, s string) (uint32, bool) {
	for _, code := range index[sum] {
		if dict[code] == s {
			return code, true
		}
	}
	return 0, false
}
