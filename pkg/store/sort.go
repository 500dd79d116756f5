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

package store

import (
	"sort"

	"github.com/veloxdb/veloxdb/pkg/rawval"
)

// stableSortRows sorts rows in place by the value at column idx, ascending,
// nulls first. Ties preserve relative order, matching the within-group row
// order guarantee a caller combining per-batch results would expect.
func stableSortRows(rows [][]rawval.RawVal, idx int) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rawValLess(rows[i][idx], rows[j][idx])
	})
}

func rawValLess(a, b rawval.RawVal) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case rawval.Int:
		return a.I < b.I
	case rawval.Str:
		return a.S < b.S
	default:
		return false
	}
}
