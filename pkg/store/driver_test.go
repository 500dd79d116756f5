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
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/rawval"
	"github.com/veloxdb/veloxdb/pkg/sqlast"
)

func batchOf(t *testing.T, cols ...coldata.Column) *coldata.Batch {
	t.Helper()
	b, err := coldata.NewBatch(cols)
	require.NoError(t, err)
	return b
}

func rowsToStrings(rows [][]rawval.RawVal) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		s := ""
		for j, v := range row {
			if j > 0 {
				s += ","
			}
			s += v.String()
		}
		out[i] = s
	}
	return out
}

// scenario 1: SELECT a, a+b WHERE b > 15 over a single batch.
func TestRunQueryScenario1SelectWithFilter(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t,
		coldata.NewIntColumn("a", []int64{1, 2, 3}),
		coldata.NewIntColumn("b", []int64{10, 20, 30}),
	))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("a"), sqlast.Call(sqlast.Add, sqlast.Col("a"), sqlast.Col("b"))},
		Filter: sqlast.Call(sqlast.GT, sqlast.Col("b"), sqlast.Const(rawval.IntVal(15))),
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "col_0"}, res.ColNames)
	assert.Equal(t, []string{"2,22", "3,33"}, rowsToStrings(res.Rows))
	assert.Equal(t, int64(3), res.Stats.RowsScanned)
}

// scenario 2: SELECT count(a), sum(b) with no GROUP BY column -- the single
// implicit group spanning the whole batch.
func TestRunQueryScenario2AggregateWithNoGroupBy(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t,
		coldata.NewIntColumn("a", []int64{1, 2, 3}),
		coldata.NewIntColumn("b", []int64{10, 20, 30}),
	))

	q := &sqlast.Query{
		Aggregate: []sqlast.AggExpr{
			{Aggregator: sqlast.Count, Expr: sqlast.Col("a")},
			{Aggregator: sqlast.Sum, Expr: sqlast.Col("b")},
		},
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"count_0", "sum_0"}, res.ColNames)
	assert.Equal(t, []string{"3,60"}, rowsToStrings(res.Rows))
}

// scenario 3: SELECT city, count(age), sum(age) grouped across two batches.
func TestRunQueryScenario3GroupByAcrossBatches(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t,
		coldata.NewStringColumn("city", []string{"NYC", "SF"}, []uint32{0, 1}),
		coldata.NewIntColumn("age", []int64{30, 25}),
	))
	table.Append(batchOf(t,
		coldata.NewStringColumn("city", []string{"NYC"}, []uint32{0}),
		coldata.NewIntColumn("age", []int64{40}),
	))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("city")},
		Aggregate: []sqlast.AggExpr{
			{Aggregator: sqlast.Count, Expr: sqlast.Col("age")},
			{Aggregator: sqlast.Sum, Expr: sqlast.Col("age")},
		},
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "count_0", "sum_0"}, res.ColNames)

	got := rowsToStrings(res.Rows)
	sort.Strings(got)
	assert.Equal(t, []string{"NYC,2,70", "SF,1,25"}, got)
}

// scenario 4: equality against a u8-offset encoded column, lowered to the
// encoded code domain rather than decoded.
func TestRunQueryScenario4EqualityOnEncodedColumn(t *testing.T) {
	table := NewTable("t")
	col := coldata.NewIntOffsetColumn("a", []int64{1, 2, 3}, 1, 3)
	_, ok := col.(*coldata.IntOffsetColumn8)
	require.True(t, ok, "test setup expects a u8-offset column")
	table.Append(batchOf(t, col))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("a")},
		Filter: sqlast.Call(sqlast.Equals, sqlast.Col("a"), sqlast.Const(rawval.IntVal(2))),
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, rowsToStrings(res.Rows))
}

// scenario 5: LIMIT/OFFSET over three single-row batches.
func TestRunQueryScenario5LimitOffsetAcrossBatches(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1})))
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{2})))
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{3})))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("a")},
		Limit:  &sqlast.Limit{Limit: 2, Offset: 1},
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, rowsToStrings(res.Rows))
}

// scenario 6: regex match over a dictionary-coded string column.
func TestRunQueryScenario6RegexMatch(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewStringColumn("name", []string{"Al", "Bo", "An"}, []uint32{0, 1, 2})))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("name")},
		Filter: sqlast.Call(sqlast.RegexMatch, sqlast.Col("name"), sqlast.Const(rawval.StrVal("^A.*"))),
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Al", "An"}, rowsToStrings(res.Rows))
}

// Exercises colexec.Limit's per-batch clipping path directly: the window
// spans a slice in the middle of one batch and a prefix of the next,
// rather than lining up on batch boundaries.
func TestRunQueryLimitOffsetWithinAndAcrossBatch(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1, 2, 3, 4})))
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{5, 6})))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("a")},
		Limit:  &sqlast.Limit{Limit: 3, Offset: 2},
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4", "5"}, rowsToStrings(res.Rows))
}

func TestRunQueryEmptyTableProducesEmptyResult(t *testing.T) {
	table := NewTable("t")
	q := &sqlast.Query{Select: []*sqlast.Expr{sqlast.Col("a")}}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, int64(0), res.Stats.RowsScanned)
}

func TestRunQueryFilterMatchingZeroRows(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1, 2, 3})))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("a")},
		Filter: sqlast.Call(sqlast.GT, sqlast.Col("a"), sqlast.Const(rawval.IntVal(100))),
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestRunQueryFilterMatchingZeroRowsAggregateIdentity(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1, 2, 3})))

	q := &sqlast.Query{
		Filter: sqlast.Call(sqlast.GT, sqlast.Col("a"), sqlast.Const(rawval.IntVal(100))),
		Aggregate: []sqlast.AggExpr{
			{Aggregator: sqlast.Count, Expr: sqlast.Col("a")},
			{Aggregator: sqlast.Sum, Expr: sqlast.Col("a")},
		},
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0,0"}, rowsToStrings(res.Rows))
}

func TestRunQueryOffsetBeyondTotalRows(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1, 2, 3})))

	q := &sqlast.Query{
		Select: []*sqlast.Expr{sqlast.Col("a")},
		Limit:  &sqlast.Limit{Limit: 10, Offset: 100},
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestRunQueryOrderByIsStableOnTies(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t,
		coldata.NewIntColumn("k", []int64{1, 1, 1}),
		coldata.NewIntColumn("seq", []int64{10, 20, 30}),
	))

	q := &sqlast.Query{
		Select:  []*sqlast.Expr{sqlast.Col("k"), sqlast.Col("seq")},
		OrderBy: sqlast.Col("k"),
	}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1,10", "1,20", "1,30"}, rowsToStrings(res.Rows))
}

func TestRunQueryExplainRecordsOperatorBreakdown(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1, 2, 3})))

	q := &sqlast.Query{Select: []*sqlast.Expr{sqlast.Col("a")}}
	res, err := RunQuery(context.Background(), table, q, QueryOptions{Explain: true})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stats.Breakdown)
}

func TestRunQueryCompileErrorPropagates(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1})))

	q := &sqlast.Query{Select: []*sqlast.Expr{sqlast.Col("nope")}}
	_, err := RunQuery(context.Background(), table, q, QueryOptions{})
	assert.Error(t, err)
}

func TestRunQueryRespectsCancellation(t *testing.T) {
	table := NewTable("t")
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{1})))
	table.Append(batchOf(t, coldata.NewIntColumn("a", []int64{2})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &sqlast.Query{Select: []*sqlast.Expr{sqlast.Col("a")}}
	_, err := RunQuery(ctx, table, q, QueryOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
