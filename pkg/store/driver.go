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
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/colexec"
	"github.com/veloxdb/veloxdb/pkg/colexec/execerror"
	"github.com/veloxdb/veloxdb/pkg/rawval"
	"github.com/veloxdb/veloxdb/pkg/sqlast"
)

// OpStat records one operator's contribution to a query's EXPLAIN
// breakdown: its display name and the row count its output carried.
type OpStat struct {
	Name string
	Rows int
}

// Stats accompanies every QueryResult.
type Stats struct {
	RuntimeNS   int64
	RowsScanned int64
	Breakdown   []OpStat // only populated when QueryOptions.Explain is set
}

// QueryOptions tunes one RunQuery call.
type QueryOptions struct {
	// Explain, if set, asks RunQuery to populate Stats.Breakdown with one
	// entry per operator executed, across every batch.
	Explain bool
	// CancelCheck, if non-nil, is polled between batches; a true result
	// aborts the query and discards partial results, matching the
	// between-batches-only suspension point of the scheduling model.
	CancelCheck func() bool
}

// QueryResult is the materialized answer to one query.
type QueryResult struct {
	ColNames []string
	Rows     [][]rawval.RawVal
	Stats    Stats
}

// RunQuery executes query against table's current snapshot: for each
// batch, plan, execute the operator DAG into a fresh scratchpad, and
// accumulate a partial result; then combine partials (concatenation for a
// plain select, map-merge for an aggregation), apply ORDER BY, then
// OFFSET/LIMIT, and materialize the final rows.
func RunQuery(ctx context.Context, table *Table, query *sqlast.Query, opts QueryOptions) (*QueryResult, error) {
	start := time.Now()
	batches := table.Snapshot()
	colNames := resultColumnNames(query)

	var rowsScanned int64
	var breakdown []OpStat
	recordOp := func(op colexec.Operator, sp *colexec.Scratchpad) {
		if !opts.Explain {
			return
		}
		rows := 0
		if outs := op.OutputSlots(); len(outs) > 0 {
			rows = sp.Get(outs[0]).Len()
		}
		breakdown = append(breakdown, OpStat{Name: op.String(), Rows: rows})
	}

	var rows [][]rawval.RawVal
	var err error
	if query.HasAggregate() {
		rows, err = runAggregateQuery(ctx, batches, query, opts, &rowsScanned, recordOp)
	} else {
		rows, err = runSelectQuery(ctx, batches, query, opts, &rowsScanned, recordOp)
	}
	if err != nil {
		return nil, err
	}

	if query.OrderBy != nil {
		if err := sortRows(rows, colNames, query.OrderBy); err != nil {
			return nil, err
		}
	}
	// A plain select without ORDER BY already had the window applied per
	// batch in runSelectQuery.
	if query.OrderBy != nil || query.HasAggregate() {
		rows = applyLimit(rows, query.Limit)
	}

	return &QueryResult{
		ColNames: colNames,
		Rows:     rows,
		Stats: Stats{
			RuntimeNS:   time.Since(start).Nanoseconds(),
			RowsScanned: rowsScanned,
			Breakdown:   breakdown,
		},
	}, nil
}

func runSelectQuery(
	ctx context.Context,
	batches []*coldata.Batch,
	query *sqlast.Query,
	opts QueryOptions,
	rowsScanned *int64,
	recordOp func(colexec.Operator, *colexec.Scratchpad),
) ([][]rawval.RawVal, error) {
	var rows [][]rawval.RawVal

	// With no ORDER BY, the global LIMIT/OFFSET window is a contiguous
	// range over the scan-order concatenation of every batch's filtered
	// rows, so each batch's final materialized columns can be clipped to
	// their own slice of that window via colexec.Limit before ever being
	// turned into RawVal rows -- batches entirely outside the window
	// contribute nothing and, once the window's tail is reached, the scan
	// stops early. An ORDER BY needs every row present before it can sort,
	// so in that case the window is instead applied once at the end, over
	// the fully merged and sorted result (see RunQuery/applyLimit).
	perBatchLimit := query.OrderBy == nil && query.Limit != nil
	windowEnd := -1
	if query.Limit != nil {
		windowEnd = query.Limit.Offset + query.Limit.Limit
	}
	var emitted int

	for _, batch := range batches {
		if err := checkCancel(ctx, opts); err != nil {
			return nil, err
		}

		plan, sp, err := compileAndRun(batch, query, recordOp)
		if err != nil {
			return nil, err
		}
		*rowsScanned += int64(batch.Len())

		if !perBatchLimit {
			rows = append(rows, colexec.MaterializeRows(sp, plan.SelectSlots)...)
			continue
		}

		batchRows := 0
		if len(plan.SelectSlots) > 0 {
			batchRows = sp.Get(plan.SelectSlots[0]).Len()
		}
		lo := query.Limit.Offset - emitted
		if lo < 0 {
			lo = 0
		}
		hi := windowEnd - emitted
		if hi > batchRows {
			hi = batchRows
		}
		if hi > lo {
			for _, slot := range plan.SelectSlots {
				sp.Set(slot, colexec.Limit(sp.Get(slot), lo, hi-lo))
			}
			rows = append(rows, colexec.MaterializeRows(sp, plan.SelectSlots)...)
		}
		emitted += batchRows

		if emitted >= windowEnd {
			break
		}
	}
	return rows, nil
}

// groupAcc is one distinct group's running state across batches, merged
// on the decoded representative key tuple rather than any per-batch key
// (per-batch keys are not comparable across batches -- see GroupState).
type groupAcc struct {
	key    []rawval.RawVal
	values []int64 // parallel to query.Aggregate
}

func runAggregateQuery(
	ctx context.Context,
	batches []*coldata.Batch,
	query *sqlast.Query,
	opts QueryOptions,
	rowsScanned *int64,
	recordOp func(colexec.Operator, *colexec.Scratchpad),
) ([][]rawval.RawVal, error) {
	order := make([]string, 0)
	groups := make(map[string]*groupAcc)

	for _, batch := range batches {
		if err := checkCancel(ctx, opts); err != nil {
			return nil, err
		}

		plan, sp, err := compileAndRun(batch, query, recordOp)
		if err != nil {
			return nil, err
		}
		*rowsScanned += int64(batch.Len())

		keyRows := groupKeyRows(sp, plan)
		for ai, aggSlot := range plan.AggSlots {
			aggRows := colexec.MaterializeRows(sp, []colexec.AnyBufferRef{aggSlot})
			for gi, keyRow := range keyRows {
				k := groupKeyString(keyRow)
				acc, ok := groups[k]
				if !ok {
					acc = &groupAcc{key: keyRow, values: make([]int64, len(query.Aggregate))}
					groups[k] = acc
					order = append(order, k)
				}
				acc.values[ai] += aggRows[gi][0].I
			}
		}
	}

	rows := make([][]rawval.RawVal, 0, len(order))
	for _, k := range order {
		acc := groups[k]
		row := make([]rawval.RawVal, 0, len(acc.key)+len(acc.values))
		row = append(row, acc.key...)
		for _, v := range acc.values {
			row = append(row, rawval.IntVal(v))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// groupKeyRows returns one (possibly empty) key tuple per group produced
// this batch. A query with aggregates but no GROUP BY column has no
// GroupKeySlots at all -- there is exactly one implicit group, sized off
// the first aggregate's own output rather than a key slot that doesn't
// exist.
func groupKeyRows(sp *colexec.Scratchpad, plan *colexec.Plan) [][]rawval.RawVal {
	if len(plan.GroupKeySlots) > 0 {
		return colexec.MaterializeRows(sp, plan.GroupKeySlots)
	}
	n := 0
	if len(plan.AggSlots) > 0 {
		n = sp.Get(plan.AggSlots[0]).Len()
	}
	rows := make([][]rawval.RawVal, n)
	for i := range rows {
		rows[i] = []rawval.RawVal{}
	}
	return rows
}

// compileAndRun compiles query against batch and executes the resulting
// operator DAG. Operator execution is the only place a well-typed plan can
// still panic on a programmer error (scratchpad misuse); that panic is
// recovered here and returned as a plain error to the task boundary, same
// as a compile error.
func compileAndRun(
	batch *coldata.Batch, query *sqlast.Query, recordOp func(colexec.Operator, *colexec.Scratchpad),
) (plan *colexec.Plan, sp *colexec.Scratchpad, err error) {
	planner := colexec.NewPlanner(batch)
	plan, err = planner.Compile(query)
	if err != nil {
		return nil, nil, errors.Wrap(err, "compiling query plan")
	}

	sp = colexec.NewScratchpad(plan.NumSlots)
	err = execerror.CatchVectorizedRuntimeError(func() {
		for i, op := range plan.Ops {
			op.Init(i, batch.Len(), sp)
			op.Execute(false, sp)
			recordOp(op, sp)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, sp, nil
}

func checkCancel(ctx context.Context, opts QueryOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.CancelCheck != nil && opts.CancelCheck() {
		return context.Canceled
	}
	return nil
}

// groupKeyString renders a decoded group-by tuple as a comparable string
// key for the cross-batch merge map. \x1f cannot appear in a decoded
// int64/string RawVal's natural representation, so collisions across
// distinct tuples are not a practical concern here.
func groupKeyString(tuple []rawval.RawVal) string {
	var b strings.Builder
	for _, v := range tuple {
		switch v.Kind {
		case rawval.Int:
			fmt.Fprintf(&b, "i%d\x1f", v.I)
		case rawval.Str:
			fmt.Fprintf(&b, "s%s\x1f", v.S)
		default:
			b.WriteString("n\x1f")
		}
	}
	return b.String()
}

// resultColumnNames derives the output column names: a bare column
// reference keeps its own name, any other select expression is named
// "col_N" (N counting only generated names), and each aggregate is named
// "<aggregator>_N" (N counting only that aggregator's own occurrences).
func resultColumnNames(query *sqlast.Query) []string {
	names := make([]string, 0, len(query.Select)+len(query.Aggregate))
	genCounter := 0
	for _, e := range query.Select {
		if e.Kind == sqlast.ExprColName {
			names = append(names, e.Name)
		} else {
			names = append(names, fmt.Sprintf("col_%d", genCounter))
			genCounter++
		}
	}
	aggCounters := map[string]int{}
	for _, a := range query.Aggregate {
		name := a.Aggregator.String()
		idx := aggCounters[name]
		aggCounters[name] = idx + 1
		names = append(names, fmt.Sprintf("%s_%d", name, idx))
	}
	return names
}

// sortRows stable-sorts rows by the column named in orderBy, which must be
// a bare column reference matching one of colNames -- sorting by an
// arbitrary computed expression not already present in the select list is
// not supported.
func sortRows(rows [][]rawval.RawVal, colNames []string, orderBy *sqlast.Expr) error {
	if orderBy.Kind != sqlast.ExprColName {
		return errors.New("order by must reference a selected column")
	}
	idx := -1
	for i, n := range colNames {
		if n == orderBy.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Newf("order by column %q is not in the select list", orderBy.Name)
	}
	stableSortRows(rows, idx)
	return nil
}

func applyLimit(rows [][]rawval.RawVal, limit *sqlast.Limit) [][]rawval.RawVal {
	if limit == nil {
		return rows
	}
	lo := limit.Offset
	if lo > len(rows) {
		lo = len(rows)
	}
	hi := lo + limit.Limit
	if hi > len(rows) {
		hi = len(rows)
	}
	return rows[lo:hi]
}
