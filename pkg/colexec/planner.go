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

// Package colexec implements the vectorized execution core: the
// scratchpad, the TypedVec runtime buffer union, every vector operator,
// and the planner that lowers a parsed query into an operator DAG for a
// single batch. Query-level orchestration across batches (combine,
// order, limit, offset, row materialization) lives in package store,
// which drives this package one batch at a time.
package colexec

import (
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/coltypes"
	"github.com/veloxdb/veloxdb/pkg/rawval"
	"github.com/veloxdb/veloxdb/pkg/sqlast"
)

// Plan is the compiled operator DAG for one batch, plus the slot ids the
// driver needs to read the result out of the Scratchpad after running it.
type Plan struct {
	Ops []Operator

	NumSlots int

	// SelectSlots/SelectTypes has one entry per Query.Select expression,
	// already filtered if the query has a non-trivial WHERE and no
	// aggregation.
	SelectSlots []AnyBufferRef
	SelectTypes []coltypes.T

	// Populated only when the query aggregates.
	HasAggregate  bool
	GroupKeySlots []AnyBufferRef // one per Select expr, the group's decoded representative value
	AggSlots      []AnyBufferRef // one per Query.Aggregate entry

	// FilterMatched is true unless the filter trivially compiles to
	// Const(true), in which case there is no runtime mask at all and
	// every row is considered to pass.
	FilterMatched bool
	FilterSlot    AnyBufferRef

	state *GroupState // retained so the driver can read group count directly if needed
}

// Planner compiles one Query against one Batch's columns into a Plan. A
// Planner is not reused across batches -- Compile is called once per
// batch, consuming the batch's specific columns and codecs.
type Planner struct {
	batch    *coldata.Batch
	ops      []Operator
	next     AnyBufferRef
	colCache map[string]scanResult
}

type scanResult struct {
	slot AnyBufferRef
	typ  coltypes.T
}

// NewPlanner constructs a Planner for a single batch.
func NewPlanner(batch *coldata.Batch) *Planner {
	return &Planner{batch: batch, colCache: make(map[string]scanResult)}
}

func (p *Planner) alloc() AnyBufferRef {
	s := p.next
	p.next++
	return s
}

func (p *Planner) add(op Operator) AnyBufferRef {
	p.ops = append(p.ops, op)
	out := op.OutputSlots()
	if len(out) == 0 {
		return 0
	}
	return out[0]
}

// Compile lowers query against the planner's batch into a Plan, or
// returns a plan-time error: unknown column, unsupported function, type
// mismatch, or regex compile failure.
func (p *Planner) Compile(query *sqlast.Query) (*Plan, error) {
	plan := &Plan{HasAggregate: query.HasAggregate()}

	filterExpr := query.EffectiveFilter()
	if isLiteralTrue(filterExpr) {
		plan.FilterMatched = false
	} else {
		slot, typ, err := p.compileExpr(filterExpr)
		if err != nil {
			return nil, err
		}
		if typ != coltypes.Bool {
			return nil, errors.Newf("filter expression must be boolean, got %s", typ)
		}
		plan.FilterMatched = true
		plan.FilterSlot = slot
	}

	selectRaw := make([]AnyBufferRef, len(query.Select))
	selectTypes := make([]coltypes.T, len(query.Select))
	for i, e := range query.Select {
		slot, typ, err := p.compileExpr(e)
		if err != nil {
			return nil, err
		}
		selectRaw[i] = slot
		selectTypes[i] = typ
	}

	filtered := func(slot AnyBufferRef) AnyBufferRef {
		if !plan.FilterMatched {
			return slot
		}
		out := p.alloc()
		return p.add(NewFilter(slot, plan.FilterSlot, out))
	}

	if !plan.HasAggregate {
		plan.SelectSlots = make([]AnyBufferRef, len(selectRaw))
		for i, slot := range selectRaw {
			plan.SelectSlots[i] = filtered(slot)
		}
		plan.SelectTypes = selectTypes
		plan.Ops = p.ops
		plan.NumSlots = int(p.next)
		return plan, nil
	}

	// Aggregation path: the select list supplies the grouping columns.
	groupColSlots := make([]AnyBufferRef, len(selectRaw))
	cardinalities := make([]uint64, len(selectRaw))
	for i, slot := range selectRaw {
		groupColSlots[i] = filtered(slot)
		cardinalities[i] = cardinalityOf(selectTypes[i], p.batch, query.Select[i])
	}

	keySlot := p.alloc()
	p.add(NewGroupingKey(groupColSlots, cardinalities, keySlot))
	if len(groupColSlots) == 0 {
		// With no group-by column the key has one entry per batch row;
		// filter it so it lines up with the filtered aggregate inputs.
		keySlot = filtered(keySlot)
	}

	state := NewGroupState()
	plan.state = state
	plan.AggSlots = make([]AnyBufferRef, len(query.Aggregate))
	plan.GroupKeySlots = make([]AnyBufferRef, len(selectRaw))

	for i, agg := range query.Aggregate {
		var valueSlot AnyBufferRef
		var execAgg Aggregator
		switch agg.Aggregator {
		case sqlast.Count:
			execAgg = AggCount
			// Count needs no decoded value slot; reuse the key slot as a
			// placeholder input so the operator's wiring stays uniform.
			valueSlot = keySlot
		case sqlast.Sum:
			execAgg = AggSum
			slot, typ, err := p.compileExpr(agg.Expr)
			if err != nil {
				return nil, err
			}
			if typ == coltypes.Str || typ == coltypes.Bool {
				return nil, errors.Newf("sum() over %s expression is a type mismatch", typ)
			}
			valueSlot = filtered(slot)
		default:
			return nil, errors.Newf("unsupported aggregator %v", agg.Aggregator)
		}

		aggOut := p.alloc()
		emitKeys := i == 0
		var keysOut []AnyBufferRef
		if emitKeys {
			keysOut = make([]AnyBufferRef, len(selectRaw))
			for gi := range keysOut {
				keysOut[gi] = p.alloc()
			}
		}
		op := NewHashAggregate(execAgg, keySlot, valueSlot, groupColSlots, state, emitKeys, aggOut, keysOut)
		p.ops = append(p.ops, op)
		plan.AggSlots[i] = aggOut
		if emitKeys {
			plan.GroupKeySlots = keysOut
		}
	}

	plan.Ops = p.ops
	plan.NumSlots = int(p.next)
	return plan, nil
}

func isLiteralTrue(e *sqlast.Expr) bool {
	return e.Kind == sqlast.ExprConst && e.Const.Kind == rawval.Int && e.Const.I != 0
}

// cardinalityOf estimates a select expression's distinct-value count for
// the grouping-key packing decision: known for a bare column
// reference whose encoding bounds it, 0 (unknown) otherwise.
func cardinalityOf(typ coltypes.T, batch *coldata.Batch, e *sqlast.Expr) uint64 {
	if e.Kind != sqlast.ExprColName {
		return 0
	}
	col, ok := batch.Column(e.Name)
	if !ok {
		return 0
	}
	switch c := col.(type) {
	case *coldata.IntOffsetColumn8, *coldata.IntOffsetColumn16, *coldata.IntOffsetColumn32:
		_ = c
		return typ.MaxUint() + 1
	case *coldata.StringColumn:
		return uint64(len(c.Dict))
	default:
		return 0
	}
}

// compileExpr lowers one Expr node to a scratchpad slot, recursing
// through Func nodes, recursing into sub-expressions as needed.
func (p *Planner) compileExpr(e *sqlast.Expr) (AnyBufferRef, coltypes.T, error) {
	switch e.Kind {
	case sqlast.ExprConst:
		out := p.alloc()
		p.add(NewConstLoad(e.Const, out))
		return out, constType(e.Const), nil

	case sqlast.ExprColName:
		if cached, ok := p.colCache[e.Name]; ok {
			return cached.slot, cached.typ, nil
		}
		col, ok := p.batch.Column(e.Name)
		if !ok {
			return 0, 0, errors.Newf("unknown column %q", e.Name)
		}
		out := p.alloc()
		p.add(NewColumnScan(col, out))
		typ := col.Type()
		p.colCache[e.Name] = scanResult{slot: out, typ: typ}
		return out, typ, nil

	case sqlast.ExprFunc:
		return p.compileFunc(e)

	default:
		return 0, 0, errors.Newf("unsupported expression kind %d", e.Kind)
	}
}

func constType(v rawval.RawVal) coltypes.T {
	switch v.Kind {
	case rawval.Str:
		return coltypes.Str
	case rawval.Null:
		return coltypes.Null
	default:
		return coltypes.Int64
	}
}

func (p *Planner) compileFunc(e *sqlast.Expr) (AnyBufferRef, coltypes.T, error) {
	switch e.Func {
	case sqlast.Equals, sqlast.LT, sqlast.GT:
		return p.compileCompare(e)
	case sqlast.And:
		return p.compileBoolOp(e, true)
	case sqlast.Or:
		return p.compileBoolOp(e, false)
	case sqlast.Negate:
		inSlot, typ, err := p.compileExpr(e.Left)
		if err != nil {
			return 0, 0, err
		}
		if typ == coltypes.Str || typ == coltypes.Bool {
			return 0, 0, errors.Newf("negate over %s expression is a type mismatch", typ)
		}
		out := p.alloc()
		p.add(NewNegate(inSlot, out))
		return out, coltypes.Int64, nil
	case sqlast.Add:
		return p.compileAdd(e)
	case sqlast.RegexMatch:
		return p.compileRegex(e)
	default:
		return 0, 0, errors.Newf("unsupported function %v", e.Func)
	}
}

func (p *Planner) compileBoolOp(e *sqlast.Expr, and bool) (AnyBufferRef, coltypes.T, error) {
	lSlot, lTyp, err := p.compileExpr(e.Left)
	if err != nil {
		return 0, 0, err
	}
	rSlot, rTyp, err := p.compileExpr(e.Right)
	if err != nil {
		return 0, 0, err
	}
	if lTyp != coltypes.Bool || rTyp != coltypes.Bool {
		return 0, 0, errors.Newf("AND/OR require boolean operands, got %s and %s", lTyp, rTyp)
	}
	out := p.alloc()
	if and {
		p.add(NewAndBV(lSlot, rSlot, out))
	} else {
		p.add(NewOrBV(lSlot, rSlot, out))
	}
	return out, coltypes.Bool, nil
}

func (p *Planner) compileAdd(e *sqlast.Expr) (AnyBufferRef, coltypes.T, error) {
	if e.Left.Kind != sqlast.ExprConst && e.Right.Kind != sqlast.ExprConst {
		return p.compileAddVV(e)
	}

	vecExpr, constExpr := e.Left, e.Right
	if constExpr.Kind != sqlast.ExprConst && vecExpr.Kind == sqlast.ExprConst {
		vecExpr, constExpr = constExpr, vecExpr
	}
	if constExpr.Const.Kind != rawval.Int {
		return 0, 0, errors.Newf("add() over %s constant is a type mismatch", constType(constExpr.Const))
	}

	vecSlot, vecTyp, err := p.compileExpr(vecExpr)
	if err != nil {
		return 0, 0, err
	}
	if vecTyp == coltypes.Str || vecTyp == coltypes.Bool {
		return 0, 0, errors.Newf("add() over %s expression is a type mismatch", vecTyp)
	}

	decodedSlot := vecSlot
	if vecTyp != coltypes.Int64 {
		out := p.alloc()
		p.add(NewDecode(vecSlot, out))
		decodedSlot = out
	}

	constSlot := p.alloc()
	p.add(NewConstLoad(constExpr.Const, constSlot))

	out := p.alloc()
	p.add(NewAdditionVS(decodedSlot, constSlot, out))
	return out, coltypes.Int64, nil
}

// compileAddVV lowers Func(Add, col, col) -- both operands non-constant --
// to AdditionVV, decoding either operand first if it isn't already a plain
// int64 vector.
func (p *Planner) compileAddVV(e *sqlast.Expr) (AnyBufferRef, coltypes.T, error) {
	leftSlot, leftTyp, err := p.compileExpr(e.Left)
	if err != nil {
		return 0, 0, err
	}
	if leftTyp == coltypes.Str || leftTyp == coltypes.Bool {
		return 0, 0, errors.Newf("add() over %s expression is a type mismatch", leftTyp)
	}
	rightSlot, rightTyp, err := p.compileExpr(e.Right)
	if err != nil {
		return 0, 0, err
	}
	if rightTyp == coltypes.Str || rightTyp == coltypes.Bool {
		return 0, 0, errors.Newf("add() over %s expression is a type mismatch", rightTyp)
	}

	out := p.alloc()
	p.add(NewAdditionVV(leftSlot, rightSlot, out))
	return out, coltypes.Int64, nil
}

func (p *Planner) compileCompare(e *sqlast.Expr) (AnyBufferRef, coltypes.T, error) {
	left, right, fn := e.Left, e.Right, e.Func
	if right.Kind != sqlast.ExprConst && left.Kind == sqlast.ExprConst {
		left, right = right, left
		if fn == sqlast.LT {
			fn = sqlast.GT
		} else if fn == sqlast.GT {
			fn = sqlast.LT
		}
	}
	if right.Kind != sqlast.ExprConst {
		return 0, 0, errors.New("unsupported function: comparisons require a constant operand")
	}

	leftSlot, leftTyp, err := p.compileExpr(left)
	if err != nil {
		return 0, 0, err
	}
	c := right.Const

	switch leftTyp {
	case coltypes.Str:
		if fn != sqlast.Equals {
			return 0, 0, errors.New("unsupported function: string columns only support equality")
		}
		if c.Kind != rawval.Str {
			return 0, 0, errors.Newf("comparing string column to %s constant is a type mismatch", constType(c))
		}
		constSlot := p.alloc()
		p.add(NewConstLoad(c, constSlot))
		out := p.alloc()
		p.add(NewEqualsStr(leftSlot, constSlot, out))
		return out, coltypes.Bool, nil

	case coltypes.Uint8, coltypes.Uint16, coltypes.Uint32:
		if c.Kind != rawval.Int {
			return 0, 0, errors.Newf("comparing integer column to %s constant is a type mismatch", constType(c))
		}
		if fn == sqlast.Equals {
			constSlot := p.alloc()
			p.add(NewConstLoad(c, constSlot))
			out := p.alloc()
			switch leftTyp {
			case coltypes.Uint8:
				codec := p.codecFor(left, leftTyp)
				p.add(NewEqualsVSU8(leftSlot, constSlot, out, codec))
			case coltypes.Uint16:
				codec := p.codecFor(left, leftTyp)
				p.add(NewEqualsVSU16(leftSlot, constSlot, out, codec))
			default:
				codec := p.codecFor(left, leftTyp)
				p.add(NewEqualsVSU32(leftSlot, constSlot, out, codec))
			}
			return out, coltypes.Bool, nil
		}
		// Ordering on an encoded column: decode, then compare as int64.
		decSlot := p.alloc()
		p.add(NewDecode(leftSlot, decSlot))
		return p.compileIntCompare(decSlot, c, fn)

	case coltypes.Int64:
		if c.Kind != rawval.Int {
			return 0, 0, errors.Newf("comparing integer column to %s constant is a type mismatch", constType(c))
		}
		return p.compileIntCompare(leftSlot, c, fn)

	default:
		return 0, 0, errors.Newf("comparison over %s is a type mismatch", leftTyp)
	}
}

func (p *Planner) compileIntCompare(slot AnyBufferRef, c rawval.RawVal, fn sqlast.FuncType) (AnyBufferRef, coltypes.T, error) {
	constSlot := p.alloc()
	p.add(NewConstLoad(c, constSlot))
	out := p.alloc()
	switch fn {
	case sqlast.Equals:
		p.add(NewEqualsInt(slot, constSlot, out))
	case sqlast.LT:
		p.add(NewLessThanInt(slot, constSlot, out))
	case sqlast.GT:
		p.add(NewGreaterThanInt(slot, constSlot, out))
	}
	return out, coltypes.Bool, nil
}

// codecFor rebuilds the IntCodec for an already-scanned encoded column
// expression. Only ColName expressions reach here (compileCompare only
// takes this branch for Uint8/16/32 leftTyp, which only ColumnScan
// produces), so the lookup against the batch is always valid.
func (p *Planner) codecFor(e *sqlast.Expr, typ coltypes.T) IntCodec {
	col, _ := p.batch.Column(e.Name)
	switch c := col.(type) {
	case *coldata.IntOffsetColumn8:
		return IntCodec{Offset: c.Offset, Width: typ}
	case *coldata.IntOffsetColumn16:
		return IntCodec{Offset: c.Offset, Width: typ}
	case *coldata.IntOffsetColumn32:
		return IntCodec{Offset: c.Offset, Width: typ}
	default:
		return IntCodec{Width: typ}
	}
}

func (p *Planner) compileRegex(e *sqlast.Expr) (AnyBufferRef, coltypes.T, error) {
	if e.Right == nil || e.Right.Kind != sqlast.ExprConst || e.Right.Const.Kind != rawval.Str {
		return 0, 0, errors.New("regex match requires a string literal pattern")
	}
	slot, typ, err := p.compileExpr(e.Left)
	if err != nil {
		return 0, 0, err
	}
	if typ != coltypes.Str {
		return 0, 0, errors.Newf("regex match over %s expression is a type mismatch", typ)
	}
	re, err := regexp.Compile(e.Right.Const.S)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid regex %q", e.Right.Const.S)
	}
	out := p.alloc()
	p.add(NewRegexMatchStr(re, slot, out))
	return out, coltypes.Bool, nil
}
