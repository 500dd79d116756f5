// Copyright 2018 The Cockroach Authors.
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

// Package sqlast is the shape of a parsed query as handed to the
// vectorized execution core. The SQL parser itself is out of scope for
// this repository; this package only fixes the contract
// the planner compiles against.
package sqlast

import "github.com/veloxdb/veloxdb/pkg/rawval"

// FuncType enumerates the functions a Func expression node may apply.
type FuncType int

// The function set the planner knows how to lower. Any other value is a
// plan-time "unsupported function" error.
const (
	Equals FuncType = iota
	LT
	GT
	And
	Or
	Negate
	Add
	RegexMatch
)

func (f FuncType) String() string {
	switch f {
	case Equals:
		return "="
	case LT:
		return "<"
	case GT:
		return ">"
	case And:
		return "AND"
	case Or:
		return "OR"
	case Negate:
		return "-"
	case Add:
		return "+"
	case RegexMatch:
		return "~"
	default:
		return "?"
	}
}

// ExprKind tags an Expr's variant.
type ExprKind int

const (
	// ExprConst holds a literal RawVal.
	ExprConst ExprKind = iota
	// ExprColName names a column to be resolved against a batch.
	ExprColName
	// ExprFunc applies a FuncType to one or two sub-expressions; Right is
	// nil for the unary Negate.
	ExprFunc
)

// Expr is the parsed expression tree node type: {Const(RawVal),
// ColName(string), Func(FuncType, Expr, Expr)}. JSON tags let the CLI
// accept a query as a JSON-encoded AST without writing a SQL parser,
// which is out of scope for this repository.
type Expr struct {
	Kind  ExprKind      `json:"kind"`
	Const rawval.RawVal `json:"const,omitempty"`
	Name  string        `json:"name,omitempty"`
	Func  FuncType      `json:"func,omitempty"`
	Left  *Expr         `json:"left,omitempty"`
	Right *Expr         `json:"right,omitempty"`
}

// Const builds a literal expression node.
func Const(v rawval.RawVal) *Expr { return &Expr{Kind: ExprConst, Const: v} }

// Col builds a column-reference expression node.
func Col(name string) *Expr { return &Expr{Kind: ExprColName, Name: name} }

// Call builds a binary function application node. Pass nil for right to
// build a unary node (only Negate is unary).
func Call(f FuncType, left, right *Expr) *Expr {
	return &Expr{Kind: ExprFunc, Func: f, Left: left, Right: right}
}

// Aggregator enumerates the supported aggregate functions.
type Aggregator int

const (
	// Count counts rows passing the filter within a group.
	Count Aggregator = iota
	// Sum sums a decoded int64 expression within a group.
	Sum
)

func (a Aggregator) String() string {
	if a == Count {
		return "count"
	}
	return "sum"
}

// AggExpr pairs an aggregator with the expression it aggregates.
type AggExpr struct {
	Aggregator Aggregator `json:"aggregator"`
	Expr       *Expr      `json:"expr"`
}

// Limit carries the LIMIT/OFFSET clause. A nil Query.Limit means no
// LIMIT clause; a non-nil Limit with Limit == 0 selects no rows.
type Limit struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Query is the parsed query handed to the planner: select list, filter
// (defaults to Const(true) when nil), optional aggregation, optional
// ORDER BY, and LIMIT/OFFSET.
type Query struct {
	Select    []*Expr   `json:"select"`
	Filter    *Expr     `json:"filter,omitempty"`
	Aggregate []AggExpr `json:"aggregate,omitempty"`
	OrderBy   *Expr     `json:"order_by,omitempty"`
	Limit     *Limit    `json:"limit,omitempty"`
}

// EffectiveFilter returns Filter, or Const(true) if the query has none.
func (q *Query) EffectiveFilter() *Expr {
	if q.Filter != nil {
		return q.Filter
	}
	return Const(rawval.Bool(true))
}

// HasAggregate reports whether the query performs grouped aggregation.
func (q *Query) HasAggregate() bool {
	return len(q.Aggregate) > 0
}
