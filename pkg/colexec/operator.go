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

// Operator is the vector execution primitive. A plan for one
// batch is a DAG of Operators wired together through scratchpad slots.
// Init runs once per batch; Execute may run multiple times for operators
// that stream, following the stream contract documented on Execute.
type Operator interface {
	// Init prepares the operator for a batch of batchSize rows.
	// stageIndex is this operator's position in topological order, useful
	// for debug display only. The operators in this package install their
	// output slots in Execute (via Scratchpad.Set), not in Init.
	Init(stageIndex int, batchSize int, sp *Scratchpad)
	// Execute runs the operator once. stream is true when this operator
	// is being driven in a streaming window together with its inputs; a
	// streaming operator must clear its output before appending in that
	// case. Non-streaming execute produces the operator's full output in
	// a single call.
	Execute(stream bool, sp *Scratchpad)
	// InputSlots lists the slots this operator reads.
	InputSlots() []AnyBufferRef
	// OutputSlots lists the slots this operator writes.
	OutputSlots() []AnyBufferRef
	// StreamsInput reports whether this operator can consume its input in
	// windows rather than requiring the full materialized input up front.
	StreamsInput() bool
	// StreamsOutput reports whether this operator can append to its
	// output in windows rather than producing it all at once.
	StreamsOutput() bool
	// Allocates reports whether Execute allocates a new output buffer
	// (vs. reusing/aliasing an input's backing array).
	Allocates() bool
	// String is the operator's display name, used by EXPLAIN-style
	// debugging (store.QueryOptions.Explain).
	String() string
}

// base is embedded by every concrete operator to carry the bookkeeping
// common to all of them, mirroring a familiar OneInputNode /
// TwoInputNode embedding convention.
type base struct {
	inputs, outputs []AnyBufferRef
	streamsInput    bool
	streamsOutput   bool
	allocates       bool
	name            string
}

func (b *base) InputSlots() []AnyBufferRef  { return b.inputs }
func (b *base) OutputSlots() []AnyBufferRef { return b.outputs }
func (b *base) StreamsInput() bool          { return b.streamsInput }
func (b *base) StreamsOutput() bool         { return b.streamsOutput }
func (b *base) Allocates() bool             { return b.allocates }
func (b *base) String() string              { return b.name }
