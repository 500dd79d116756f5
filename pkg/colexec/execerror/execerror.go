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

// Package execerror implements the panic-and-recover convention used by the
// vectorized execution core for programmer errors: double-mutable-borrow of
// a scratchpad slot, a slot read before init, or a scratchpad type mismatch
// against a BufferRef's declared type. These are not supposed to be
// reachable once a plan has been through the planner's type checker, so
// they are not threaded through as error returns -- they panic with a
// sentinel wrapper type and are recovered exactly once, at the query task
// boundary.
package execerror

import "github.com/cockroachdb/errors"

// internalError wraps an error produced by Panic so that
// CatchVectorizedRuntimeError can distinguish "this is an execution bug we
// should recover and surface" from an unrelated runtime panic (nil
// dereference, index out of range in library code) that should keep
// unwinding.
type internalError struct {
	cause error
}

func (e *internalError) Error() string { return e.cause.Error() }
func (e *internalError) Cause() error  { return e.cause }

// Panic panics with err wrapped as an internal vectorized execution error.
// Call sites pass an errors.AssertionFailedf or errors.Newf describing the
// invariant that was violated.
func Panic(err error) {
	panic(&internalError{cause: err})
}

// Panicf is a convenience wrapper around Panic(errors.Newf(...)).
func Panicf(format string, args ...interface{}) {
	Panic(errors.Newf(format, args...))
}

// CatchVectorizedRuntimeError runs fn and converts any internalError panic
// raised by Panic/Panicf into a returned error. Panics that are not
// internalError (a real bug outside the vectorized core's own invariants)
// continue to propagate.
func CatchVectorizedRuntimeError(fn func()) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*internalError); ok {
				retErr = ie.cause
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
