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

// Package store holds the process-wide table registry, the query driver
// that combines per-batch operator execution into a final result, and the
// Task interface ingestion and query requests run through on the worker
// pool.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/veloxdb/veloxdb/pkg/coldata"
)

// Table is an append-only collection of immutable batches. Ingestion is
// the only writer, serialized by mu; readers call Snapshot, which never
// blocks on a concurrent append and never observes a partially-appended
// batch list.
type Table struct {
	name string

	mu      sync.Mutex // serializes appends; readers never take it
	batches atomic.Pointer[[]*coldata.Batch]
}

// NewTable constructs an empty table named name.
func NewTable(name string) *Table {
	t := &Table{name: name}
	empty := make([]*coldata.Batch, 0)
	t.batches.Store(&empty)
	return t
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Append publishes b as the table's newest batch. The previous snapshot
// slice is never mutated -- Append builds a new backing array and swaps
// the pointer, so a Snapshot taken concurrently with an Append always sees
// either the old or the new list, never a mix.
func (t *Table) Append(b *coldata.Batch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := *t.batches.Load()
	next := make([]*coldata.Batch, len(old)+1)
	copy(next, old)
	next[len(old)] = b
	t.batches.Store(&next)
}

// Snapshot returns the table's current batch list. The returned slice is
// safe to range over without further synchronization: it is never mutated
// in place, only replaced wholesale by a future Append.
func (t *Table) Snapshot() []*coldata.Batch {
	return *t.batches.Load()
}

// Registry is the process-wide set of tables, keyed by name. It is the
// only global, mutable state in the system; everything else is scoped to
// a query or an ingestion task.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Table looks up a table by name.
func (r *Registry) Table(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// GetOrCreate returns the named table, creating it (empty) if it does not
// yet exist.
func (r *Registry) GetOrCreate(name string) *Table {
	r.mu.RLock()
	t, ok := r.tables[name]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[name]; ok {
		return t
	}
	t = NewTable(name)
	r.tables[name] = t
	return t
}
