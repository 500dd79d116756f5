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

package coldata

import "github.com/cockroachdb/errors"

// Batch is an ordered, named list of columns sharing a single logical row
// count. Batches are immutable and append-only at the table level: once
// published by ingestion they are never edited in place.
type Batch struct {
	Columns []Column
	index   map[string]int
}

// NewBatch builds a Batch from columns, validating the uniform-row-count
// and unique-name invariants from the data model.
func NewBatch(columns []Column) (*Batch, error) {
	b := &Batch{Columns: columns, index: make(map[string]int, len(columns))}
	if len(columns) == 0 {
		return b, nil
	}
	rows := columns[0].Len()
	for i, c := range columns {
		if c.Len() != rows {
			return nil, errors.Newf("column %q has %d rows, batch has %d", c.Name(), c.Len(), rows)
		}
		if _, dup := b.index[c.Name()]; dup {
			return nil, errors.Newf("duplicate column name %q in batch", c.Name())
		}
		b.index[c.Name()] = i
	}
	return b, nil
}

// Len returns the batch's row count, or 0 for a columnless batch.
func (b *Batch) Len() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// Column looks up a column by name.
func (b *Batch) Column(name string) (Column, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	return b.Columns[i], true
}

// ColumnNames returns the batch's column names in declaration order.
func (b *Batch) ColumnNames() []string {
	names := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		names[i] = c.Name()
	}
	return names
}
