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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/sqlast"
	"github.com/veloxdb/veloxdb/pkg/util/leaktest"
)

func TestPoolRunsIngestTask(t *testing.T) {
	defer leaktest.AfterTest(t)()

	table := NewTable("t")
	task := &IngestTask{Table: table, Batches: []*coldata.Batch{oneColBatch(t, []int64{1, 2}), oneColBatch(t, []int64{3})}}

	pool := NewPool()
	require.NoError(t, pool.Run(context.Background(), task))

	assert.Len(t, table.Snapshot(), 2)
	assert.Equal(t, int64(1), pool.TasksRun())
}

func TestPoolRunsQueryTask(t *testing.T) {
	defer leaktest.AfterTest(t)()

	table := NewTable("t")
	table.Append(oneColBatch(t, []int64{1, 2, 3}))

	q := &sqlast.Query{Select: []*sqlast.Expr{sqlast.Col("a")}}
	task := &QueryTask{Table: table, Query: q}

	pool := NewPool()
	require.NoError(t, pool.Run(context.Background(), task))

	require.NotNil(t, task.Result)
	assert.Equal(t, []string{"a"}, task.Result.ColNames)
	assert.Len(t, task.Result.Rows, 3)
}

func TestPoolRunsMultipleTasksConcurrently(t *testing.T) {
	defer leaktest.AfterTest(t)()

	tables := make([]*Table, 5)
	tasks := make([]Task, 5)
	for i := range tables {
		tables[i] = NewTable("t")
		tasks[i] = &IngestTask{Table: tables[i], Batches: []*coldata.Batch{oneColBatch(t, []int64{int64(i)})}}
	}

	pool := NewPool(WithWorkers(3))
	require.NoError(t, pool.Run(context.Background(), tasks...))

	for _, tbl := range tables {
		assert.Len(t, tbl.Snapshot(), 1)
	}
	assert.Equal(t, int64(5), pool.TasksRun())
}

func TestPoolPropagatesTaskError(t *testing.T) {
	defer leaktest.AfterTest(t)()

	table := NewTable("t")
	table.Append(oneColBatch(t, []int64{1}))
	q := &sqlast.Query{Select: []*sqlast.Expr{sqlast.Col("missing")}}
	task := &QueryTask{Table: table, Query: q}

	pool := NewPool()
	err := pool.Run(context.Background(), task)
	assert.Error(t, err)
}
