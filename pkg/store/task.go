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
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/veloxdb/veloxdb/pkg/coldata"
	"github.com/veloxdb/veloxdb/pkg/sqlast"
	"github.com/veloxdb/veloxdb/pkg/util/log"
)

// Task is anything the worker pool can run to completion: an ingestion
// batch append or a query execution. Run must honor ctx cancellation at
// its own suspension points (between batches) but is not required to
// check more often than that.
type Task interface {
	Run(ctx context.Context) error
	// Name identifies the task for logging.
	Name() string
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the maximum number of tasks the pool runs concurrently.
// The default is 1 (tasks run strictly one at a time).
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// Pool runs Tasks with bounded concurrency. Each task runs to completion on
// its own goroutine; cancelling the Pool's context aborts every task at its
// next suspension point.
type Pool struct {
	workers  int
	tasksRun int64
}

// NewPool constructs a Pool, applying opts in order.
func NewPool(opts ...Option) *Pool {
	p := &Pool{workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run submits tasks to the pool and blocks until every submitted task has
// returned. Once one task returns an error, the context passed to the
// remaining tasks is canceled, and Run returns that first error.
func (p *Pool) Run(ctx context.Context, tasks ...Task) error {
	group, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.workers)

	for _, t := range tasks {
		t := t
		sem <- struct{}{}
		group.Go(func() error {
			defer func() { <-sem }()
			log.Infof(gctx, "starting task %s", t.Name())
			err := t.Run(gctx)
			atomic.AddInt64(&p.tasksRun, 1)
			if err != nil {
				log.Errorf(gctx, "task %s failed: %s", t.Name(), err)
			}
			return err
		})
	}
	return group.Wait()
}

// TasksRun reports how many tasks this pool has completed (successfully or
// not), for tests and diagnostics.
func (p *Pool) TasksRun() int64 {
	return atomic.LoadInt64(&p.tasksRun)
}

// IngestTask appends pre-built batches to a table one at a time, checking
// ctx for cancellation between batches. Batch construction (CSV decode,
// type inference) happens before the task is submitted; the task itself
// only does the atomic publish.
type IngestTask struct {
	Table   *Table
	Batches []*coldata.Batch
}

// Name implements Task.
func (t *IngestTask) Name() string { return "ingest:" + t.Table.Name() }

// Run implements Task.
func (t *IngestTask) Run(ctx context.Context) error {
	for _, b := range t.Batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.Table.Append(b)
	}
	return nil
}

// QueryTask runs one query against a table and leaves the result in
// Result once Run completes successfully.
type QueryTask struct {
	Table   *Table
	Query   *sqlast.Query
	Options QueryOptions
	Result  *QueryResult
}

// Name implements Task.
func (t *QueryTask) Name() string { return "query:" + t.Table.Name() }

// Run implements Task.
func (t *QueryTask) Run(ctx context.Context) error {
	opts := t.Options
	opts.CancelCheck = func() bool { return ctx.Err() != nil }
	res, err := RunQuery(ctx, t.Table, t.Query, opts)
	if err != nil {
		return err
	}
	t.Result = res
	return nil
}
