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

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/veloxdb/veloxdb/pkg/ingest"
	"github.com/veloxdb/veloxdb/pkg/store"
)

var (
	ingestTable     string
	ingestChunkSize int
	ingestGzip      bool
	ingestColumns   string
	ingestWorkers   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "load a CSV file into a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTable, "table", "", "table name to append to (required)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 65536, "rows per batch")
	ingestCmd.Flags().BoolVar(&ingestGzip, "gzip", false, "input file is gzip-compressed")
	ingestCmd.Flags().StringVar(&ingestColumns, "columns", "", "comma-separated column name override (skips header inference)")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 1, "worker pool concurrency")
	_ = ingestCmd.MarkFlagRequired("table")
}

func runIngest(cmd *cobra.Command, args []string) error {
	opts := ingest.Options{ChunkSize: ingestChunkSize, Gzip: ingestGzip}
	if ingestColumns != "" {
		opts.ColumnNames = strings.Split(ingestColumns, ",")
	}

	batches, err := ingest.LoadFile(args[0], opts)
	if err != nil {
		return err
	}

	table := registry.GetOrCreate(ingestTable)
	pool := store.NewPool(store.WithWorkers(ingestWorkers))
	task := &store.IngestTask{Table: table, Batches: batches}
	if err := pool.Run(cmd.Context(), task); err != nil {
		return err
	}

	cmd.Printf("ingested %d batch(es) into %q\n", len(batches), ingestTable)
	return nil
}
