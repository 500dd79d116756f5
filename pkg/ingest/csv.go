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

// Package ingest turns a CSV row stream into a sequence of coldata.Batch
// values, chunked to a configurable size, inferring each column's encoding
// from the values observed within its own chunk. The CSV reader itself is
// an external collaborator boundary, not the subject of this package --
// RowSource is the minimal interface the rest of the package needs from it.
package ingest

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/veloxdb/veloxdb/pkg/coldata"
)

// RowSource yields CSV rows one at a time. *csv.Reader satisfies this
// directly; it is factored out as an interface so tests can feed rows
// without a real file.
type RowSource interface {
	Read() (record []string, err error)
}

// Options configures one Load call.
type Options struct {
	// ChunkSize is the number of rows per produced Batch. Must be positive.
	ChunkSize int
	// Gzip indicates the underlying file is gzip-compressed.
	Gzip bool
	// ColumnNames overrides the inferred header row; when set, the first
	// row of input is treated as data, not a header.
	ColumnNames []string
	// Extractors maps a column name to a custom raw-field extractor,
	// bypassing type inference for that column.
	Extractors map[string]Extractor
}

// LoadFile opens filename (optionally gzip-decompressing it per
// opts.Gzip) and loads it per Load.
func LoadFile(filename string, opts Options) ([]*coldata.Batch, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", filename)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Gzip {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading gzip header of %q", filename)
		}
		defer gz.Close()
		r = gz
	}
	return Load(csv.NewReader(r), opts)
}

// Load reads rows from src until EOF, inferring a header row from the
// first record unless opts.ColumnNames is set, and returns one Batch per
// opts.ChunkSize rows (the final, possibly short, chunk is still emitted).
func Load(src RowSource, opts Options) ([]*coldata.Batch, error) {
	if opts.ChunkSize <= 0 {
		return nil, errors.Newf("ingest: chunk size must be positive, got %d", opts.ChunkSize)
	}

	colnames := opts.ColumnNames
	if colnames == nil {
		header, err := src.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading header row")
		}
		colnames = header
	}

	var batches []*coldata.Batch
	cols := newRawColumns(len(colnames), opts.ChunkSize)
	rows := 0

	for {
		record, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading row")
		}
		if len(record) != len(colnames) {
			return nil, errors.Newf("row has %d fields, header has %d", len(record), len(colnames))
		}
		for i, field := range record {
			cols[i].push(field)
		}
		rows++

		if rows == opts.ChunkSize {
			batch, err := finalizeBatch(cols, colnames, opts.Extractors)
			if err != nil {
				return nil, err
			}
			batches = append(batches, batch)
			cols = newRawColumns(len(colnames), opts.ChunkSize)
			rows = 0
		}
	}

	if rows > 0 {
		batch, err := finalizeBatch(cols, colnames, opts.Extractors)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func newRawColumns(n, chunkSize int) []*rawColumn {
	cols := make([]*rawColumn, n)
	for i := range cols {
		cols[i] = newRawColumn(chunkSize)
	}
	return cols
}

func finalizeBatch(cols []*rawColumn, colnames []string, extractors map[string]Extractor) (*coldata.Batch, error) {
	columns := make([]coldata.Column, len(cols))
	for i, c := range cols {
		name := colnames[i]
		if fn, ok := extractors[name]; ok {
			columns[i] = c.extract(name, fn)
		} else {
			columns[i] = c.finalize(name)
		}
	}
	return coldata.NewBatch(columns)
}
