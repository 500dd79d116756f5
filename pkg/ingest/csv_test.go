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

package ingest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxdb/veloxdb/pkg/coldata"
)

// sliceSource feeds pre-split CSV records from a slice, satisfying
// RowSource without touching a real file.
type sliceSource struct {
	rows [][]string
	pos  int
}

func (s *sliceSource) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func TestLoadInfersTypesAndChunks(t *testing.T) {
	src := &sliceSource{rows: [][]string{
		{"city", "age"},
		{"NYC", "30"},
		{"SF", "25"},
		{"NYC", "40"},
	}}
	batches, err := Load(src, Options{ChunkSize: 2})
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, 2, batches[0].Len())
	assert.Equal(t, 1, batches[1].Len())

	city, ok := batches[0].Column("city")
	require.True(t, ok)
	sc, ok := city.(*coldata.StringColumn)
	require.True(t, ok, "expected city to infer as a string column, got %T", city)
	assert.Equal(t, []string{"NYC", "SF"}, sc.Decode())

	age, ok := batches[0].Column("age")
	require.True(t, ok)
	assert.Equal(t, []int64{30, 25}, age.(interface{ Decode() []int64 }).Decode())
}

func TestLoadAllNullColumn(t *testing.T) {
	src := &sliceSource{rows: [][]string{
		{"a"},
		{""},
		{""},
	}}
	batches, err := Load(src, Options{ChunkSize: 10})
	require.NoError(t, err)
	require.Len(t, batches, 1)

	col, ok := batches[0].Column("a")
	require.True(t, ok)
	_, isNull := col.(*coldata.NullColumn)
	assert.True(t, isNull, "expected an all-empty column to finalize as NullColumn, got %T", col)
}

func TestLoadColumnNamesOverrideSkipsHeaderInference(t *testing.T) {
	src := &sliceSource{rows: [][]string{
		{"1", "2"},
		{"3", "4"},
	}}
	batches, err := Load(src, Options{ChunkSize: 10, ColumnNames: []string{"x", "y"}})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].Len())
	assert.Equal(t, []string{"x", "y"}, batches[0].ColumnNames())
}

func TestLoadExtractorBypassesInference(t *testing.T) {
	src := &sliceSource{rows: [][]string{
		{"code"},
		{"A"},
		{"B"},
		{"A"},
	}}
	codes := map[string]int64{"A": 1, "B": 2}
	batches, err := Load(src, Options{
		ChunkSize:  10,
		Extractors: map[string]Extractor{"code": func(raw string) int64 { return codes[raw] }},
	})
	require.NoError(t, err)
	require.Len(t, batches, 1)

	col, ok := batches[0].Column("code")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 1}, col.(interface{ Decode() []int64 }).Decode())
}

func TestLoadRejectsRowWithWrongFieldCount(t *testing.T) {
	src := &sliceSource{rows: [][]string{
		{"a", "b"},
		{"1"},
	}}
	_, err := Load(src, Options{ChunkSize: 10})
	assert.Error(t, err)
}

func TestLoadEmptyInputProducesNoBatches(t *testing.T) {
	src := &sliceSource{rows: nil}
	batches, err := Load(src, Options{ChunkSize: 10})
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestLoadRejectsNonPositiveChunkSize(t *testing.T) {
	src := &sliceSource{rows: [][]string{{"a"}}}
	_, err := Load(src, Options{ChunkSize: 0})
	assert.Error(t, err)
}

func TestParseIntFieldTruncatesFloat(t *testing.T) {
	assert.Equal(t, int64(0), parseIntField(""))
	assert.Equal(t, int64(42), parseIntField("42"))
	assert.Equal(t, int64(3), parseIntField("3.9"))
}
