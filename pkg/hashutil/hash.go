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

// Package hashutil wraps xxhash as the engine's fast non-cryptographic
// hash, used to build grouping keys for tuples that are too wide or too
// sparse to pack into a single uint64. Stability of the hash across
// process runs is not required or provided.
package hashutil

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest accumulates a tuple of ints and strings into a single hash,
// reusing one xxhash.Digest per call site.
type Digest struct {
	d   xxhash.Digest
	buf [8]byte
}

// NewDigest returns a reset Digest ready to accumulate a row's tuple.
func NewDigest() *Digest {
	h := &Digest{}
	h.d.Reset()
	return h
}

// Reset clears the digest so it can be reused for the next row.
func (h *Digest) Reset() { h.d.Reset() }

// WriteInt64 mixes v into the digest.
func (h *Digest) WriteInt64(v int64) {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(v))
	_, _ = h.d.Write(h.buf[:])
}

// WriteString mixes s into the digest.
func (h *Digest) WriteString(s string) {
	_, _ = h.d.Write([]byte(s))
}

// Sum64 returns the accumulated hash.
func (h *Digest) Sum64() uint64 { return h.d.Sum64() }
