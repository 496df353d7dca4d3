// Copyright 2026 latent Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"encoding/binary"
	"io"

	"github.com/juju/errors"
)

// NotId represents an ID that doesn't exist.
const NotId = int32(-1)

// Index manages the map between sparse ids and dense indices. A sparse ID is
// a user ID or item ID. The dense index is the internal row number optimized
// for faster parameter access and less memory usage.
type Index struct {
	Numbers map[int64]int32 // sparse ID -> dense index
	Ids     []int64         // dense index -> sparse ID
}

// NewIndex creates an Index.
func NewIndex() *Index {
	index := new(Index)
	index.Numbers = make(map[int64]int32)
	index.Ids = make([]int64, 0)
	return index
}

// Len returns the number of indexed ids.
func (index *Index) Len() int32 {
	return int32(len(index.Ids))
}

// Add adds a new ID to the index.
func (index *Index) Add(id int64) {
	if _, exist := index.Numbers[id]; !exist {
		index.Numbers[id] = int32(len(index.Ids))
		index.Ids = append(index.Ids, id)
	}
}

// ToNumber converts a sparse ID to a dense index. NotId is returned for
// unknown ids.
func (index *Index) ToNumber(id int64) int32 {
	if number, exist := index.Numbers[id]; exist {
		return number
	}
	return NotId
}

// ToId converts a dense index to a sparse ID.
func (index *Index) ToId(number int32) int64 {
	return index.Ids[number]
}

// GetIds returns all indexed ids in dense index order.
func (index *Index) GetIds() []int64 {
	return index.Ids
}

// Marshal index into byte stream.
func (index *Index) Marshal(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, index.Len()); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(binary.Write(w, binary.LittleEndian, index.Ids))
}

// Unmarshal index from byte stream.
func (index *Index) Unmarshal(r io.Reader) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return errors.Trace(err)
	}
	index.Ids = make([]int64, n)
	if err := binary.Read(r, binary.LittleEndian, index.Ids); err != nil {
		return errors.Trace(err)
	}
	index.Numbers = make(map[int64]int32, n)
	for number, id := range index.Ids {
		index.Numbers[id] = int32(number)
	}
	return nil
}
