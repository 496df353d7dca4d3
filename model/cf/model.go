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

package cf

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
	"github.com/latent-io/latent/base"
	"github.com/latent-io/latent/base/encoding"
	"github.com/latent-io/latent/base/floats"
	"github.com/latent-io/latent/base/log"
	"go.uber.org/zap"
)

// Table maps entity ids to their latent factors. All vectors share the same
// dimension. Tables are immutable once the model is trained.
type Table struct {
	Index     *base.Index
	Factors   [][]float32
	Dimension int
}

// Get returns the factors of an entity. The second return value reports
// whether the entity exists in the table.
func (table *Table) Get(id int64) ([]float32, bool) {
	number := table.Index.ToNumber(id)
	if number == base.NotId {
		return nil, false
	}
	return table.Factors[number], true
}

// Count returns the number of entities in the table.
func (table *Table) Count() int {
	return int(table.Index.Len())
}

// Ids returns all entity ids in dense index order.
func (table *Table) Ids() []int64 {
	return table.Index.GetIds()
}

// Marshal table into byte stream.
func (table *Table) Marshal(w io.Writer) error {
	if err := table.Index.Marshal(w); err != nil {
		return errors.Trace(err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(table.Dimension)); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.WriteMatrix(w, table.Factors))
}

// Unmarshal table from byte stream.
func (table *Table) Unmarshal(r io.Reader) error {
	table.Index = base.NewIndex()
	if err := table.Index.Unmarshal(r); err != nil {
		return errors.Trace(err)
	}
	var dimension int32
	if err := binary.Read(r, binary.LittleEndian, &dimension); err != nil {
		return errors.Trace(err)
	}
	table.Dimension = int(dimension)
	table.Factors = base.NewMatrix32(table.Count(), table.Dimension)
	return errors.Trace(encoding.ReadMatrix(r, table.Factors))
}

// Model is the result of one training run: both factor tables plus training
// metadata. A model is immutable after training completes; retraining
// produces an entirely new model.
type Model struct {
	Version     string
	NFactors    int
	Epochs      int
	RMSE        float32
	TrainedAt   time.Time
	UserFactors *Table
	ItemFactors *Table

	userRated   map[int64][]int64
	userTrained *bitset.BitSet
	itemTrained *bitset.BitSet
}

// Predict the rating given by a user to an item. Returns 0 for entities
// absent from the factor tables.
func (m *Model) Predict(userId, itemId int64) float32 {
	userFactor, ok := m.UserFactors.Get(userId)
	if !ok {
		log.Logger().Warn("unknown user", zap.Int64("user_id", userId))
		return 0
	}
	itemFactor, ok := m.ItemFactors.Get(itemId)
	if !ok {
		log.Logger().Warn("unknown item", zap.Int64("item_id", itemId))
		return 0
	}
	return floats.Dot(userFactor, itemFactor)
}

// UserRated returns the ids of items the user rated during training. The
// serving layer rebuilds the exclusion set from this list on every request.
func (m *Model) UserRated(userId int64) []int64 {
	return m.userRated[userId]
}

// IsUserPredictable returns false if the user's embedding was never trained,
// which under the zero-vector cold-start policy still has a table entry.
func (m *Model) IsUserPredictable(userId int64) bool {
	number := m.UserFactors.Index.ToNumber(userId)
	if number == base.NotId {
		return false
	}
	return m.userTrained.Test(uint(number))
}

// IsItemPredictable returns false if the item's embedding was never trained.
func (m *Model) IsItemPredictable(itemId int64) bool {
	number := m.ItemFactors.Index.ToNumber(itemId)
	if number == base.NotId {
		return false
	}
	return m.itemTrained.Test(uint(number))
}

// Marshal model into byte stream.
func (m *Model) Marshal(w io.Writer) error {
	if err := encoding.WriteString(w, m.Version); err != nil {
		return errors.Trace(err)
	}
	meta := []int64{int64(m.NFactors), int64(m.Epochs), m.TrainedAt.UnixMicro()}
	if err := binary.Write(w, binary.LittleEndian, meta); err != nil {
		return errors.Trace(err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.RMSE); err != nil {
		return errors.Trace(err)
	}
	if err := m.UserFactors.Marshal(w); err != nil {
		return errors.Trace(err)
	}
	if err := m.ItemFactors.Marshal(w); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(w, m.userRated); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(w, m.userTrained); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.WriteGob(w, m.itemTrained))
}

// Unmarshal model from byte stream.
func (m *Model) Unmarshal(r io.Reader) error {
	var err error
	if m.Version, err = encoding.ReadString(r); err != nil {
		return errors.Trace(err)
	}
	meta := make([]int64, 3)
	if err = binary.Read(r, binary.LittleEndian, meta); err != nil {
		return errors.Trace(err)
	}
	m.NFactors, m.Epochs = int(meta[0]), int(meta[1])
	m.TrainedAt = time.UnixMicro(meta[2])
	if err = binary.Read(r, binary.LittleEndian, &m.RMSE); err != nil {
		return errors.Trace(err)
	}
	m.UserFactors = new(Table)
	if err = m.UserFactors.Unmarshal(r); err != nil {
		return errors.Trace(err)
	}
	m.ItemFactors = new(Table)
	if err = m.ItemFactors.Unmarshal(r); err != nil {
		return errors.Trace(err)
	}
	if err = encoding.ReadGob(r, &m.userRated); err != nil {
		return errors.Trace(err)
	}
	if err = encoding.ReadGob(r, &m.userTrained); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.ReadGob(r, &m.itemTrained))
}
