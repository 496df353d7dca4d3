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

// Package dataset holds the sparse explicit-feedback observations consumed by
// the factorization solver. A dataset is built once per training run and
// discarded after factorization.
package dataset

import (
	"fmt"

	"github.com/latent-io/latent/base"
	"github.com/samber/lo"
)

// DuplicatePolicy decides what happens when the same (user, item) pair is
// rated more than once in the input sequence.
type DuplicatePolicy string

const (
	// LastWriteWins keeps the rating of the record appearing later in the
	// input sequence.
	LastWriteWins DuplicatePolicy = "last_write_wins"
	// Reject fails the build on the first duplicate pair.
	Reject DuplicatePolicy = "reject"
)

// Interaction is a single explicit-feedback observation. The timestamp is
// passed through but unused by the solver.
type Interaction struct {
	UserId    int64
	ItemId    int64
	Rating    float32
	Timestamp int64
}

// Options control validation during Build.
type Options struct {
	MinRating  float32
	MaxRating  float32
	Duplicates DuplicatePolicy
}

// DefaultOptions returns the options for 5-star ratings.
func DefaultOptions() Options {
	return Options{
		MinRating:  0.5,
		MaxRating:  5,
		Duplicates: LastWriteWins,
	}
}

// DataError reports invalid interaction data. Training aborts before any work
// when the input sequence fails validation.
type DataError struct {
	Reason string
	UserId int64
	ItemId int64
	Rating float32
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid interaction data: %s (user=%d, item=%d, rating=%g)",
		e.Reason, e.UserId, e.ItemId, e.Rating)
}

// Feedback is one observation seen from either side of the matrix: the dense
// index of the counterpart entity and the rating.
type Feedback struct {
	Index  int32
	Rating float32
}

// Rated is one observation keyed by sparse ID, for callers outside the solver.
type Rated struct {
	Id     int64
	Rating float32
}

// Dataset is the interaction store. It keeps row-major and column-major views
// of the same observations so that both half-steps of the solver read their
// side in O(1) per row. Every id present in the index has an entry in the
// feedback lists, possibly empty for entities registered without ratings.
type Dataset struct {
	UserIndex    *base.Index
	ItemIndex    *base.Index
	UserFeedback [][]Feedback
	ItemFeedback [][]Feedback
	numFeedback  int
}

// Build creates a dataset from a sequence of interactions. It fails with
// *DataError if the sequence is empty, if any rating falls outside
// [opts.MinRating, opts.MaxRating], or if a duplicate (user, item) pair
// violates opts.Duplicates.
func Build(interactions []Interaction, opts Options) (*Dataset, error) {
	if len(interactions) == 0 {
		return nil, &DataError{Reason: "empty interaction set"}
	}
	type pair struct{ user, item int64 }
	positions := make(map[pair]int, len(interactions))
	deduped := make([]Interaction, 0, len(interactions))
	for _, interaction := range interactions {
		if interaction.Rating < opts.MinRating || interaction.Rating > opts.MaxRating {
			return nil, &DataError{
				Reason: fmt.Sprintf("rating outside [%g, %g]", opts.MinRating, opts.MaxRating),
				UserId: interaction.UserId,
				ItemId: interaction.ItemId,
				Rating: interaction.Rating,
			}
		}
		key := pair{interaction.UserId, interaction.ItemId}
		if position, exist := positions[key]; exist {
			if opts.Duplicates == Reject {
				return nil, &DataError{
					Reason: "duplicate rating",
					UserId: interaction.UserId,
					ItemId: interaction.ItemId,
					Rating: interaction.Rating,
				}
			}
			deduped[position] = interaction
			continue
		}
		positions[key] = len(deduped)
		deduped = append(deduped, interaction)
	}
	dataset := &Dataset{
		UserIndex: base.NewIndex(),
		ItemIndex: base.NewIndex(),
	}
	for _, interaction := range deduped {
		dataset.AddUser(interaction.UserId)
		dataset.AddItem(interaction.ItemId)
		userIndex := dataset.UserIndex.ToNumber(interaction.UserId)
		itemIndex := dataset.ItemIndex.ToNumber(interaction.ItemId)
		dataset.UserFeedback[userIndex] = append(dataset.UserFeedback[userIndex],
			Feedback{Index: itemIndex, Rating: interaction.Rating})
		dataset.ItemFeedback[itemIndex] = append(dataset.ItemFeedback[itemIndex],
			Feedback{Index: userIndex, Rating: interaction.Rating})
		dataset.numFeedback++
	}
	return dataset, nil
}

// AddUser registers a user without ratings. Users found in interactions are
// registered by Build; this exists so that a known catalog of cold users can
// flow through the cold-start policy of the solver.
func (dataset *Dataset) AddUser(userId int64) {
	dataset.UserIndex.Add(userId)
	for int(dataset.UserIndex.Len()) > len(dataset.UserFeedback) {
		dataset.UserFeedback = append(dataset.UserFeedback, nil)
	}
}

// AddItem registers an item without ratings.
func (dataset *Dataset) AddItem(itemId int64) {
	dataset.ItemIndex.Add(itemId)
	for int(dataset.ItemIndex.Len()) > len(dataset.ItemFeedback) {
		dataset.ItemFeedback = append(dataset.ItemFeedback, nil)
	}
}

// CountUsers returns the number of distinct users.
func (dataset *Dataset) CountUsers() int {
	return int(dataset.UserIndex.Len())
}

// CountItems returns the number of distinct items.
func (dataset *Dataset) CountItems() int {
	return int(dataset.ItemIndex.Len())
}

// CountFeedback returns the number of observations.
func (dataset *Dataset) CountFeedback() int {
	return dataset.numFeedback
}

// GetUserFeedback returns items rated by each user, indexed by dense user index.
func (dataset *Dataset) GetUserFeedback() [][]Feedback {
	return dataset.UserFeedback
}

// GetItemFeedback returns users who rated each item, indexed by dense item index.
func (dataset *Dataset) GetItemFeedback() [][]Feedback {
	return dataset.ItemFeedback
}

// UserRatings returns all ratings by a user as (itemId, rating) pairs. The
// result is empty but valid for unknown users.
func (dataset *Dataset) UserRatings(userId int64) []Rated {
	userIndex := dataset.UserIndex.ToNumber(userId)
	if userIndex == base.NotId {
		return nil
	}
	return lo.Map(dataset.UserFeedback[userIndex], func(feedback Feedback, _ int) Rated {
		return Rated{Id: dataset.ItemIndex.ToId(feedback.Index), Rating: feedback.Rating}
	})
}

// ItemRatings returns all ratings of an item as (userId, rating) pairs. The
// result is empty but valid for unknown items.
func (dataset *Dataset) ItemRatings(itemId int64) []Rated {
	itemIndex := dataset.ItemIndex.ToNumber(itemId)
	if itemIndex == base.NotId {
		return nil
	}
	return lo.Map(dataset.ItemFeedback[itemIndex], func(feedback Feedback, _ int) Rated {
		return Rated{Id: dataset.UserIndex.ToId(feedback.Index), Rating: feedback.Rating}
	})
}

// UserIds returns all distinct user ids in first-seen order.
func (dataset *Dataset) UserIds() []int64 {
	return dataset.UserIndex.GetIds()
}

// ItemIds returns all distinct item ids in first-seen order.
func (dataset *Dataset) ItemIds() []int64 {
	return dataset.ItemIndex.GetIds()
}
