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

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var interactions = []Interaction{
	{UserId: 1, ItemId: 1, Rating: 5, Timestamp: 100},
	{UserId: 1, ItemId: 2, Rating: 3, Timestamp: 101},
	{UserId: 2, ItemId: 1, Rating: 4, Timestamp: 102},
	{UserId: 2, ItemId: 3, Rating: 2, Timestamp: 103},
	{UserId: 3, ItemId: 2, Rating: 5, Timestamp: 104},
	{UserId: 3, ItemId: 3, Rating: 4, Timestamp: 105},
}

func TestBuild(t *testing.T) {
	data, err := Build(interactions, DefaultOptions())
	assert.NoError(t, err)
	assert.Equal(t, 3, data.CountUsers())
	assert.Equal(t, 3, data.CountItems())
	assert.Equal(t, 6, data.CountFeedback())
	assert.Equal(t, []int64{1, 2, 3}, data.UserIds())
	assert.Equal(t, []int64{1, 2, 3}, data.ItemIds())
	assert.Equal(t, []Rated{{Id: 1, Rating: 5}, {Id: 2, Rating: 3}}, data.UserRatings(1))
	assert.Equal(t, []Rated{{Id: 1, Rating: 5}, {Id: 2, Rating: 4}}, data.ItemRatings(1))
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil, DefaultOptions())
	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "empty interaction set", dataErr.Reason)
}

func TestBuild_RatingOutOfRange(t *testing.T) {
	_, err := Build([]Interaction{{UserId: 1, ItemId: 1, Rating: 6}}, DefaultOptions())
	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, int64(1), dataErr.UserId)
	assert.Equal(t, float32(6), dataErr.Rating)

	_, err = Build([]Interaction{{UserId: 1, ItemId: 1, Rating: 0}}, DefaultOptions())
	assert.ErrorAs(t, err, &dataErr)
}

func TestBuild_LastWriteWins(t *testing.T) {
	data, err := Build([]Interaction{
		{UserId: 1, ItemId: 1, Rating: 2},
		{UserId: 1, ItemId: 1, Rating: 4},
	}, DefaultOptions())
	assert.NoError(t, err)
	assert.Equal(t, 1, data.CountFeedback())
	assert.Equal(t, []Rated{{Id: 1, Rating: 4}}, data.UserRatings(1))
}

func TestBuild_RejectDuplicates(t *testing.T) {
	opts := DefaultOptions()
	opts.Duplicates = Reject
	_, err := Build([]Interaction{
		{UserId: 1, ItemId: 1, Rating: 2},
		{UserId: 1, ItemId: 1, Rating: 4},
	}, opts)
	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "duplicate rating", dataErr.Reason)
	assert.Equal(t, int64(1), dataErr.UserId)
	assert.Equal(t, int64(1), dataErr.ItemId)
}

func TestUnknownIds(t *testing.T) {
	data, err := Build(interactions, DefaultOptions())
	assert.NoError(t, err)
	assert.Empty(t, data.UserRatings(99))
	assert.Empty(t, data.ItemRatings(99))
}

func TestAddColdEntities(t *testing.T) {
	data, err := Build(interactions, DefaultOptions())
	assert.NoError(t, err)
	data.AddUser(10)
	data.AddItem(20)
	assert.Equal(t, 4, data.CountUsers())
	assert.Equal(t, 4, data.CountItems())
	assert.Equal(t, 6, data.CountFeedback())
	assert.Empty(t, data.UserRatings(10))
	assert.Empty(t, data.ItemRatings(20))
}
