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

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/latent-io/latent/dataset"
	"github.com/latent-io/latent/model/cf"
	"github.com/stretchr/testify/assert"
)

func trainToyModel(t *testing.T) *cf.Model {
	t.Helper()
	data, err := dataset.Build([]dataset.Interaction{
		{UserId: 1, ItemId: 1, Rating: 5},
		{UserId: 1, ItemId: 2, Rating: 3},
		{UserId: 2, ItemId: 1, Rating: 4},
		{UserId: 2, ItemId: 3, Rating: 2},
		{UserId: 3, ItemId: 2, Rating: 5},
		{UserId: 3, ItemId: 3, Rating: 4},
	}, dataset.DefaultOptions())
	assert.NoError(t, err)
	config := cf.NewConfig()
	config.NFactors = 2
	config.NEpochs = 20
	config.Reg = 0.1
	config.Seed = 42
	als, err := cf.NewALS(config)
	assert.NoError(t, err)
	model, err := als.Fit(context.Background(), data, nil)
	assert.NoError(t, err)
	return model
}

func TestRecommendForUser(t *testing.T) {
	recommender := NewRecommender(trainToyModel(t))
	results, err := recommender.RecommendForUser(1, 10)
	assert.NoError(t, err)
	// user 1 rated items 1 and 2, so only item 3 is eligible
	assert.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].Id)
	assert.GreaterOrEqual(t, results[0].Score, float32(-1))
	assert.LessOrEqual(t, results[0].Score, float32(1))
}

func TestRecommendForUser_ColdStart(t *testing.T) {
	recommender := NewRecommender(trainToyModel(t))
	_, err := recommender.RecommendForUser(99, 10)
	var coldStartErr *ColdStartError
	assert.ErrorAs(t, err, &coldStartErr)
	assert.Equal(t, "user", coldStartErr.Kind)
	assert.Equal(t, int64(99), coldStartErr.Id)
	// a cold request leaves other requests untouched
	results, err := recommender.RecommendForUser(1, 10)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRecommendForUser_FullCatalogRated(t *testing.T) {
	data, err := dataset.Build([]dataset.Interaction{
		{UserId: 1, ItemId: 1, Rating: 5},
		{UserId: 1, ItemId: 2, Rating: 3},
		{UserId: 2, ItemId: 1, Rating: 4},
	}, dataset.DefaultOptions())
	assert.NoError(t, err)
	config := cf.NewConfig()
	config.NFactors = 2
	config.NEpochs = 5
	config.Seed = 1
	als, err := cf.NewALS(config)
	assert.NoError(t, err)
	model, err := als.Fit(context.Background(), data, nil)
	assert.NoError(t, err)
	recommender := NewRecommender(model)
	// user 1 rated the entire catalog: empty result, not an error
	results, err := recommender.RecommendForUser(1, 10)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSimilarItems(t *testing.T) {
	recommender := NewRecommender(trainToyModel(t))
	results, err := recommender.SimilarItems(1, 10)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	for _, result := range results {
		assert.NotEqual(t, int64(1), result.Id)
	}

	_, err = recommender.SimilarItems(99, 10)
	var coldStartErr *ColdStartError
	assert.ErrorAs(t, err, &coldStartErr)
	assert.Equal(t, "item", coldStartErr.Kind)
}

func TestSimilarUsers(t *testing.T) {
	recommender := NewRecommender(trainToyModel(t))
	results, err := recommender.SimilarUsers(2, 10)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	for _, result := range results {
		assert.NotEqual(t, int64(2), result.Id)
	}
}

func TestPublish(t *testing.T) {
	first := trainToyModel(t)
	recommender := NewRecommender(first)
	assert.Equal(t, first.Version, recommender.Model().Version)
	second := trainToyModel(t)
	recommender.Publish(second)
	assert.Equal(t, second.Version, recommender.Model().Version)
}

func TestConcurrentQueries(t *testing.T) {
	recommender := NewRecommender(trainToyModel(t))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(userId int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := recommender.RecommendForUser(userId%3+1, 3)
				assert.NoError(t, err)
			}
		}(int64(i))
	}
	wg.Wait()
}
