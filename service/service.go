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

// Package service answers recommendation queries over a published model.
package service

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/latent-io/latent/base/log"
	"github.com/latent-io/latent/model/cf"
	"github.com/latent-io/latent/search"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ColdStartError reports a query for an entity absent from the trained factor
// tables. It is local to the request and does not affect other queries or the
// published model.
type ColdStartError struct {
	Kind string // "user" or "item"
	Id   int64
}

func (e *ColdStartError) Error() string {
	return fmt.Sprintf("cold start: %s %d has no trained embedding", e.Kind, e.Id)
}

// Recommender serves nearest-neighbour queries over the latest published
// model. The model is held behind an atomic pointer: publication is a single
// swap, published tables are never mutated, so any number of concurrent
// queries proceed without locking.
type Recommender struct {
	model atomic.Pointer[cf.Model]
}

// NewRecommender creates a recommender serving the given model.
func NewRecommender(model *cf.Model) *Recommender {
	r := new(Recommender)
	r.Publish(model)
	return r
}

// Publish atomically replaces the served model. In-flight queries keep
// reading the model they loaded; new queries observe the new one.
func (r *Recommender) Publish(model *cf.Model) {
	r.model.Store(model)
	log.Logger().Info("publish model",
		zap.String("version", model.Version),
		zap.Int("users", model.UserFactors.Count()),
		zap.Int("items", model.ItemFactors.Count()))
}

// Model returns the currently published model.
func (r *Recommender) Model() *cf.Model {
	return r.model.Load()
}

// RecommendForUser returns up to topN items for a user by cosine similarity
// between the user embedding and all item embeddings, excluding items the
// user already rated. Fails with *ColdStartError for users without a trained
// embedding.
func (r *Recommender) RecommendForUser(userId int64, topN int) ([]search.Result, error) {
	model := r.model.Load()
	query, ok := model.UserFactors.Get(userId)
	if !ok {
		return nil, &ColdStartError{Kind: "user", Id: userId}
	}
	exclude := mapset.NewThreadUnsafeSet(model.UserRated(userId)...)
	return search.Rank(query, model.ItemFactors, exclude, topN), nil
}

// SimilarItems returns up to topN items closest to the given item, excluding
// the item itself.
func (r *Recommender) SimilarItems(itemId int64, topN int) ([]search.Result, error) {
	model := r.model.Load()
	query, ok := model.ItemFactors.Get(itemId)
	if !ok {
		return nil, &ColdStartError{Kind: "item", Id: itemId}
	}
	return search.Rank(query, model.ItemFactors, mapset.NewThreadUnsafeSet(itemId), topN), nil
}

// SimilarUsers returns up to topN users closest to the given user, excluding
// the user itself.
func (r *Recommender) SimilarUsers(userId int64, topN int) ([]search.Result, error) {
	model := r.model.Load()
	query, ok := model.UserFactors.Get(userId)
	if !ok {
		return nil, &ColdStartError{Kind: "user", Id: userId}
	}
	return search.Rank(query, model.UserFactors, mapset.NewThreadUnsafeSet(userId), topN), nil
}
