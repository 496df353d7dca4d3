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

// Package search ranks candidate embeddings against a query vector by cosine
// similarity.
package search

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/latent-io/latent/base/floats"
	"github.com/latent-io/latent/base/heap"
	"github.com/latent-io/latent/model/cf"
)

// Result is a ranked candidate.
type Result struct {
	Id    int64
	Score float32
}

// Cosine returns the cosine similarity between two vectors. If either vector
// has zero norm the similarity is 0, so degenerate embeddings rank last
// instead of failing. The result always lies in [-1, 1].
func Cosine(a, b []float32) float32 {
	normA, normB := floats.Norm(a), floats.Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp(floats.Dot(a, b) / (normA * normB))
}

// clamp keeps float32 rounding from pushing a similarity outside [-1, 1].
func clamp(score float32) float32 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// Rank returns the topN candidates of the table by descending cosine
// similarity to the query, skipping excluded ids. The table is scanned once
// into a bounded min-heap, so the cost is O(M log N) for M candidates.
// Ties are broken by ascending id. Fewer than topN results are returned when
// fewer eligible candidates exist.
func Rank(query []float32, candidates *cf.Table, exclude mapset.Set[int64], topN int) []Result {
	if topN <= 0 {
		return nil
	}
	queryNorm := floats.Norm(query)
	filter := heap.NewTopKFilter[int64](topN)
	for number, factors := range candidates.Factors {
		id := candidates.Index.ToId(int32(number))
		if exclude != nil && exclude.Contains(id) {
			continue
		}
		var score float32
		if queryNorm != 0 {
			if candidateNorm := floats.Norm(factors); candidateNorm != 0 {
				score = clamp(floats.Dot(query, factors) / (queryNorm * candidateNorm))
			}
		}
		filter.Push(id, score)
	}
	ids, scores := filter.PopAll()
	results := make([]Result, len(ids))
	for i := range ids {
		results[i] = Result{Id: ids[i], Score: scores[i]}
	}
	return results
}
