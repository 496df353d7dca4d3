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

package heap

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Elem is an element with weight.
type Elem[T constraints.Integer] struct {
	Value  T
	Weight float32
}

type _heap[T constraints.Integer] []Elem[T]

func (h _heap[T]) Len() int {
	return len(h)
}

// Less keeps the worst element at the root: lower weight first, and among
// equal weights the larger value, so the smaller value survives eviction.
func (h _heap[T]) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return h[i].Value > h[j].Value
}

func (h _heap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *_heap[T]) Push(x any) {
	*h = append(*h, x.(Elem[T]))
}

func (h *_heap[T]) Pop() any {
	old := *h
	n := len(old)
	elem := old[n-1]
	*h = old[:n-1]
	return elem
}

// TopKFilter filters out the top k elements with maximum weights. Ties on
// weight are broken towards the smaller value for deterministic output.
type TopKFilter[T constraints.Integer] struct {
	_heap[T]
	k int
}

// NewTopKFilter creates a top k filter.
func NewTopKFilter[T constraints.Integer](k int) *TopKFilter[T] {
	return &TopKFilter[T]{k: k}
}

// Push the element x onto the filter.
// The complexity is O(log k).
func (filter *TopKFilter[T]) Push(value T, weight float32) {
	heap.Push(&filter._heap, Elem[T]{value, weight})
	if filter.Len() > filter.k {
		heap.Pop(&filter._heap)
	}
}

// PopAll pops all elements in the filter with decreasing weights.
func (filter *TopKFilter[T]) PopAll() ([]T, []float32) {
	values := make([]T, filter.Len())
	weights := make([]float32, filter.Len())
	for i := len(values) - 1; i >= 0; i-- {
		elem := heap.Pop(&filter._heap).(Elem[T])
		values[i], weights[i] = elem.Value, elem.Weight
	}
	return values, weights
}
