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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopKFilter(t *testing.T) {
	filter := NewTopKFilter[int64](3)
	filter.Push(10, 0.1)
	filter.Push(20, 0.9)
	filter.Push(30, 0.4)
	filter.Push(40, 0.8)
	filter.Push(50, 0.2)
	values, weights := filter.PopAll()
	assert.Equal(t, []int64{20, 40, 30}, values)
	assert.Equal(t, []float32{0.9, 0.8, 0.4}, weights)
}

func TestTopKFilter_Ties(t *testing.T) {
	filter := NewTopKFilter[int64](2)
	filter.Push(5, 0.5)
	filter.Push(3, 0.5)
	filter.Push(4, 0.5)
	values, _ := filter.PopAll()
	// equal weights keep the smaller ids, in ascending order
	assert.Equal(t, []int64{3, 4}, values)
}

func TestTopKFilter_Underfilled(t *testing.T) {
	filter := NewTopKFilter[int64](10)
	filter.Push(1, 0.3)
	filter.Push(2, 0.7)
	values, weights := filter.PopAll()
	assert.Equal(t, []int64{2, 1}, values)
	assert.Equal(t, []float32{0.7, 0.3}, weights)
}
