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

package floats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	assert.Equal(t, float32(32), Dot(a, b))
	assert.Panics(t, func() { Dot(a, []float32{1}) })
}

func TestNorm(t *testing.T) {
	assert.Equal(t, float32(5), Norm([]float32{3, 4}))
	assert.Zero(t, Norm([]float32{0, 0, 0}))
}

func TestAddTo(t *testing.T) {
	dst := make([]float32, 3)
	AddTo([]float32{1, 2, 3}, []float32{4, 5, 6}, dst)
	assert.Equal(t, []float32{5, 7, 9}, dst)
}

func TestSubTo(t *testing.T) {
	dst := make([]float32, 3)
	SubTo([]float32{4, 5, 6}, []float32{1, 2, 3}, dst)
	assert.Equal(t, []float32{3, 3, 3}, dst)
}

func TestMulConst(t *testing.T) {
	dst := []float32{1, 2, 3}
	MulConst(dst, 2)
	assert.Equal(t, []float32{2, 4, 6}, dst)
}

func TestMulConstTo(t *testing.T) {
	dst := make([]float32, 3)
	MulConstTo([]float32{1, 2, 3}, 3, dst)
	assert.Equal(t, []float32{3, 6, 9}, dst)
}

func TestMulConstAddTo(t *testing.T) {
	dst := []float32{1, 1, 1}
	MulConstAddTo([]float32{1, 2, 3}, 2, dst)
	assert.Equal(t, []float32{3, 5, 7}, dst)
}

func TestMatZero(t *testing.T) {
	m := [][]float32{{1, 2}, {3, 4}}
	MatZero(m)
	assert.Equal(t, [][]float32{{0, 0}, {0, 0}}, m)
}
