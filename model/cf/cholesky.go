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
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

var errNotPositiveDefinite = errors.New("matrix is not positive definite")

// choleskySolve solves a x = b for a symmetric positive-definite matrix a.
// Only the lower triangle of a is read, and a is overwritten with its
// Cholesky factor L. The solution is written into x. Returns
// errNotPositiveDefinite when a pivot vanishes, which for λ>0 only happens on
// an ill-conditioned system.
func choleskySolve(a [][]float32, b, x []float32) error {
	n := len(a)
	// a = L L^T
	for j := 0; j < n; j++ {
		d := a[j][j]
		for k := 0; k < j; k++ {
			d -= a[j][k] * a[j][k]
		}
		if d <= 0 || math32.IsNaN(d) {
			return errNotPositiveDefinite
		}
		a[j][j] = math32.Sqrt(d)
		for i := j + 1; i < n; i++ {
			s := a[i][j]
			for k := 0; k < j; k++ {
				s -= a[i][k] * a[j][k]
			}
			a[i][j] = s / a[j][j]
		}
	}
	// forward substitution: L y = b
	for i := 0; i < n; i++ {
		s := b[i]
		for k := 0; k < i; k++ {
			s -= a[i][k] * x[k]
		}
		x[i] = s / a[i][i]
	}
	// backward substitution: L^T x = y
	for i := n - 1; i >= 0; i-- {
		s := x[i]
		for k := i + 1; k < n; k++ {
			s -= a[k][i] * x[k]
		}
		x[i] = s / a[i][i]
	}
	return nil
}
