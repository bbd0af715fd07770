// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "testing"

func TestNNLS(t *testing.T) {
	const m, n = 3, 2

	// min ||Ax - b||, A = [[1,0],[0,1],[1,1]], b = [1,1,0].
	// Unconstrained normal-equation solution is (1/3, 1/3), already
	// non-negative, so the bound constraint never binds.
	a := []float64{1, 0, 1, 0, 1, 1} // column-major m x n
	b := []float64{1, 1, 0}

	x := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, m)
	index := make([]int, n)

	_, mode := nnls(m, n, a, m, b, x, w, z, index, 0)
	if mode != HasSolution {
		t.Fatal("nnls no solution")
	}
	if !almostEqual([]float64{1.0 / 3, 1.0 / 3}, x, 1e-12) {
		t.Fatalf("nnls solution unexpected: %v", x)
	}
}

func TestNNLSActiveBound(t *testing.T) {
	const m, n = 2, 1

	// min ||Ax - b||, A = [[1],[1]], b = [-1,-1]. Unconstrained solution
	// is x = -1, infeasible; the bound x >= 0 must be active at x = 0.
	a := []float64{1, 1}
	b := []float64{-1, -1}

	x := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, m)
	index := make([]int, n)

	_, mode := nnls(m, n, a, m, b, x, w, z, index, 0)
	if mode != HasSolution {
		t.Fatal("nnls no solution")
	}
	if !almostEqual([]float64{0}, x, 1e-12) {
		t.Fatalf("nnls solution unexpected: %v", x)
	}
}
