// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import "gonum.org/v1/gonum/mat"

// newIdentityHessian returns the starting Hessian approximation B0 = I,
// the standard BFGS initialization absent any curvature information.
func newIdentityHessian(n int) *mat.SymDense {
	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		b.SetSym(i, i, 1)
	}
	return b
}

// powellDampingThreshold and powellDampingFactor are the fixed
// constants of Procedure 18.2 (Nocedal & Wright): they are not tuning
// knobs, just the textbook 0.2/0.8 split.
const (
	powellDampingThreshold = 0.2
	powellDampingFactor    = 0.8
)

// bfgsUpdate applies one damped-BFGS (Powell damping, Nocedal & Wright
// Procedure 18.2) rank-two update to b in place:
//
//	dx = x_{k+1} - x_k
//	r  = ∇L_{k+1} - ∇L_k     (Lagrangian gradient difference, as supplied by the caller)
//	if dxᵀr < 0.2*dxᵀB*dx: theta damps r toward B*dx so dxᵀr_damped stays positive
//	B <- B - (B*dx)(B*dx)ᵀ/(dxᵀB*dx) + (r_damped)(r_damped)ᵀ/(dxᵀr_damped)
//
// The update is skipped entirely (B unchanged) if the curvature
// condition cannot be repaired, i.e. dxᵀB*dx is not positive.
func bfgsUpdate(b *mat.SymDense, dx, r []float64) {
	n := len(dx)
	bdx := make([]float64, n)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < n; j++ {
			s += b.At(i, j) * dx[j]
		}
		bdx[i] = s
	}

	dxBdx := dot(dx, bdx)
	if dxBdx <= 0 {
		return
	}

	dxr := dot(dx, r)
	rd := r
	if dxr < powellDampingThreshold*dxBdx {
		theta := powellDampingFactor * dxBdx / (dxBdx - dxr)
		rd = make([]float64, n)
		for i := 0; i < n; i++ {
			rd[i] = theta*r[i] + (1-theta)*bdx[i]
		}
	}

	dxrd := dot(dx, rd)
	if dxrd <= 0 {
		return
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := b.At(i, j) - bdx[i]*bdx[j]/dxBdx + rd[i]*rd[j]/dxrd
			b.SetSym(i, j, v)
		}
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
