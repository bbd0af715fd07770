// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// iterate holds every quantity evaluated at one point x: the raw
// problem values and the derived Lagrangian gradient used by both the
// merit function and the BFGS update.
type iterate struct {
	x     []float64
	f     float64
	g     []float64
	gradF []float64
	jacG  *mat.Dense

	// gradL is ∇f(x) - Jg(x)ᵀλ - λx, the Lagrangian gradient at the
	// current multiplier estimate.
	gradL []float64
}

// multipliers holds the current estimate of the constraint and bound
// Lagrange multipliers, carried across iterations for the Lagrangian
// gradient.
type multipliers struct {
	lambda  []float64 // one per general constraint
	lambdaX []float64 // one per variable bound
}

func newMultipliers(m, n int) *multipliers {
	return &multipliers{lambda: make([]float64, m), lambdaX: make([]float64, n)}
}

// blend applies the step-scaled convex combination
// λ ← α·λ̂ + (1−α)·λ, λₓ ← α·λ̂ₓ + (1−α)·λₓ with the QP duals
// (λ̂, λ̂ₓ), called once the line search has found the accepted step
// length α.
func (m *multipliers) blend(dualA, dualX []float64, alpha float64) {
	for i := range m.lambda {
		m.lambda[i] = alpha*dualA[i] + (1-alpha)*m.lambda[i]
	}
	for i := range m.lambdaX {
		m.lambdaX[i] = alpha*dualX[i] + (1-alpha)*m.lambdaX[i]
	}
}

// evalIterate evaluates f, g, ∇f, Jg and the Lagrangian gradient at x
// using the given multiplier estimate.
func evalIterate(b *binding, x, lambda, lambdaX []float64) (*iterate, error) {
	f, err := b.p.Object(x)
	if err != nil {
		return nil, err
	}
	gradF, err := b.gradFn(x)
	if err != nil {
		return nil, err
	}

	it := &iterate{x: x, f: f, gradF: gradF}

	if b.p.M > 0 {
		g, err := b.p.G(x)
		if err != nil {
			return nil, err
		}
		jacG, err := b.jacFn(x)
		if err != nil {
			return nil, err
		}
		it.g, it.jacG = g, jacG
	}

	it.gradL = lagrangianGradient(it, lambda, lambdaX)
	return it, nil
}

// lagrangianGradient computes ∇f - Jgᵀλ - λx.
func lagrangianGradient(it *iterate, lambda, lambdaX []float64) []float64 {
	n := len(it.gradF)
	gl := append([]float64(nil), it.gradF...)
	if it.jacG != nil {
		m, _ := it.jacG.Dims()
		for j := 0; j < m; j++ {
			lj := lambda[j]
			if lj == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				gl[i] -= lj * it.jacG.At(j, i)
			}
		}
	}
	for i := 0; i < n; i++ {
		gl[i] -= lambdaX[i]
	}
	return gl
}

// norm2 returns the Euclidean norm of v, used by the step-length and
// Lagrangian-gradient convergence tests.
func norm2(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
