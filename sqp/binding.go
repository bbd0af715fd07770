// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import (
	"errors"
	"fmt"
	"math"

	"github.com/nlpkit/sqp/numdiff"
	"gonum.org/v1/gonum/mat"
)

// Objective evaluates f(x).
type Objective func(x []float64) (f float64, err error)

// Gradient evaluates ∇f(x). Optional: when nil, Init wires a
// central-difference fallback if Options.FiniteDiffStep is set.
type Gradient func(x []float64) (grad []float64, err error)

// Constraint evaluates g(x) ∈ ℝᵐ.
type Constraint func(x []float64) (g []float64, err error)

// Jacobian evaluates the constraint Jacobian ∂g/∂x. Optional, same
// fallback policy as Gradient.
type Jacobian func(x []float64) (jac *mat.Dense, err error)

// HessianFunc2 evaluates the Hessian of the objective alone, scaled
// by sigma (the objective weight in the Lagrangian).
type HessianFunc2 func(x []float64, sigma float64) (*mat.SymDense, error)

// HessianFunc3 evaluates the Hessian of the full Lagrangian
// f·sigma - λᵀg, given the current constraint multipliers.
type HessianFunc3 func(x, lambda []float64, sigma float64) (*mat.SymDense, error)

// Problem binds the callbacks, dimensions, and bounds of one
// nonlinear program. A Problem may be reused by any number of
// solvers as long as none mutate shared state concurrently.
type Problem struct {
	N, M, Meq int

	Object Objective
	Grad   Gradient
	G      Constraint
	J      Jacobian
	// H is optional: nil (finite Hessian unavailable — BFGS mode is
	// required), a HessianFunc2, or a HessianFunc3.
	H any

	LBG, UBG []float64
	LBX, UBX []float64

	InfBound float64
}

// binding is the resolved, validated form of a Problem produced by
// Init: every capability that Options.HessianApproximation and the
// finite-difference fallback require is filled in and arity-checked
// exactly once, rather than re-inspected every iteration.
type binding struct {
	p        *Problem
	gradFn   Gradient
	jacFn    Jacobian
	hess2    HessianFunc2
	hess3    HessianFunc3
	hasExact bool
	infBound float64
}

func (p *Problem) init(exactRequired bool, fdStep float64) (*binding, error) {
	switch {
	case p.N <= 0:
		return nil, errors.New("sqp: problem dimension must be positive")
	case p.Meq > p.M:
		return nil, errors.New("sqp: equality count must not exceed constraint count")
	case p.Object == nil:
		return nil, errors.New("sqp: objective function is required")
	case p.M > 0 && p.G == nil:
		return nil, errors.New("sqp: constraint function is required when M > 0")
	case len(p.LBX) != p.N || len(p.UBX) != p.N:
		return nil, errors.New("sqp: variable bound length must equal N")
	case len(p.LBG) != p.M || len(p.UBG) != p.M:
		return nil, errors.New("sqp: constraint bound length must equal M")
	}

	infBound := p.InfBound
	if infBound <= 0 {
		infBound = 1e10
	}

	b := &binding{p: p, infBound: infBound}

	if p.Grad != nil {
		b.gradFn = p.Grad
	} else if fdStep > 0 {
		b.gradFn = numdiffGradient(p.Object, p.N, fdStep)
	} else {
		return nil, errors.New("sqp: objective gradient is required (set Grad or Options.FiniteDiffStep)")
	}

	if p.M > 0 {
		if p.J != nil {
			b.jacFn = p.J
		} else if fdStep > 0 {
			b.jacFn = numdiffJacobian(p.G, p.N, p.M, fdStep)
		} else {
			return nil, errors.New("sqp: constraint Jacobian is required (set J or Options.FiniteDiffStep)")
		}
	}

	switch h := p.H.(type) {
	case HessianFunc2:
		b.hess2, b.hasExact = h, true
	case HessianFunc3:
		b.hess3, b.hasExact = h, true
	case nil:
		if exactRequired {
			return nil, &Error{Status: MissingHessian}
		}
	default:
		return nil, fmt.Errorf("sqp: unsupported Hessian callback type %T", h)
	}

	return b, nil
}

func (b *binding) evalHessian(x, lambda []float64, sigma float64) (*mat.SymDense, error) {
	switch {
	case b.hess3 != nil:
		return b.hess3(x, lambda, sigma)
	case b.hess2 != nil:
		return b.hess2(x, sigma)
	default:
		return nil, errors.New("sqp: exact Hessian requested but not bound")
	}
}

// clipInitial repairs an initial point that falls outside the
// variable bounds by clamping it in place, mirroring the bound repair
// the dense QP adapter performs on every subproblem solution.
func clipInitial(x, lbx, ubx []float64, infBound float64) {
	for i := range x {
		if !math.IsNaN(lbx[i]) && lbx[i] > -infBound && x[i] < lbx[i] {
			x[i] = lbx[i]
		}
		if !math.IsNaN(ubx[i]) && ubx[i] < infBound && x[i] > ubx[i] {
			x[i] = ubx[i]
		}
	}
}

func numdiffGradient(f Objective, n int, step float64) Gradient {
	return func(x []float64) ([]float64, error) {
		var evalErr error
		spec := numdiff.ApproxSpec{
			N: n, M: 1, Method: numdiff.Central, RelStep: step,
			Object: func(xi, fi []float64) {
				v, err := f(xi)
				if err != nil {
					evalErr = err
				}
				fi[0] = v
			},
		}
		diff := make([]float64, n)
		x0 := append([]float64(nil), x...)
		if err := spec.Diff(x0, diff); err != nil {
			return nil, err
		}
		if evalErr != nil {
			return nil, evalErr
		}
		return diff, nil
	}
}

func numdiffJacobian(g Constraint, n, m int, step float64) Jacobian {
	return func(x []float64) (*mat.Dense, error) {
		var evalErr error
		spec := numdiff.ApproxSpec{
			N: n, M: m, Method: numdiff.Central, RelStep: step,
			Object: func(xi, fi []float64) {
				v, err := g(xi)
				if err != nil {
					evalErr = err
					return
				}
				copy(fi, v)
			},
		}
		diff := make([]float64, n*m)
		x0 := append([]float64(nil), x...)
		if err := spec.Diff(x0, diff); err != nil {
			return nil, err
		}
		if evalErr != nil {
			return nil, evalErr
		}
		jac := mat.NewDense(m, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				jac.Set(j, i, diff[i+j*n])
			}
		}
		return jac, nil
	}
}
