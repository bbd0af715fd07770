// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import "github.com/nlpkit/sqp/qp"

// Options configures the solver. Fields must be set before the first
// call to Solve and are treated as frozen afterwards.
type Options struct {
	// MaxIter bounds the number of SQP iterations.
	MaxIter int
	// MaxIterLS bounds the number of trial step lengths evaluated in one
	// line search; each rejected trial multiplies the step by Tau.
	MaxIterLS int
	// TolDX is the convergence tolerance on the step norm.
	TolDX float64
	// TolGL is the convergence tolerance on the Lagrangian gradient norm.
	TolGL float64
	// Sigma weights the quadratic term pᵀBp in the μ lower bound
	// (Nocedal & Wright eq. 18.36).
	Sigma float64
	// Rho is the slack held below 1 in the μ lower bound's
	// denominator, 0 < Rho < 1.
	Rho float64
	// MuSafety scales the μ lower bound so the merit function keeps a
	// safety margin above the theoretical minimum.
	MuSafety float64
	// Eta is the Armijo sufficient-decrease coefficient.
	Eta float64
	// Tau is the Armijo backtracking contraction factor, 0 < Tau < 1.
	Tau float64
	// HessianApproximation selects "bfgs" (default) or "exact".
	HessianApproximation string
	// InfBound marks a bound as absent when its magnitude is at least
	// this large. Defaults to 1e10.
	InfBound float64
	// FiniteDiffStep, when non-zero, enables a central-difference
	// fallback for any missing analytic gradient/Jacobian using this
	// relative step size.
	FiniteDiffStep float64
	// QP overrides the default dense active-set QP solver.
	QP qp.Solver
	// Logger receives structured iteration and monitor records.
	Logger Logger
	// Monitor selects which quantities are logged at debug level.
	Monitor Monitor
	// Observer is invoked once per accepted iteration.
	Observer Observer
}

// DefaultOptions returns the option set the original CasADi SQP
// binding used as its built-in defaults.
func DefaultOptions() Options {
	return Options{
		MaxIter:              100,
		MaxIterLS:            100,
		TolDX:                1e-12,
		TolGL:                1e-12,
		Sigma:                1.0,
		Rho:                  0.5,
		MuSafety:             1.1,
		Eta:                  0.0001,
		Tau:                  0.2,
		HessianApproximation: "bfgs",
		InfBound:             1e10,
	}
}

func (o *Options) setDefaults() {
	d := DefaultOptions()
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.MaxIterLS <= 0 {
		o.MaxIterLS = d.MaxIterLS
	}
	if o.TolDX <= 0 {
		o.TolDX = d.TolDX
	}
	if o.TolGL <= 0 {
		o.TolGL = d.TolGL
	}
	if o.Sigma <= 0 {
		o.Sigma = d.Sigma
	}
	if o.Rho <= 0 {
		o.Rho = d.Rho
	}
	if o.MuSafety <= 0 {
		o.MuSafety = d.MuSafety
	}
	if o.Eta <= 0 {
		o.Eta = d.Eta
	}
	if o.Tau <= 0 {
		o.Tau = d.Tau
	}
	if o.HessianApproximation == "" {
		o.HessianApproximation = d.HessianApproximation
	}
	if o.InfBound <= 0 {
		o.InfBound = d.InfBound
	}
	if o.QP == nil {
		o.QP = qp.DenseSolver{}
	}
	if o.Logger == nil {
		o.Logger = defaultLogger()
	}
}
