// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqp implements a dense Sequential Quadratic Programming
// solver for smooth constrained nonlinear programs
//
//	minimize    f(x)
//	subject to  lbg ≤ g(x) ≤ ubg
//	            lbx ≤  x  ≤ ubx
//
// finding a local KKT point by iterating: build a quadratic model of
// the Lagrangian, solve it as a bound-and-linearly-constrained QP via
// the qp package, perform an ℓ1-merit line search, and refresh the
// Hessian approximation with a damped BFGS update (or an exact
// user-supplied Hessian).
package sqp

import "fmt"

// Status reports why the main loop stopped.
type Status int

const (
	// running is the zero value and never returned from Solve.
	running Status = iota
	// SmallStep means ||x_{k+1} - x_k|| fell below Options.TolDX.
	SmallStep
	// SmallGrad means ||∇L(x,λ)|| fell below Options.TolGL.
	SmallGrad
	// IterLimit means Options.MaxIter was reached without convergence.
	IterLimit
	// UserStop means the Observer requested early termination.
	UserStop
	// LineSearchFailed means the Armijo backtracking exceeded Options.MaxIterLS.
	LineSearchFailed
	// MissingHessian means HessianApproximation is "exact" but Problem.H is nil.
	MissingHessian
	// QPFailure means the subproblem solver could not produce a step.
	QPFailure
)

func (s Status) String() string {
	switch s {
	case SmallStep:
		return "small-step"
	case SmallGrad:
		return "small-grad"
	case IterLimit:
		return "iter-limit"
	case UserStop:
		return "user-stop"
	case LineSearchFailed:
		return "line-search-failed"
	case MissingHessian:
		return "missing-hessian"
	case QPFailure:
		return "qp-failure"
	default:
		return "running"
	}
}

// Error wraps a fatal Status with the last iterate reached before the
// solve was abandoned, so a caller can inspect how far the search got.
type Error struct {
	Status Status
	Iter   int
	X      []float64
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sqp: %s at iter %d: %v", e.Status, e.Iter, e.Cause)
	}
	return fmt.Sprintf("sqp: %s at iter %d", e.Status, e.Iter)
}

func (e *Error) Unwrap() error { return e.Cause }

// Monitor is a bitmask selecting which quantities are written through
// Options.Logger at debug level, purely for diagnostic observation —
// it never changes solver behavior.
type Monitor uint

const (
	MonitorEvalF Monitor = 1 << iota
	MonitorEvalG
	MonitorEvalJacG
	MonitorEvalGradF
	MonitorEvalH
	MonitorQP
)

func (m Monitor) has(bit Monitor) bool { return m&bit != 0 }

// IterationStats summarizes one accepted SQP iteration, passed to the
// Observer and written to the log row.
type IterationStats struct {
	Iter       int
	Objective  float64
	LineSearch int
	NormDX     float64
	NormGradL  float64
	EqViol     float64
	Mu         float64
}

// Observer is invoked once per accepted iteration. Returning true
// requests early termination with Status UserStop.
type Observer func(stats IterationStats, x []float64, cost float64) (stop bool)

// Result is returned by Solve.
type Result struct {
	Cost   float64
	X      []float64
	Status Status
	Stats  IterationStats
}
