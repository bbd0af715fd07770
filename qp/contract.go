// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "gonum.org/v1/gonum/mat"

// Input is the black-box contract every Solver consumes: the local
// quadratic subproblem
//
//	minimize    ½ pᵀHp + Gᵀp
//	subject to  LBA ≤ Ap ≤ UBA
//	            LBX ≤  p ≤ UBX
//
// H must be symmetric positive definite. Bound entries at or beyond
// InfBound (default 1e10 when zero) are treated as unbounded.
type Input struct {
	H        *mat.SymDense
	G        []float64
	A        mat.Matrix
	LBA, UBA []float64
	LBX, UBX []float64
	MaxIter  int
	InfBound float64
}

// Output carries the primal step and the multipliers of the general
// and bound constraints. A positive entry in DualA/DualX indicates the
// corresponding upper bound is active; a negative entry indicates the
// lower bound is active; zero means the constraint is inactive.
type Output struct {
	Primal []float64
	DualA  []float64
	DualX  []float64
	Status Status
}

// Solver is the interface the main loop calls once per iteration to
// obtain a step and multipliers for the linearized subproblem.
// Substituting an alternate implementation (sparse, interior-point,
// vendor black-box) only requires satisfying this interface.
type Solver interface {
	Solve(in *Input) (*Output, error)
}
