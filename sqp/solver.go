// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import (
	"context"
	"math"

	"github.com/nlpkit/sqp/qp"
	"gonum.org/v1/gonum/mat"
)

// Solve runs the SQP main loop from the initial guess x0, returning the
// best iterate found and the reason the loop stopped. The context is
// checked once per iteration; a cancelled context stops the loop with
// Status UserStop, same as a user-requested Observer stop.
func (p *Problem) Solve(ctx context.Context, x0 []float64, opts Options) (*Result, error) {
	opts.setDefaults()

	exact := opts.HessianApproximation == "exact"
	b, err := p.init(exact, opts.FiniteDiffStep)
	if err != nil {
		return nil, err
	}

	n := p.N
	x := append([]float64(nil), x0...)
	clipInitial(x, p.LBX, p.UBX, b.infBound)

	mu := newMultipliers(p.M, n)
	hess := newIdentityHessian(n)
	penalty := 0.0

	it, err := evalIterate(b, x, mu.lambda, mu.lambdaX)
	if err != nil {
		return nil, err
	}

	var stats IterationStats
	for iter := 1; iter <= opts.MaxIter; iter++ {
		select {
		case <-ctx.Done():
			return &Result{Cost: it.f, X: it.x, Status: UserStop, Stats: stats}, nil
		default:
		}

		if exact {
			hess, err = b.evalHessian(it.x, mu.lambda, 1)
			if err != nil {
				return &Result{Cost: it.f, X: it.x, Status: QPFailure, Stats: stats},
					&Error{Status: QPFailure, Iter: iter, X: it.x, Cause: err}
			}
		}

		qpIn := buildQPInput(p, it, hess, b.infBound)
		qpOut, err := opts.QP.Solve(qpIn)
		if err != nil || qpOut.Status != qp.HasSolution {
			return &Result{Cost: it.f, X: it.x, Status: QPFailure, Stats: stats},
				&Error{Status: QPFailure, Iter: iter, X: it.x, Cause: err}
		}
		step := qpOut.Primal

		if opts.Monitor.has(MonitorQP) {
			monitorLog(opts.Logger, MonitorQP, "qp_step", step)
		}

		// glOld uses the fresh, unblended QP duals: the blend with the
		// carried-over multiplier estimate only happens below, once the
		// line search has determined the accepted step length.
		glOld := lagrangianGradient(it, qpOut.DualA, qpOut.DualX)

		feasViol := 0.0
		if p.M > 0 {
			feasViol = constraintViolation(it.g, p.LBG, p.UBG)
		}
		gradFp := dot(it.gradF, step)

		pBp := quadForm(hess, step)
		penalty = updatePenalty(penalty, opts.MuSafety, gradFp, pBp, feasViol, opts.Rho, opts.Sigma)

		t1x := it.f
		if p.M > 0 {
			t1x = meritValue(it.f, it.g, p.LBG, p.UBG, penalty)
		}
		dt1 := meritDirectional(it.gradF, step, feasViol, penalty)

		ls, err := armijoLineSearch(b, mu, it.x, step, t1x, dt1, penalty, opts.Eta, opts.Tau, opts.MaxIterLS)
		if err != nil {
			return &Result{Cost: it.f, X: it.x, Status: LineSearchFailed, Stats: stats},
				&Error{Status: LineSearchFailed, Iter: iter, X: it.x, Cause: err}
		}

		mu.blend(qpOut.DualA, qpOut.DualX, ls.alpha)

		if opts.Monitor.has(MonitorEvalGradF) {
			monitorLog(opts.Logger, MonitorEvalGradF, "grad_f", ls.itNew.gradF)
		}
		if opts.Monitor.has(MonitorEvalG) && p.M > 0 {
			monitorLog(opts.Logger, MonitorEvalG, "g", ls.itNew.g)
		}
		if opts.Monitor.has(MonitorEvalJacG) && p.M > 0 {
			monitorLog(opts.Logger, MonitorEvalJacG, "jac_g", ls.itNew.jacG)
		}

		dx := make([]float64, n)
		for i := 0; i < n; i++ {
			dx[i] = ls.xNew[i] - it.x[i]
		}

		glNew := lagrangianGradient(ls.itNew, mu.lambda, mu.lambdaX)
		r := make([]float64, n)
		for i := 0; i < n; i++ {
			r[i] = glNew[i] - glOld[i]
		}
		if !exact {
			bfgsUpdate(hess, dx, r)
			if opts.Monitor.has(MonitorEvalH) {
				monitorLog(opts.Logger, MonitorEvalH, "hess", hess)
			}
		}

		newFeasViol := 0.0
		if p.M > 0 {
			newFeasViol = constraintViolation(ls.itNew.g, p.LBG, p.UBG)
		}

		stats = IterationStats{
			Iter:       iter,
			Objective:  ls.itNew.f,
			LineSearch: ls.iterations,
			NormDX:     norm2(dx),
			NormGradL:  norm2(glNew),
			EqViol:     newFeasViol,
			Mu:         penalty,
		}
		logRow(opts.Logger, stats)
		if opts.Monitor.has(MonitorEvalF) {
			monitorLog(opts.Logger, MonitorEvalF, "f", ls.itNew.f)
		}

		it = ls.itNew
		x = it.x

		if opts.Observer != nil && opts.Observer(stats, x, it.f) {
			return &Result{Cost: it.f, X: x, Status: UserStop, Stats: stats}, nil
		}

		if stats.NormDX < opts.TolDX {
			return &Result{Cost: it.f, X: x, Status: SmallStep, Stats: stats}, nil
		}
		if stats.NormGradL < opts.TolGL && newFeasViol < opts.TolGL {
			return &Result{Cost: it.f, X: x, Status: SmallGrad, Stats: stats}, nil
		}
	}

	return &Result{Cost: it.f, X: it.x, Status: IterLimit, Stats: stats},
		&Error{Status: IterLimit, Iter: opts.MaxIter, X: it.x}
}

// buildQPInput linearizes the current iterate into a qp.Input: the
// general-constraint bounds shift by -g(x) so that the QP step p
// satisfies lbg-g(x) ≤ Jg(x)p ≤ ubg-g(x), and the variable bounds
// shift by -x for the same reason.
func buildQPInput(p *Problem, it *iterate, hess *mat.SymDense, infBound float64) *qp.Input {
	n := p.N
	lbx := make([]float64, n)
	ubx := make([]float64, n)
	for i := 0; i < n; i++ {
		lbx[i] = shiftBound(p.LBX[i], it.x[i], infBound)
		ubx[i] = shiftBound(p.UBX[i], it.x[i], infBound)
	}

	var a mat.Matrix = &mat.Dense{}
	lba, uba := []float64{}, []float64{}
	if p.M > 0 {
		a = it.jacG
		lba = make([]float64, p.M)
		uba = make([]float64, p.M)
		for j := 0; j < p.M; j++ {
			lba[j] = shiftBound(p.LBG[j], it.g[j], infBound)
			uba[j] = shiftBound(p.UBG[j], it.g[j], infBound)
		}
	}

	return &qp.Input{
		H:        hess,
		G:        it.gradF,
		A:        a,
		LBA:      lba,
		UBA:      uba,
		LBX:      lbx,
		UBX:      ubx,
		InfBound: infBound,
	}
}

func shiftBound(bound, at, infBound float64) float64 {
	if math.IsNaN(bound) || math.Abs(bound) >= infBound {
		return bound
	}
	return bound - at
}

func quadForm(b *mat.SymDense, v []float64) float64 {
	n := len(v)
	s := 0.0
	for i := 0; i < n; i++ {
		row := 0.0
		for j := 0; j < n; j++ {
			row += b.At(i, j) * v[j]
		}
		s += v[i] * row
	}
	return s
}
