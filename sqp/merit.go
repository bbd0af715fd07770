// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import "math"

// constraintViolation returns the ℓ1 norm of how far g violates
// [lbg,ubg], the penalty term of the ℓ1 merit function.
func constraintViolation(g, lbg, ubg []float64) float64 {
	v := 0.0
	for i := range g {
		if g[i] < lbg[i] {
			v += lbg[i] - g[i]
		} else if g[i] > ubg[i] {
			v += g[i] - ubg[i]
		}
	}
	return v
}

// meritValue evaluates T1(x;mu) = f(x) + mu*‖violations(g(x))‖₁,
// Nocedal & Wright eq. 18.27 specialized to the ℓ1 exact penalty.
func meritValue(f float64, g, lbg, ubg []float64, mu float64) float64 {
	return f + mu*constraintViolation(g, lbg, ubg)
}

// meritDirectional evaluates DT1, the directional derivative of T1
// along the QP step p at the current iterate. Because the QP always
// enforces the linearized constraint bounds exactly, the curvature
// contribution of the penalty term vanishes and DT1 reduces to the
// simple form ∇fᵀp - mu*‖violations‖₁ (eq. 18.29).
func meritDirectional(gradF, p []float64, feasViol, mu float64) float64 {
	d := 0.0
	for i := range gradF {
		d += gradF[i] * p[i]
	}
	return d - mu*feasViol
}

// updatePenalty raises mu, never lowers it, so that the QP step p is
// guaranteed a descent direction for T1 (Nocedal & Wright eq. 18.36).
// pBp is pᵀBp for the current Hessian approximation B; rho is the
// slack held below 1 in the denominator and sigma weights the
// quadratic term, both taken from Options.
func updatePenalty(mu, muSafety, gradFp, pBp, feasViol, rho, sigma float64) float64 {
	if feasViol == 0 {
		return mu
	}
	need := (gradFp + 0.5*sigma*math.Max(pBp, 0)) / ((1 - rho) * feasViol)
	need *= muSafety
	if need > mu {
		return need
	}
	return mu
}

// lineSearchResult carries the outcome of one Armijo backtracking
// search along the QP step.
type lineSearchResult struct {
	alpha      float64
	iterations int
	xNew       []float64
	itNew      *iterate
}

// armijoLineSearch backtracks alpha from 1 by factor tau until the
// sufficient-decrease condition T1(x+alpha*p;mu) <= T1(x;mu) +
// eta*alpha*DT1 holds (eq. 18.28), or MaxIterLS is exceeded. The
// multiplier estimate mu is held fixed during the search: the blend
// with the fresh QP duals happens only once the accepted alpha is
// known.
func armijoLineSearch(b *binding, mu *multipliers, x, p []float64, t1x, dt1 float64, penalty, eta, tau float64, maxIter int) (*lineSearchResult, error) {
	n := len(x)
	alpha := 1.0
	for it := 0; it < maxIter; it++ {
		xNew := make([]float64, n)
		for i := 0; i < n; i++ {
			xNew[i] = x[i] + alpha*p[i]
		}

		itNew, err := evalIterate(b, xNew, mu.lambda, mu.lambdaX)
		if err != nil {
			return nil, err
		}

		t1New := t1x
		if b.p.M > 0 {
			t1New = meritValue(itNew.f, itNew.g, b.p.LBG, b.p.UBG, penalty)
		} else {
			t1New = itNew.f
		}

		if t1New <= t1x+eta*alpha*dt1 {
			return &lineSearchResult{alpha: alpha, iterations: it + 1, xNew: xNew, itNew: itNew}, nil
		}
		alpha *= tau
	}
	return nil, &Error{Status: LineSearchFailed}
}
