// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "math"

// lsei (Least-Squares with linear Equality & Inequality) solves
// min ||Ex - f||_2 subject to Cx = d and Gx >= h.
//   - e is m x n (no rank assumption), c is mc x n with rank(c) = mc < n
//   - g is mg x n
//
// The equality constraints are eliminated via an orthogonal basis of
// their null space, reducing the problem to an lsi problem on the
// remaining n-mc free variables; lsi itself reduces to ldp.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. (revised 1995 edition)
// Chapter 20, Algorithm 20.24; Chapter 23, Section 6.
func lsei(
	c []float64, d []float64,
	e []float64, f []float64,
	g []float64, h []float64,
	lc, mc, le, me, lg, mg, n int,
	x []float64,
	// dim(w): 2*mc+me+(me+mg)*(n-mc) for lsei, plus (n-mc+1)*(mg+2)+2*mg for lsi/hfti
	w []float64,
	// dim(jw): max(mg, min(me, n-mc))
	jw []int,
	maxIterLs int,
) (norm float64, mode Status) {

	if n < 1 || mc > n {
		return math.NaN(), BadArgument
	}

	if n > len(x) || mc > len(x) ||
		mc < 0 || mc > len(c) || mc > len(d) ||
		me < 0 || me > len(e) || me > len(f) ||
		mg < 0 || mg > len(g) || mg > len(h) {
		panic("bound check error")
	}

	l := n - mc
	iw := mc
	ws := w[iw : iw+(l+1)*(mg+2)+2*mg]
	iw += len(ws)
	wp := w[iw : iw+mc]
	iw += len(wp)
	we := w[iw : iw+me*l]
	iw += len(we)
	wf := w[iw : iw+me]
	iw += len(wf)
	wg := w[iw : iw+mg*l]

	if mc > len(wp) || me > len(wf) {
		panic("bound check error")
	}

	// Triangularize C and apply the same orthogonal factors to E and G.
	for i := 0; i < mc; i++ {
		j := min(i+1, lc-1)
		wp[i] = h1(i, i+1, n, c[i:], lc)
		h2(i, i+1, n, c[i:], lc, wp[i], c[j:], lc, 1, mc-i-1)
		h2(i, i+1, n, c[i:], lc, wp[i], e, le, 1, me)
		h2(i, i+1, n, c[i:], lc, wp[i], g, lg, 1, mg)
	}

	// Solve the triangular system for the minimal-length equality solution.
	for i := 0; i < mc; i++ {
		diag := c[i+lc*i]
		if math.Abs(diag) < eps {
			return math.NaN(), LSEISingularC
		}
		x[i] = (d[i] - ddot(i, c[i:], lc, x, 1)) / diag
	}

	dzero(ws[:mg])

	if mc < n {
		for i := 0; i < me; i++ {
			wf[i] = f[i] - ddot(mc, e[i:], le, x, 1)
		}

		if l > 0 {
			if me > len(we) || mg > len(wg) {
				panic("bound check error")
			}
			for i := 0; i < me; i++ {
				dcopy(l, e[i+le*mc:], le, we[i:], me)
			}
			for i := 0; i < mg; i++ {
				dcopy(l, g[i+lg*mc:], lg, wg[i:], mg)
			}
		}

		if mg > 0 {
			for i := 0; i < mg; i++ {
				h[i] -= ddot(mc, g[i:], lg, x, 1)
			}
			norm, mode = lsi(we, wf, wg, h, me, me, mg, mg, l, x[mc:n], ws, jw, maxIterLs)
			if mc == 0 {
				return
			}
			if mode != HasSolution {
				return math.NaN(), mode
			}
			t := dnrm2(mc, x, 1)
			norm = math.Sqrt(norm*norm + t*t)
		} else {
			k, t := max(le, n), math.Sqrt(eps)
			var nrm [1]float64
			rank := hfti(we, me, me, l, wf, k, 1, t, nrm[:], w, w[l:], jw)
			norm = nrm[0]
			dcopy(l, wf, 1, x[mc:n], 1)
			if rank != l {
				return norm, HFTIRankDefect
			}
		}
	}
	for i := 0; i < me; i++ {
		f[i] = ddot(n, e[i:], le, x, 1) - f[i]
	}
	for i := 0; i < mc; i++ {
		d[i] = ddot(me, e[i*le:], 1, f, 1) -
			ddot(mg, g[i*lg:], 1, ws[:mg], 1)
	}
	for i := mc - 1; i >= 0; i-- {
		h2(i, i+1, n, c[i:], lc, wp[i], x, 1, 1, 1)
	}
	for i := mc - 1; i >= 0; i-- {
		j := min(i+1, lc-1)
		w[i] = (d[i] - ddot(mc-i-1, c[j+lc*i:], 1, w[j:], 1)) / c[i+lc*i]
	}
	mode = HasSolution
	return
}

// lsi (Least-Squares with linear Inequality) solves min ||Ex - f||_2
// subject to Gx >= h, where e has rank(e) = n.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. (revised 1995 edition)
// Chapter 23, Section 5.
func lsi(
	e []float64, f []float64,
	g []float64, h []float64,
	le, me, lg, mg, n int,
	x []float64,
	w []float64,
	jw []int,
	maxIterLs int) (xnorm float64, mode Status) {

	if n < 1 {
		return 0, BadArgument
	}

	for i := 0; i < n; i++ {
		j := min(i+1, n-1)
		t := h1(i, i+1, me, e[i*le:], 1)
		h2(i, i+1, me, e[i*le:], 1, t, e[j*le:], 1, le, n-i-1)
		h2(i, i+1, me, e[i*le:], 1, t, f, 1, 1, 1)
	}

	for i := 0; i < mg; i++ {
		for j := 0; j < n; j++ {
			diag := e[j+le*j]
			if math.Abs(diag) < eps || math.IsNaN(diag) {
				return math.NaN(), LSISingularE
			}
			g[i+lg*j] = (g[i+lg*j] - ddot(j, g[i:], lg, e[j*le:], 1)) / diag
		}
		h[i] -= ddot(n, g[i:], lg, f, 1)
	}

	if xnorm, mode = ldp(mg, n, g, lg, h, x, w, jw, maxIterLs); mode == HasSolution {
		daxpy(n, one, f, 1, x, 1)
		for i := n - 1; i >= 0; i-- {
			j := min(i+1, n-1)
			x[i] = (x[i] - ddot(n-i-1, e[i+le*j:], le, x[j:], 1)) / e[i+le*i]
		}
		j := min(n, me-1)
		t := dnrm2(me-n, f[j:], 1)
		xnorm = math.Sqrt(xnorm*xnorm + t*t)
	}
	return
}
