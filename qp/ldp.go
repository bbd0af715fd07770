// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "math"

// ldp (Least Distance Programming) solves min ||x||_2 subject to Gx >= h.
//   - g is an m x n matrix (no rank assumption)
//   - x is an n-vector, h is an m-vector
//
// ldp reduces to nnls by forming an (n+1) x m matrix A = [G:h]^T and an
// (n+1)-vector b = [0_n : 1], then recovering x and the Lagrange
// multipliers of the inequality constraints from the nnls residual.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. (revised 1995 edition)
// Chapter 23, Algorithm 23.27.
func ldp(
	m, n int,
	g []float64, mdg int,
	h []float64,
	x []float64,
	// working space: (n+1)*(m+2)+2m; the multipliers are stored in w[:m] on return
	w []float64,
	jw []int,
	maxIter int,
) (xnorm float64, mode Status) {

	if n <= 0 {
		return math.NaN(), BadArgument
	}
	if m <= 0 {
		return 0, OK
	}

	if m > mdg || mdg*n > len(g) || m > len(h) || n > len(x) || (n+1)*(m+2)+2*m > len(w) || m > len(jw) {
		panic("bound check error")
	}

	iw := 0
	a := w[iw : iw+m*(n+1)]
	iw += len(a)
	b := w[iw : iw+(n+1)]
	iw += len(b)
	z := w[iw : iw+(n+1)]
	iw += len(z)
	u := w[iw : iw+m]
	iw += len(u)
	dv := w[iw : iw+m]

	for j := 0; j < m; j++ {
		dcopy(n, g[j:], mdg, a[j*(n+1):], 1)
		a[j*(n+1)+n] = h[j]
	}

	dzero(b[:n])
	b[n] = one

	var rnorm float64
	rnorm, mode = nnls(n+1, m, a, n+1, b, u, dv, z, jw, maxIter)

	var fac float64
	if mode == HasSolution {
		if rnorm <= zero {
			mode = ConsIncompatible
		} else {
			fac = one - ddot(m, h, 1, u, 1)
			if math.IsNaN(fac) || fac < eps {
				mode = ConsIncompatible
			}
		}
	}
	if mode != HasSolution {
		return math.NaN(), mode
	}

	fac = one / fac
	for j := 0; j < n; j++ {
		x[j] = ddot(m, g[mdg*j:], 1, u, 1) * fac
	}

	for j := 0; j < m; j++ {
		w[j] = u[j] * fac
	}

	xnorm = dnrm2(n, x, 1)
	return
}
