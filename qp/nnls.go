// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "math"

// nnls solves the non-negative least-squares problem min ||Ax - b||_2
// subject to x >= 0 using the Lawson & Hanson active-set method.
//   - a is an m x n column-major matrix with rank(a) = n
//   - x is an n-vector, b is an m-vector
//
// There are two index sets: Z (zero) and P (passive). Variables indexed
// in Z are held at zero; variables indexed in P are free to take any
// positive value. When x_j < 0 occurs, nnls moves its index from P to Z.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. (revised 1995 edition)
// Chapter 23, Algorithm 23.10.
func nnls(
	m, n int,
	// initially the m x n matrix a; on return holds the implicit Q*a.
	a []float64, mda int,
	// initially the m-vector b; on return holds the implicit Q*b.
	b []float64,
	// x receives the primal solution, w the dual vector.
	x []float64,
	w []float64,
	// working space
	z []float64, index []int,
	maxIter int) (float64, Status) {

	const factor = 0.01

	if m <= 0 || n <= 0 || mda < m ||
		len(a) < mda*n || len(b) < m || len(x) < n || len(w) < n || len(z) < m || len(index) < n {
		return math.NaN(), BadArgument
	}

	if maxIter <= 0 {
		maxIter = 3 * n
	}

	np := 0 // number of elements currently in P
	z1 := 0 // start index of set Z within index

	// index = P ∪ Z = {0,...,n-1}; P = index[:np], Z = index[z1:]
	index = index[:n]
	for i := range index {
		index[i] = i
	}

	dzero(x[:n])

	iter := 0
	term := func() (rnorm float64, mode Status) {
		if np < m {
			rnorm = dnrm2(m-np, b[np:], 1)
		} else {
			dzero(w[:n])
		}
		if iter > maxIter {
			mode = NNLSExceedMaxIter
		} else {
			mode = HasSolution
		}
		return
	}

	for {
		if z1 >= n || np >= m {
			return term()
		}

		// Compute the dual vector w = A^T(b - Ax) restricted to Z.
		for _, j := range index[z1:] {
			w[j] = ddot(m-np, a[np+mda*j:], 1, b[np:], 1)
		}

		for {
			wmax, izmax := zero, 0
			for i, j := range index[z1:] {
				if w[j] > wmax {
					wmax, izmax = w[j], z1+i
				}
			}

			if wmax <= zero {
				return term()
			}

			iz := izmax
			j := index[iz]
			aj := a[mda*j : mda*j+m : mda*j+m]

			asave := aj[np]
			up := h1(np, np+1, m, aj, 1)

			accept := false
			unorm := dnrm2(np, aj, 1)
			if math.Abs(aj[np])*factor >= unorm*eps {
				copy(z[:m], b[:m])
				h2(np, np+1, m, aj, 1, up, z, 1, 1, 1)
				ztest := z[np] / aj[np]
				accept = ztest > zero
			}

			if !accept {
				aj[np] = asave
				w[j] = zero
				continue
			}

			copy(b[:m], z[:m])

			index[iz] = index[z1]
			index[z1] = j
			z1++
			np++

			if z1 < n {
				for _, jj := range index[z1:] {
					h2(np-1, np, m, aj, 1, up, a[jj*mda:], 1, mda, 1)
				}
			}
			if np < m {
				dzero(aj[np:m])
			}
			w[j] = zero
			break
		}

		for {
			for ip, jj := np-1, -1; ip >= 0; ip-- {
				if jj >= 0 {
					daxpy(ip+1, -z[ip+1], a[jj*mda:], 1, z, 1)
				}
				jj = index[ip]
				z[ip] /= a[ip+jj*mda]
			}

			if iter++; iter > maxIter {
				return term()
			}

			alpha, jj := two, -1
			for ip, l := range index[:np] {
				if z[ip] <= zero {
					t := -x[l] / (z[ip] - x[l])
					if alpha > t {
						alpha, jj = t, ip
					}
				}
			}

			if jj < 0 {
				for ip, idx := range index[:np] {
					x[idx] = z[ip]
				}
				break
			}

			for ip, l := range index[:np] {
				x[l] += alpha * (z[ip] - x[l])
			}

			i := index[jj]
			for {
				x[i] = zero
				if jj++; jj < np {
					for j := jj; j < np; j++ {
						ii := index[j]
						ci := a[ii*mda:]
						index[j-1] = ii
						var cc, ss float64
						cc, ss, ci[j-1] = g1(ci[j-1], ci[j])
						ci[j] = zero
						for l := 0; l < n; l++ {
							if l != ii {
								cl := a[l*mda : l*mda+j+1 : l*mda+j+1]
								cl[j-1], cl[j] = g2(cc, ss, cl[j-1], cl[j])
							}
						}
						b[j-1], b[j] = g2(cc, ss, b[j-1], b[j])
					}
				}

				np--
				z1--
				index[z1] = i
				break
			}

			copy(z[:m], b[:m])
		}
	}
}
