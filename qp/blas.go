// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
)

// daxpy performs y += da*x using the Level-1 BLAS kernel from gonum,
// keeping the strided (n, incx, incy) signature of the original
// Lawson & Hanson Fortran routines so the ported algorithms above
// need no further changes.
func daxpy(n int, da float64, dx []float64, incx int, dy []float64, incy int) {
	if n <= 0 || da == 0.0 {
		return
	}
	blas64.Implementation().Daxpy(n, da, strided(dx, incx, n), incx, strided(dy, incy, n), incy)
}

// ddot computes the dot product of two vectors.
func ddot(n int, dx []float64, incx int, dy []float64, incy int) float64 {
	if n <= 0 {
		return 0.0
	}
	return blas64.Implementation().Ddot(n, strided(dx, incx, n), incx, strided(dy, incy, n), incy)
}

// dcopy copies a vector, x, to a vector, y.
func dcopy(n int, dx []float64, incx int, dy []float64, incy int) {
	if n <= 0 {
		return
	}
	blas64.Implementation().Dcopy(n, strided(dx, incx, n), incx, strided(dy, incy, n), incy)
}

// dscal scales a vector by a constant.
func dscal(n int, da float64, dx []float64, incx int) {
	if n <= 0 || incx <= 0 {
		return
	}
	blas64.Implementation().Dscal(n, da, strided(dx, incx, n), incx)
}

// dnrm2 computes the Euclidean norm of a vector x.
func dnrm2(n int, x []float64, incx int) float64 {
	if n < 1 || incx < 1 {
		return zero
	}
	if n == 1 {
		return math.Abs(x[0])
	}
	return blas64.Implementation().Dnrm2(n, strided(x, incx, n), incx)
}

// dzero fills vector x with zero.
func dzero(dx []float64) {
	for i := range dx {
		dx[i] = zero
	}
}

// strided returns the minimal slice view blas64 needs to address
// element (n-1)*inc of a strided vector without re-slicing out of bounds.
func strided(x []float64, inc, n int) []float64 {
	if inc <= 0 || n <= 0 {
		return x
	}
	need := (n-1)*inc + 1
	if need > len(x) {
		panic("bound check error")
	}
	return x[:need]
}
