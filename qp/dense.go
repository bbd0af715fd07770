// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const defaultInfBound = 1e10

// DenseSolver is the default Solver. It packs the dense Hessian into
// the unit-lower-triangular L and diagonal D factors consumed by the
// Lawson & Hanson least-squares machinery in this package, splits the
// two-sided general and variable bounds into one-sided rows, and
// recovers the step and multipliers from a single lsei solve.
type DenseSolver struct{}

// Error reports why a DenseSolver.Solve call failed to produce HasSolution.
type Error struct {
	Status Status
}

func (e *Error) Error() string {
	return fmt.Sprintf("qp: %s", e.Status)
}

func (DenseSolver) Solve(in *Input) (*Output, error) {
	dim, _ := in.H.Dims()
	if dim != len(in.G) || dim != len(in.LBX) || dim != len(in.UBX) {
		return nil, &Error{Status: BadArgument}
	}

	infBound := in.InfBound
	if infBound <= 0 {
		infBound = defaultInfBound
	}

	l, err := packLDLT(in.H)
	if err != nil {
		return nil, err
	}

	rows, err := splitRows(in, infBound)
	if err != nil {
		return nil, err
	}

	e, f := recoverEF(dim, l, in.G)

	mc, mg := len(rows.eq), len(rows.ineq)
	lc, lg := max(mc, 1), max(mg, 1)

	c := make([]float64, lc*dim)
	d := make([]float64, max(mc, 1))
	for i, r := range rows.eq {
		for j := 0; j < dim; j++ {
			c[i+lc*j] = r.coef[j]
		}
		d[i] = r.bound
	}

	g := make([]float64, lg*dim)
	h := make([]float64, max(mg, 1))
	for i, r := range rows.ineq {
		for j := 0; j < dim; j++ {
			g[i+lg*j] = r.coef[j]
		}
		h[i] = r.bound
	}

	x := make([]float64, dim)
	jwLen := max(mg, dim)
	jw := make([]int, max(jwLen, 1))

	free := dim - mc
	wsLen := (free+1)*(mg+2) + 2*mg
	wLen := mc + wsLen + mc + dim*free + dim + mg*free
	w := make([]float64, max(wLen, 1))

	maxIter := in.MaxIter
	if maxIter <= 0 {
		maxIter = 40 * (dim + mg)
	}

	_, mode := lsei(c, d, e, f, g, h, lc, mc, dim, dim, lg, mg, dim, x, w, jw, maxIter)
	if mode != HasSolution {
		return &Output{Status: mode}, &Error{Status: mode}
	}

	out := &Output{
		Primal: x,
		DualA:  make([]float64, len(in.LBA)),
		DualX:  make([]float64, dim),
		Status: HasSolution,
	}

	for i, r := range rows.eq {
		out.DualA[r.origin] = w[i]
	}
	for i, r := range rows.ineq {
		mult := w[mc+i]
		switch r.kind {
		case kindLower:
			out.DualA[r.origin] -= mult
		case kindUpper:
			out.DualA[r.origin] += mult
		case kindBoundLower:
			out.DualX[r.origin] -= mult
		case kindBoundUpper:
			out.DualX[r.origin] += mult
		}
	}

	for i := 0; i < dim; i++ {
		if in.LBX[i] > -infBound && !math.IsNaN(in.LBX[i]) && x[i] < in.LBX[i] {
			x[i] = in.LBX[i]
		}
		if in.UBX[i] < infBound && !math.IsNaN(in.UBX[i]) && x[i] > in.UBX[i] {
			x[i] = in.UBX[i]
		}
	}

	return out, nil
}

// packLDLT factorizes H = CCᵀ via Cholesky and repacks the triangle C
// into the unit-lower-triangular-L / diagonal-D layout used by
// recoverEF: for column j (0-indexed), the block l[off:off+(n-j)]
// holds D_j followed by L[j+1][j]...L[n-1][j].
func packLDLT(h *mat.SymDense) ([]float64, error) {
	n, _ := h.Dims()
	var chol mat.Cholesky
	if ok := chol.Factorize(h); !ok {
		return nil, &Error{Status: IndefiniteHessian}
	}
	var lc mat.TriDense
	chol.LTo(&lc)

	l := make([]float64, n*(n+1)/2)
	idx := 0
	for j := 0; j < n; j++ {
		diag := lc.At(j, j)
		l[idx] = diag * diag
		idx++
		for i := j + 1; i < n; i++ {
			l[idx] = lc.At(i, j) / diag
			idx++
		}
	}
	return l, nil
}

// recoverEF recovers the Cholesky-equivalent factors E = D¹ᐟ²Lᵀ and
// f = -D⁻¹ᐟ²L⁻¹g from the packed l[] so that ½pᵀHp + gᵀp is rewritten
// as the least-squares objective ‖Ep - f‖² consumed by lsei.
func recoverEF(n int, l, g []float64) (e, f []float64) {
	e = make([]float64, n*n)
	f = make([]float64, n)
	n1 := n + 1
	i2, i3, i4 := 0, 0, 0
	for j := 0; j < n; j++ {
		i := n - j
		diag := math.Sqrt(l[i2])
		dzero(e[i3 : i3+i])
		dcopy(i, l[i2:], 1, e[i3:], n)
		dscal(i, diag, e[i3:], n)
		e[i3] = diag
		f[j] = (g[j] - ddot(j, e[i4:], 1, f, 1)) / diag
		i2 += i
		i3 += n1
		i4 += n
	}
	dscal(n, -one, f, 1)
	return
}

type rowKind int

const (
	kindEquality rowKind = iota
	kindLower
	kindUpper
	kindBoundLower
	kindBoundUpper
)

type qpRow struct {
	coef   []float64
	bound  float64
	kind   rowKind
	origin int // index into the original A row or variable
}

type splitSet struct {
	eq   []qpRow
	ineq []qpRow
}

// splitRows turns the two-sided bounds LBA ≤ Ap ≤ UBA and LBX ≤ p ≤
// UBX into the one-sided rows (Ap = b, or Ap ≥ b) that lsei expects,
// tracking enough bookkeeping to recombine the multipliers afterwards.
func splitRows(in *Input, infBound float64) (*splitSet, error) {
	dim, _ := in.H.Dims()
	m := len(in.LBA)
	if m != len(in.UBA) {
		return nil, &Error{Status: BadArgument}
	}

	out := &splitSet{}
	for j := 0; j < m; j++ {
		lo, hi := in.LBA[j], in.UBA[j]
		row := make([]float64, dim)
		for k := 0; k < dim; k++ {
			row[k] = in.A.At(j, k)
		}
		if lo == hi && !math.IsNaN(lo) {
			out.eq = append(out.eq, qpRow{coef: row, bound: lo, kind: kindEquality, origin: j})
			continue
		}
		if !math.IsNaN(lo) && lo > -infBound {
			out.ineq = append(out.ineq, qpRow{coef: row, bound: lo, kind: kindLower, origin: j})
		}
		if !math.IsNaN(hi) && hi < infBound {
			neg := make([]float64, dim)
			for k := range row {
				neg[k] = -row[k]
			}
			out.ineq = append(out.ineq, qpRow{coef: neg, bound: -hi, kind: kindUpper, origin: j})
		}
	}

	for i := 0; i < dim; i++ {
		lo, hi := in.LBX[i], in.UBX[i]
		if !math.IsNaN(lo) && lo > -infBound {
			row := make([]float64, dim)
			row[i] = one
			out.ineq = append(out.ineq, qpRow{coef: row, bound: lo, kind: kindBoundLower, origin: i})
		}
		if !math.IsNaN(hi) && hi < infBound {
			row := make([]float64, dim)
			row[i] = -one
			out.ineq = append(out.ineq, qpRow{coef: row, bound: -hi, kind: kindBoundUpper, origin: i})
		}
	}

	return out, nil
}
