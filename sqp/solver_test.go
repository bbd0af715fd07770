// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func unbounded(n int) ([]float64, []float64) {
	lb := make([]float64, n)
	ub := make([]float64, n)
	for i := range lb {
		lb[i], ub[i] = math.Inf(-1), math.Inf(1)
	}
	return lb, ub
}

func TestSolveUnconstrainedQuadratic(t *testing.T) {
	lbx, ubx := unbounded(2)
	p := &Problem{
		N: 2,
		Object: func(x []float64) (float64, error) {
			return (x[0]-1)*(x[0]-1) + (x[1]-2)*(x[1]-2), nil
		},
		Grad: func(x []float64) ([]float64, error) {
			return []float64{2 * (x[0] - 1), 2 * (x[1] - 2)}, nil
		},
		LBX: lbx, UBX: ubx,
	}

	res, err := p.Solve(context.Background(), []float64{0, 0}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, SmallGrad, res.Status)
	require.InDeltaSlice(t, []float64{1, 2}, res.X, 1e-6)
	require.InDelta(t, 0, res.Cost, 1e-8)
	require.LessOrEqual(t, res.Stats.Iter, 5)
}

func TestSolveRosenbrock(t *testing.T) {
	lbx, ubx := unbounded(2)
	p := &Problem{
		N: 2,
		Object: func(x []float64) (float64, error) {
			a, b := x[1]-x[0]*x[0], 1-x[0]
			return 100*a*a + b*b, nil
		},
		Grad: func(x []float64) ([]float64, error) {
			return []float64{
				-400*x[0]*(x[1]-x[0]*x[0]) - 2*(1-x[0]),
				200 * (x[1] - x[0]*x[0]),
			}, nil
		},
		LBX: lbx, UBX: ubx,
	}

	opts := DefaultOptions()
	opts.MaxIter = 50
	res, err := p.Solve(context.Background(), []float64{-1.2, 1.0}, opts)
	require.NoError(t, err)
	require.Equal(t, SmallGrad, res.Status)
	require.InDeltaSlice(t, []float64{1, 1}, res.X, 1e-4)
	require.InDelta(t, 0, res.Cost, 1e-6)
}

func TestSolveEqualityConstrained(t *testing.T) {
	lbx, ubx := unbounded(2)
	p := &Problem{
		N: 2, M: 1, Meq: 1,
		Object: func(x []float64) (float64, error) { return x[0]*x[0] + x[1]*x[1], nil },
		Grad:   func(x []float64) ([]float64, error) { return []float64{2 * x[0], 2 * x[1]}, nil },
		G:      func(x []float64) ([]float64, error) { return []float64{x[0] + x[1]}, nil },
		J: func(x []float64) (*mat.Dense, error) {
			return mat.NewDense(1, 2, []float64{1, 1}), nil
		},
		LBG: []float64{1}, UBG: []float64{1},
		LBX: lbx, UBX: ubx,
	}

	res, err := p.Solve(context.Background(), []float64{0, 0}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, SmallGrad, res.Status)
	require.InDeltaSlice(t, []float64{0.5, 0.5}, res.X, 1e-6)
	require.InDelta(t, 0.5, res.Cost, 1e-6)
	require.Less(t, res.Stats.EqViol, 1e-10)
}

func TestSolveBoxBoundedQuadratic(t *testing.T) {
	p := &Problem{
		N:      1,
		Object: func(x []float64) (float64, error) { return (x[0] - 3) * (x[0] - 3), nil },
		Grad:   func(x []float64) ([]float64, error) { return []float64{2 * (x[0] - 3)}, nil },
		LBX:    []float64{0}, UBX: []float64{1},
	}

	res, err := p.Solve(context.Background(), []float64{0}, DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, []Status{SmallStep, SmallGrad}, res.Status)
	require.InDelta(t, 1, res.X[0], 1e-6)
}

func TestSolveExactHessianSingleIteration(t *testing.T) {
	lbx, ubx := unbounded(2)
	p := &Problem{
		N: 2,
		Object: func(x []float64) (float64, error) {
			return (x[0]-1)*(x[0]-1) + (x[1]-2)*(x[1]-2), nil
		},
		Grad: func(x []float64) ([]float64, error) {
			return []float64{2 * (x[0] - 1), 2 * (x[1] - 2)}, nil
		},
		H: HessianFunc2(func(x []float64, sigma float64) (*mat.SymDense, error) {
			return mat.NewSymDense(2, []float64{2 * sigma, 0, 0, 2 * sigma}), nil
		}),
		LBX: lbx, UBX: ubx,
	}

	opts := DefaultOptions()
	opts.HessianApproximation = "exact"
	res, err := p.Solve(context.Background(), []float64{0, 0}, opts)
	require.NoError(t, err)
	require.Equal(t, SmallGrad, res.Status)
	require.InDeltaSlice(t, []float64{1, 2}, res.X, 1e-8)
	require.Equal(t, 1, res.Stats.Iter)
}

func TestSolveLineSearchFailure(t *testing.T) {
	x0 := []float64{0, 0}
	p := &Problem{
		N: 2,
		Object: func(x []float64) (float64, error) {
			if x[0] == x0[0] && x[1] == x0[1] {
				return 0, nil
			}
			return math.NaN(), nil
		},
		Grad: func(x []float64) ([]float64, error) { return []float64{-1, -1}, nil },
		LBX:  []float64{math.Inf(-1), math.Inf(-1)},
		UBX:  []float64{math.Inf(1), math.Inf(1)},
	}

	opts := DefaultOptions()
	opts.MaxIterLS = 5
	_, err := p.Solve(context.Background(), x0, opts)
	require.Error(t, err)
	sqpErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, LineSearchFailed, sqpErr.Status)
}

func TestSolveIdempotentFromOptimum(t *testing.T) {
	lbx, ubx := unbounded(2)
	p := &Problem{
		N: 2,
		Object: func(x []float64) (float64, error) {
			return (x[0]-1)*(x[0]-1) + (x[1]-2)*(x[1]-2), nil
		},
		Grad: func(x []float64) ([]float64, error) {
			return []float64{2 * (x[0] - 1), 2 * (x[1] - 2)}, nil
		},
		LBX: lbx, UBX: ubx,
	}

	res, err := p.Solve(context.Background(), []float64{1, 2}, DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, []Status{SmallStep, SmallGrad}, res.Status)
	require.LessOrEqual(t, res.Stats.Iter, 1)
}

func TestSolveMissingHessianForExactMode(t *testing.T) {
	lbx, ubx := unbounded(1)
	p := &Problem{
		N:      1,
		Object: func(x []float64) (float64, error) { return x[0] * x[0], nil },
		Grad:   func(x []float64) ([]float64, error) { return []float64{2 * x[0]}, nil },
		LBX:    lbx, UBX: ubx,
	}

	opts := DefaultOptions()
	opts.HessianApproximation = "exact"
	_, err := p.Solve(context.Background(), []float64{1}, opts)
	require.Error(t, err)
	sqpErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, MissingHessian, sqpErr.Status)
}
