// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdatePenaltyMonotonic(t *testing.T) {
	mu := 0.0
	cases := []struct{ gradFp, pBp, feasViol float64 }{
		{-1, 2, 0.5},
		{-0.2, 0.1, 0.05},
		{0, 0, 0},   // feasViol == 0: update must be skipped, mu unchanged
		{-3, 10, 2}, // the first positive need raises mu above 0
	}
	for _, c := range cases {
		next := updatePenalty(mu, 1.1, c.gradFp, c.pBp, c.feasViol, 0.5, 1.0)
		require.GreaterOrEqual(t, next, mu)
		mu = next
	}
}

func TestArmijoLineSearchAcceptsSufficientDecrease(t *testing.T) {
	p := &Problem{
		N: 2,
		Object: func(x []float64) (float64, error) {
			return (x[0]-1)*(x[0]-1) + (x[1]-2)*(x[1]-2), nil
		},
		Grad: func(x []float64) ([]float64, error) {
			return []float64{2 * (x[0] - 1), 2 * (x[1] - 2)}, nil
		},
		LBX: []float64{-1e10, -1e10},
		UBX: []float64{1e10, 1e10},
	}
	b, err := p.init(false, 0)
	require.NoError(t, err)

	x := []float64{0, 0}
	mu := newMultipliers(0, 2)
	it, err := evalIterate(b, x, mu.lambda, mu.lambdaX)
	require.NoError(t, err)

	step := []float64{1, 2}
	t1x := it.f
	dt1 := meritDirectional(it.gradF, step, 0, 0)
	require.Less(t, dt1, 0.0)

	ls, err := armijoLineSearch(b, mu, x, step, t1x, dt1, 0, 1e-4, 0.5, 20)
	require.NoError(t, err)
	require.LessOrEqual(t, ls.itNew.f, t1x+1e-4*ls.alpha*dt1)
}

func TestMultiplierBlendConvexBound(t *testing.T) {
	m := newMultipliers(2, 0)
	lambdaOld := []float64{1, -2}
	copy(m.lambda, lambdaOld)

	dualA := []float64{5, -5}
	m.blend(dualA, nil, 0.3)

	for i := range m.lambda {
		bound := max(abs2(dualA[i]), abs2(lambdaOld[i]))
		require.LessOrEqual(t, abs2(m.lambda[i]), bound+1e-12)
	}
}

func abs2(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestSolveRespectsContextCancellation(t *testing.T) {
	p := &Problem{
		N:      1,
		Object: func(x []float64) (float64, error) { return x[0] * x[0], nil },
		Grad:   func(x []float64) ([]float64, error) { return []float64{2 * x[0]}, nil },
		LBX:    []float64{-1e10}, UBX: []float64{1e10},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Solve(ctx, []float64{1}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, UserStop, res.Status)
}
