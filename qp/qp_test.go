// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "math"

func almostEqual(want, got any, tol float64) bool {
	switch w := want.(type) {
	case float64:
		g := got.(float64)
		return math.Abs(w-g) <= tol
	case []float64:
		g := got.([]float64)
		if len(w) != len(g) {
			return false
		}
		for i := range w {
			if math.Abs(w[i]-g[i]) > tol {
				return false
			}
		}
		return true
	default:
		return false
	}
}
