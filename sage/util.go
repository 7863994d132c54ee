// SPDX-License-Identifier: MIT

// Package sage: small numeric helpers shared by the violation oracles.

package sage

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// relEntr is the scalar relative-entropy kernel, with the conventions of
// the classic special-function: 0 when x == 0 and y ≥ 0, x·log(x/y) on the
// positive orthant, +Inf elsewhere.
func relEntr(x, y float64) float64 {
	switch {
	case x == 0 && y >= 0:
		return 0
	case x > 0 && y > 0:
		return x * math.Log(x / y)
	default:
		return math.Inf(1)
	}
}

// vecNorm is floats.Norm with an empty-slice guard (norm of nothing is 0).
func vecNorm(v []float64, ord float64) float64 {
	if len(v) == 0 {
		return 0
	}

	return floats.Norm(v, ord)
}

// negPartNorm computes ‖min(v, 0)‖ under the given order.
func negPartNorm(v []float64, ord float64) float64 {
	neg := make([]float64, len(v))
	for i, x := range v {
		if x < 0 {
			neg[i] = x
		}
	}

	return vecNorm(neg, ord)
}

// liftAlpha zero-pads an exponent matrix on the right to liftedN columns.
// Extra columns are auxiliary background variables, never term indices.
func liftAlpha(alpha mat.Matrix, liftedN int) *mat.Dense {
	m, n := alpha.Dims()
	out := mat.NewDense(m, liftedN, nil)
	var i, j int
	for i = 0; i < m; i++ {
		for j = 0; j < n; j++ {
			out.Set(i, j, alpha.At(i, j))
		}
	}

	return out
}
