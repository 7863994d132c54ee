// SPDX-License-Identifier: MIT

// Package cone: closed-form projection residuals for product cones.
// These back the "rough" violation oracles: they measure how far a point
// sits outside a product cone (or its dual) without invoking a solver.

package cone

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// expEps guards logarithms in the exponential-cone residuals.
const expEps = 1e-12

// ProjectPrimal returns a residual distance from x to the product cone K:
// zero iff x ∈ K (up to floating point), aggregated across blocks in the
// Euclidean norm. Orthant, zero, and second-order blocks use exact Euclidean
// projection distances; exponential blocks use a stable log-domain residual
// surrogate (zero exactly on membership, positive outside).
//
// Errors: ErrDimensionMismatch when len(x) != Dim(K).
func ProjectPrimal(x []float64, K []Cone) (float64, error) {
	if len(x) != Dim(K) {
		return 0, fmt.Errorf("ProjectPrimal: point %d vs cone %d: %w", len(x), Dim(K), ErrDimensionMismatch)
	}
	var sumSq float64
	offset := 0
	for _, co := range K {
		seg := x[offset : offset+co.Dim]
		offset += co.Dim

		var d float64
		switch co.Kind {
		case Nonneg:
			d = negPartNorm(seg)
		case Zero:
			d = floats.Norm(seg, 2)
		case SecondOrder:
			d = socDist(seg)
		case Exp:
			d = expResidual(seg[0], seg[1], seg[2])
		}
		sumSq += d * d
	}

	return math.Sqrt(sumSq), nil
}

// ProjectDual returns a residual distance from x to the dual cone of K.
// Dual pairs: (Nonneg, Nonneg), (SecondOrder, SecondOrder), (Zero, free),
// (Exp, Exp*). A dual slot of a Zero block is unconstrained and contributes
// nothing.
//
// Errors: ErrDimensionMismatch when len(x) != Dim(K).
func ProjectDual(x []float64, K []Cone) (float64, error) {
	if len(x) != Dim(K) {
		return 0, fmt.Errorf("ProjectDual: point %d vs cone %d: %w", len(x), Dim(K), ErrDimensionMismatch)
	}
	var sumSq float64
	offset := 0
	for _, co := range K {
		seg := x[offset : offset+co.Dim]
		offset += co.Dim

		var d float64
		switch co.Kind {
		case Nonneg:
			d = negPartNorm(seg)
		case Zero:
			d = 0 // dual of the zero cone is all of R^dim
		case SecondOrder:
			d = socDist(seg)
		case Exp:
			d = dualExpResidual(seg[0], seg[1], seg[2])
		}
		sumSq += d * d
	}

	return math.Sqrt(sumSq), nil
}

// negPartNorm is the Euclidean distance to the nonnegative orthant.
func negPartNorm(seg []float64) float64 {
	var sumSq float64
	for _, v := range seg {
		if v < 0 {
			sumSq += v * v
		}
	}

	return math.Sqrt(sumSq)
}

// socDist is the Euclidean distance from (t, z) to {(t, z) : ‖z‖ ≤ t}.
// Three regimes: inside (0), polar opposite (full norm), and the generic
// boundary case ((‖z‖ − t)/√2).
func socDist(seg []float64) float64 {
	t := seg[0]
	zn := floats.Norm(seg[1:], 2)
	switch {
	case zn <= t:
		return 0
	case zn <= -t:
		return math.Hypot(t, zn)
	default:
		return (zn - t) / math.Sqrt2
	}
}

// expResidual measures violation of (u, v, w) ∈ closure{v·e^(u/v) ≤ w, v > 0}.
// In the interior regime the defining inequality is evaluated in log domain,
// u − v·log(w/v) ≤ 0, which avoids overflow of e^(u/v). On the boundary
// (v ≈ 0) membership requires u ≤ 0 and w ≥ 0. Not an exact Euclidean
// distance, but zero exactly on membership and positive outside.
func expResidual(u, v, w float64) float64 {
	if v > expEps {
		if w > expEps {
			return math.Max(0, u-v*math.Log(w/v))
		}
		// w ≈ 0 (or negative) with v > 0: v·e^(u/v) > 0 ≥ w, always violated.
		return math.Max(0, -w) + v*math.Exp(math.Min(u/v, 0))
	}

	return math.Max(0, -v) + math.Max(0, u) + math.Max(0, -w)
}

// dualExpResidual measures violation of the dual exponential cone
// closure{(u, v, w) : u < 0, −u·e^(v/u) ≤ e·w}. With s = −u > 0 the defining
// inequality reads s·log(s/w) − s − v ≤ 0; the boundary regime (u ≈ 0)
// requires v ≥ 0 and w ≥ 0.
func dualExpResidual(u, v, w float64) float64 {
	s := -u
	if s > expEps {
		if w > expEps {
			return math.Max(0, s*math.Log(s/w)-s-v)
		}
		// w ≈ 0 (or negative) with −u > 0: −u·e^(v/u) > 0 ≥ e·w, always violated.
		return math.Max(0, -w) + s*math.Exp(math.Min(-v/s, 0))
	}

	return math.Max(0, u) + math.Max(0, -v) + math.Max(0, -w)
}
