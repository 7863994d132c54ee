// SPDX-License-Identifier: MIT

// Package affine: precompiled relative-entropy constraint builders.
//
// Relative entropy Σ xᵢ·log(xᵢ/yᵢ) is encoded through the exponential cone
// closure{(u, v, w) : v·e^(u/v) ≤ w, v > 0}: the epigraph inequality
// xᵢ·log(xᵢ/yᵢ) ≤ rᵢ holds exactly when (−rᵢ, xᵢ, yᵢ) lies in that cone.

package affine

import (
	"fmt"

	"github.com/katalvlaran/sagecone/cone"
)

// SumRelEnt lowers Σᵢ xᵢ·log(xᵢ/yᵢ) ≤ z into one block: an exponential-cone
// triple (−epiᵢ, xᵢ, yᵢ) per component, then a single nonnegative row tying
// z − Σ epiᵢ ≥ 0. The caller supplies the epigraph vector epi so that its
// columns remain addressable after a solve (violation oracles re-read them).
//
// Returns ErrShapeMismatch unless len(x) == len(y) == len(epi) > 0.
func SumRelEnt(x, y Vector, z Scalar, epi Vector) (*cone.Block, error) {
	k := len(x)
	if k == 0 || len(y) != k || len(epi) != k {
		return nil, fmt.Errorf("SumRelEnt: x=%d y=%d epi=%d: %w", len(x), len(y), len(epi), ErrShapeMismatch)
	}
	cones := make([]cone.Cone, 0, k+1)
	for i := 0; i < k; i++ {
		cones = append(cones, cone.NewCone(cone.Exp, cone.ExpDim))
	}
	cones = append(cones, cone.NewCone(cone.Nonneg, 1))

	bk := cone.NewBlock(cone.ExpDim*k+1, cones...)
	for i := 0; i < k; i++ {
		appendRow(bk, cone.ExpDim*i, epi[i].Scale(-1))
		appendRow(bk, cone.ExpDim*i+1, x[i])
		appendRow(bk, cone.ExpDim*i+2, y[i])
	}
	appendRow(bk, cone.ExpDim*k, z.Sub(epi.Sum()))

	return bk, nil
}

// ElementwiseRelEnt lowers epiᵢ ≥ xᵢ·log(xᵢ/yᵢ) for every component into one
// block of exponential-cone triples (−epiᵢ, xᵢ, yᵢ). The epi vector is left
// free for the caller to bound elsewhere.
//
// Returns ErrShapeMismatch unless len(x) == len(y) == len(epi) > 0.
func ElementwiseRelEnt(x, y, epi Vector) (*cone.Block, error) {
	k := len(x)
	if k == 0 || len(y) != k || len(epi) != k {
		return nil, fmt.Errorf("ElementwiseRelEnt: x=%d y=%d epi=%d: %w", len(x), len(y), len(epi), ErrShapeMismatch)
	}
	cones := make([]cone.Cone, k)
	for i := range cones {
		cones[i] = cone.NewCone(cone.Exp, cone.ExpDim)
	}

	bk := cone.NewBlock(cone.ExpDim*k, cones...)
	for i := 0; i < k; i++ {
		appendRow(bk, cone.ExpDim*i, epi[i].Scale(-1))
		appendRow(bk, cone.ExpDim*i+1, x[i])
		appendRow(bk, cone.ExpDim*i+2, y[i])
	}

	return bk, nil
}
