// SPDX-License-Identifier: MIT

// Package affine: lowering of linear constraints into conic blocks.
// Each builder emits one Block in the A·x + b ∈ K contract: row entries come
// from expression terms, the dense offset from expression offsets.

package affine

import (
	"fmt"

	"github.com/katalvlaran/sagecone/cone"
)

// appendRow writes one expression into row `row` of a block.
func appendRow(bk *cone.Block, row int, e Scalar) {
	for _, t := range e.Terms {
		bk.AddEntry(row, t.Col, t.Coef)
	}
	bk.SetOffset(row, e.Offset)
}

// GeZero lowers the constraint v ≥ 0 (elementwise) to a single nonnegative
// orthant block of dimension len(v).
func GeZero(v Vector) *cone.Block {
	bk := cone.NewBlock(len(v), cone.NewCone(cone.Nonneg, len(v)))
	for i, e := range v {
		appendRow(bk, i, e)
	}

	return bk
}

// EqZero lowers the constraint v == 0 (elementwise) to a single zero-cone
// block of dimension len(v).
func EqZero(v Vector) *cone.Block {
	bk := cone.NewBlock(len(v), cone.NewCone(cone.Zero, len(v)))
	for i, e := range v {
		appendRow(bk, i, e)
	}

	return bk
}

// InCone lowers the membership constraint v ∈ K for an already-validated
// cone list K. Returns ErrShapeMismatch when len(v) != cone.Dim(K).
func InCone(v Vector, K []cone.Cone) (*cone.Block, error) {
	if len(v) != cone.Dim(K) {
		return nil, fmt.Errorf("InCone: vector %d vs cones %d: %w", len(v), cone.Dim(K), ErrShapeMismatch)
	}
	bk := cone.NewBlock(len(v), K...)
	for i, e := range v {
		appendRow(bk, i, e)
	}

	return bk, nil
}

// InDualCone lowers v ∈ K* for an already-validated cone list K. Dual pairs:
// the orthant and second-order cones are self-dual; the dual of a zero block
// is free (no rows emitted for that slice); a dual exponential slice (u,v,w)
// maps onto the primal exponential cone as (u − v, −u, w). The returned
// block may be empty when K consists solely of zero cones.
//
// Returns ErrShapeMismatch when len(v) != cone.Dim(K).
func InDualCone(v Vector, K []cone.Cone) (*cone.Block, error) {
	if len(v) != cone.Dim(K) {
		return nil, fmt.Errorf("InDualCone: vector %d vs cones %d: %w", len(v), cone.Dim(K), ErrShapeMismatch)
	}
	var cones []cone.Cone
	var rows int
	for _, co := range K {
		if co.Kind != cone.Zero {
			cones = append(cones, co)
			rows += co.Dim
		}
	}

	bk := cone.NewBlock(rows, cones...)
	row, offset := 0, 0
	for _, co := range K {
		seg := v[offset : offset+co.Dim]
		offset += co.Dim
		switch co.Kind {
		case cone.Zero:
			// dual slot is free
		case cone.Exp:
			u, vv, w := seg[0], seg[1], seg[2]
			appendRow(bk, row, u.Sub(vv))
			appendRow(bk, row+1, u.Scale(-1))
			appendRow(bk, row+2, w)
			row += cone.ExpDim
		default:
			for _, e := range seg {
				appendRow(bk, row, e)
				row++
			}
		}
	}

	return bk, nil
}

// SecondOrder lowers ‖z‖₂ ≤ t to one second-order block with rows [t; z].
func SecondOrder(t Scalar, z Vector) *cone.Block {
	bk := cone.NewBlock(1+len(z), cone.NewCone(cone.SecondOrder, 1+len(z)))
	appendRow(bk, 0, t)
	for i, e := range z {
		appendRow(bk, 1+i, e)
	}

	return bk
}
