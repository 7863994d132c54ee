// SPDX-License-Identifier: MIT
// Package affine: sentinel error set for constraint lowering.

package affine

import "errors"

var (
	// ErrShapeMismatch is returned by constraint builders when operand
	// lengths disagree (e.g. InCone with a vector shorter than its cones,
	// or relative-entropy builders with unequal x/y/epi lengths).
	ErrShapeMismatch = errors.New("affine: operand shape mismatch")
)
