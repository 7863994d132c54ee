// SPDX-License-Identifier: MIT
// Package cone: sentinel error set. All validation paths return these
// sentinels and tests match them via errors.Is; no panic on user input.

package cone

import "errors"

var (
	// ErrUnsupportedCone is returned by Validate when a cone list contains a
	// kind outside {Nonneg, SecondOrder, Exp, Zero}. This is a hard error:
	// compilers refuse to construct over such a background.
	ErrUnsupportedCone = errors.New("cone: unsupported cone type")

	// ErrDimensionMismatch indicates a vector whose length does not equal the
	// total dimension of the cone list it is matched against.
	ErrDimensionMismatch = errors.New("cone: dimension mismatch")

	// ErrBadDim indicates a cone descriptor with a nonsensical dimension
	// (non-positive, or an Exp cone whose dimension is not ExpDim).
	ErrBadDim = errors.New("cone: invalid cone dimension")
)
