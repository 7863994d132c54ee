// SPDX-License-Identifier: MIT
// Package sage: sentinel error set. Construction-time failures are hard
// errors matched via errors.Is; heuristic solve failures are never fatal.

package sage

import "errors"

var (
	// ErrShapeMismatch indicates inconsistent input dimensions: coefficient
	// length vs exponent rows, A width narrower than alpha, or offset length
	// vs A height.
	ErrShapeMismatch = errors.New("sage: dimension mismatch between inputs")

	// ErrCoverKeyMissing is returned when a supplied cover map lacks an
	// entry for a must-certify term index.
	ErrCoverKeyMissing = errors.New("sage: required cover key missing")

	// ErrCoverMask is returned when a supplied cover mask does not have
	// exactly one entry per term.
	ErrCoverMask = errors.New("sage: cover mask has wrong length")

	// ErrNoSolver signals that an operation requiring an auxiliary solve was
	// requested without a configured solver.
	ErrNoSolver = errors.New("sage: no auxiliary solver configured")

	// ErrAuxSolve signals that an auxiliary solve finished without an
	// optimal point. Callers degrade to rough estimates.
	ErrAuxSolve = errors.New("sage: auxiliary solve did not reach optimality")
)
