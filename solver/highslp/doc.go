// SPDX-License-Identifier: MIT

// Package highslp adapts the solver port to the HiGHS linear-programming
// backend (github.com/lanl/highs).
//
// HiGHS handles linear constraints only, so the adapter accepts problems
// whose blocks contain exclusively nonnegative-orthant and zero cones — the
// shape the cover selector's trivial-cone elimination produces whenever the
// background system is polyhedral. Any second-order or exponential block is
// rejected with ErrUnsupportedBlock; callers fall back to keeping the cover,
// which is always sound.
package highslp
