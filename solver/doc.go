// SPDX-License-Identifier: MIT

// Package solver defines the injected "solve a small conic program" port the
// SAGE compilers depend on for cover reduction and exact violation
// computation.
//
// The compilers never solve anything themselves: they assemble a Problem
// (objective over variable columns plus ordered conic blocks) and hand it to
// whatever Interface implementation was configured. Each solve is
// self-contained — fresh variables, no shared state, one attempt, no retry.
// Cancellation and timeouts are entirely the implementation's concern via
// the supplied context.
//
// Subpackage highslp adapts polyhedral problems (nonnegative and zero blocks
// only) to the HiGHS linear-programming backend.
package solver
