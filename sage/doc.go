// SPDX-License-Identifier: MIT

// Package sage compiles conditional SAGE cone membership certificates into
// ordered typed conic blocks.
//
// A conditional SAGE certificate decomposes an m-term coefficient vector c,
// paired with an exponent matrix alpha, into per-term AGE sub-cones: each
// must-certify term i draws mass from a covering subset of the other terms,
// tied together by a relative-entropy inequality, a linear equality against
// the exponent differences, and membership of a multiplier in the dual of
// the background cone K of X = {x : A·x + b ∈ K}. The background system is
// assumed feasible; that precondition is never checked here.
//
// The package provides:
//
//   - PrimalCone: certifies c ∈ C_SAGE(alpha, A, b, K). ConicForm emits the
//     per-term blocks plus one global sum-to-c equality.
//   - DualCone: certifies membership of a dual vector v in the polar cone,
//     optionally sharpened by a companion primal coefficient vector's signs.
//   - Cover selection: per must-certify term, a boolean participation mask,
//     reduced by an orthogonality heuristic and by solve-based elimination
//     of trivially unbounded (hence unconstraining) AGE cones.
//   - Violation oracles: closed-form "rough" residuals, and exact estimates
//     that solve a projection or feasibility program through the injected
//     solver port.
//
// All computation is synchronous and single-threaded. The only blocking
// operations are calls into the injected solver.Interface; every such solve
// is self-contained and failure degrades gracefully (a reduction is skipped,
// or a violation falls back to its rough estimate).
package sage
