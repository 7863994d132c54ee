// SPDX-License-Identifier: MIT

// Package cone defines the typed conic blocks exchanged between the SAGE
// compilers and a conic optimization backend.
//
// The cone package provides:
//
//   - Kind / Cone: a closed set of supported cone types (nonnegative orthant,
//     second-order, exponential, zero) with an associated dimension.
//   - Validate: normalization of a background cone list, rejecting any
//     unsupported type with ErrUnsupportedCone.
//   - Block: the conic-form output contract — sparse triplets, a dense offset
//     vector, and an ordered list of cones. Blocks are meant to be stacked
//     vertically, in order, into one system A·x + b ∈ K.
//   - ProjectPrimal / ProjectDual: closed-form residual distances used by the
//     violation oracles.
//
// The set of supported kinds is intentionally closed: exhaustive switches over
// Kind replace runtime tag checks, so an unsupported type is a single,
// well-defined error path rather than a scattering of string comparisons.
package cone
