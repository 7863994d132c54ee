// SPDX-License-Identifier: MIT

// Package affine is the minimal symbolic-expression surface the SAGE
// compilers build on: scalar linear forms over a shared variable space,
// vectors of such forms, and lowering of linear / relative-entropy
// constraints into typed conic blocks (cone.Block).
//
// The affine package provides:
//
//   - Space: a monotone allocator of variable columns. Every compiler and
//     every auxiliary solve works over its own Space, so column indices in
//     emitted blocks are unambiguous.
//   - Scalar / Vector: sparse affine expressions (offset + sorted terms),
//     with elementwise arithmetic, masking, stacking, matrix application,
//     and evaluation at a solution point.
//   - Constraint lowering: GeZero, EqZero, InCone, SecondOrder, and the
//     precompiled relative-entropy builders SumRelEnt / ElementwiseRelEnt,
//     all returning the Block tuple shape from the cone package.
//
// Shape mismatches between vectors of different lengths are programmer
// errors and panic with stable messages; constraint builders that depend on
// caller-supplied cone lists return errors instead.
package affine
