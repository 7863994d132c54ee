// SPDX-License-Identifier: MIT

// Package sage: functional configuration for the cover selector and the
// primal/dual compilers. This file defines:
//   - Option (functional setter) and the internal options state,
//   - documented defaults (constants),
//   - WithX constructors (panic only on nonsensical values),
//   - gatherOptions (internal resolution point).
//
// Design goals:
//   - Deterministic behavior: no global state; defaults live in one place.
//   - The auxiliary solver is injected, never chosen here (see package solver).
package sage

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/sagecone/affine"
	"github.com/katalvlaran/sagecone/solver"
)

const (
	// DefaultAggressiveReduction controls the orthogonality-based cover
	// pruning (applies only to nonnegative exponent matrices with a zero row).
	DefaultAggressiveReduction = true

	// DefaultTrivialElimination controls the solve-based detection of AGE
	// cones that are unbounded past the threshold and hence unconstraining.
	DefaultTrivialElimination = true

	// DefaultEliminationThreshold is the large-magnitude cutoff below which a
	// reduction subproblem's optimum marks an AGE cone as trivial. The value
	// is a heuristic with no closed-form derivation; it is configurable via
	// WithEliminationThreshold rather than hard-coded at use sites.
	DefaultEliminationThreshold = -100.0
)

// DefaultNormOrd is the vector norm order used by the violation oracles.
// A var, not a const: math.Inf is not a constant expression.
var DefaultNormOrd = math.Inf(1)

const panicThresholdInvalid = "sage: WithEliminationThreshold: threshold must not be NaN"

// Option mutates internal options. Safe to apply repeatedly; last-writer-wins.
type Option func(*options)

// options is the resolved configuration shared by the cover selector and the
// compilers. Unexported by design: public entry points accept ...Option.
type options struct {
	ctx        context.Context
	aggressive bool
	eliminate  bool
	threshold  float64
	solver     solver.Interface
	logger     *zap.Logger
	covers     map[int][]bool
	primalC    affine.Vector
}

// WithoutAggressiveReduction disables the orthogonality-based cover pruning.
func WithoutAggressiveReduction() Option {
	return func(o *options) { o.aggressive = false }
}

// WithoutTrivialElimination disables the solve-based trivial-AGE-cone
// detection. Covers are then kept at their default (or supplied) size.
func WithoutTrivialElimination() Option {
	return func(o *options) { o.eliminate = false }
}

// WithEliminationThreshold overrides the trivial-cone cutoff. A reduction
// subproblem must solve to a value strictly below the threshold for the
// cover to be emptied. Panics on NaN (programmer error).
func WithEliminationThreshold(t float64) Option {
	if math.IsNaN(t) {
		panic(panicThresholdInvalid)
	}

	return func(o *options) { o.threshold = t }
}

// WithSolver injects the auxiliary-solve capability used by trivial-cone
// elimination and the exact violation oracles. Without one, elimination is
// skipped and exact violations fall back to rough estimates.
func WithSolver(s solver.Interface) Option {
	return func(o *options) { o.solver = s }
}

// WithLogger attaches a structured logger for advisory diagnostics
// (self-cover corrections, skipped reductions, solver fallbacks). A nil
// logger restores the default no-op.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log == nil {
			log = zap.NewNop()
		}
		o.logger = log
	}
}

// WithContext supplies the context passed to every auxiliary solve. The
// compilers impose no timeout semantics of their own.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithCovers supplies a caller-built cover map, bypassing default cover
// construction and both reduction heuristics. Keys must include every
// must-certify index; masks must have length m. The map is validated into a
// corrected deep copy — the caller's map is never mutated.
func WithCovers(covers map[int][]bool) Option {
	return func(o *options) { o.covers = covers }
}

// WithPrimalCoefficients supplies the companion primal coefficient vector to
// a dual compiler, restricting its must-certify set by sign knowledge.
// Without it, every term is must-certify.
func WithPrimalCoefficients(c affine.Vector) Option {
	return func(o *options) { o.primalC = c }
}

// gatherOptions resolves setters against the documented defaults.
func gatherOptions(opts ...Option) options {
	o := options{
		ctx:        context.Background(),
		aggressive: DefaultAggressiveReduction,
		eliminate:  DefaultTrivialElimination,
		threshold:  DefaultEliminationThreshold,
		logger:     zap.NewNop(),
	}
	for _, set := range opts {
		set(&o)
	}

	return o
}
