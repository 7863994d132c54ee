// SPDX-License-Identifier: MIT

// Package solver: port types (Status, Problem, Result, Interface).
package solver

import (
	"context"

	"github.com/katalvlaran/sagecone/cone"
)

// Status classifies the outcome of one auxiliary solve.
type Status int

const (
	// Solved means an optimal point was found to the backend's tolerance.
	Solved Status = iota
	// Inaccurate means a point was found but tolerances were not met.
	Inaccurate
	// Infeasible means the constraint system admits no point.
	Infeasible
	// Unbounded means the objective is unbounded below.
	Unbounded
	// Failed covers every other backend outcome (numerical failure, limits).
	Failed
)

// String returns a stable lowercase tag for logging.
func (s Status) String() string {
	switch s {
	case Solved:
		return "solved"
	case Inaccurate:
		return "inaccurate"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	default:
		return "failed"
	}
}

// Problem is one minimization over NumCols variable columns:
//
//	minimize  Σ Objective[col]·x[col]
//	subject to each block's  A·x + b ∈ cones,
//
// with blocks stacked in order. Columns absent from Objective have zero cost;
// all variables are free (bounds, if any, arrive as Nonneg blocks).
type Problem struct {
	NumCols   int
	Objective map[int]float64
	Blocks    []*cone.Block
}

// Result carries the outcome of a solve. X is the primal point over the
// problem's columns; it is meaningful only when Status is Solved or
// Inaccurate.
type Result struct {
	Status Status
	Value  float64
	X      []float64
}

// Interface is the dependency-injected solve capability. Implementations
// must be safe for sequential reuse; the compilers never call Solve
// concurrently. A non-nil error means the backend itself failed (as opposed
// to reporting infeasibility or unboundedness through Status).
type Interface interface {
	Solve(ctx context.Context, p *Problem) (Result, error)
}
