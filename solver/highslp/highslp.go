// SPDX-License-Identifier: MIT

package highslp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lanl/highs"

	"github.com/katalvlaran/sagecone/cone"
	"github.com/katalvlaran/sagecone/solver"
)

// ErrUnsupportedBlock is returned when a problem contains a second-order or
// exponential block; HiGHS is a purely polyhedral backend.
var ErrUnsupportedBlock = errors.New("highslp: block requires a non-polyhedral cone")

// LP implements solver.Interface over HiGHS for polyhedral problems.
// The zero value is ready to use.
type LP struct{}

// New returns a HiGHS-backed auxiliary solver.
func New() *LP { return &LP{} }

// Solve translates the block system into one HiGHS model and runs it.
// Each block row A·x + b ∈ K becomes a ranged row: lower = −b for both
// nonnegative (upper +∞) and zero (upper −b) cones. All variables are free.
//
// The context is checked once up front; HiGHS itself is not interruptible
// mid-solve, which is acceptable for the small auxiliary programs this port
// exists for.
func (l *LP) Solve(ctx context.Context, p *solver.Problem) (solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return solver.Result{Status: solver.Failed}, err
	}

	inf := math.Inf(1)
	model := &highs.Model{
		ColCosts: make([]float64, p.NumCols),
		ColLower: make([]float64, p.NumCols),
		ColUpper: make([]float64, p.NumCols),
	}
	for j := 0; j < p.NumCols; j++ {
		model.ColLower[j] = -inf
		model.ColUpper[j] = inf
	}
	for col, cost := range p.Objective {
		model.ColCosts[col] = cost
	}

	for _, bk := range p.Blocks {
		if err := addBlock(model, bk, p.NumCols); err != nil {
			return solver.Result{Status: solver.Failed}, err
		}
	}

	sol, err := model.Solve()
	if err != nil {
		return solver.Result{Status: solver.Failed}, fmt.Errorf("highslp: %w", err)
	}
	if sol.Status != highs.Optimal {
		return solver.Result{Status: solver.Failed, Value: sol.Objective}, nil
	}

	x := make([]float64, p.NumCols)
	copy(x, sol.ColumnPrimal)

	return solver.Result{Status: solver.Solved, Value: sol.Objective, X: x}, nil
}

// addBlock appends one conic block as ranged dense rows.
func addBlock(model *highs.Model, bk *cone.Block, numCols int) error {
	for _, co := range bk.Cones {
		switch co.Kind {
		case cone.Nonneg, cone.Zero:
			// polyhedral, handled below
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedBlock, co.Kind)
		}
	}

	rows := bk.NumRows()
	dense := make([][]float64, rows)
	for r := range dense {
		dense[r] = make([]float64, numCols)
	}
	for k, v := range bk.Vals {
		dense[bk.Rows[k]][bk.Cols[k]] += v
	}

	inf := math.Inf(1)
	row := 0
	for _, co := range bk.Cones {
		for i := 0; i < co.Dim; i++ {
			lower := -bk.B[row]
			upper := inf
			if co.Kind == cone.Zero {
				upper = lower
			}
			model.AddDenseRow(lower, dense[row], upper)
			row++
		}
	}

	return nil
}
