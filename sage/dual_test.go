// SPDX-License-Identifier: MIT

package sage_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sagecone/affine"
	"github.com/katalvlaran/sagecone/cone"
	"github.com/katalvlaran/sagecone/sage"
	"github.com/katalvlaran/sagecone/solver"
)

// witnessDual mirrors witnessPrimal on the dual side: companion coefficients
// (1, −1/2) leave index 1 as the only must-certify term, so the variable
// layout is v at columns 0–1, mu at column 2 and the entropy epigraph at
// column 3.
func witnessDual(t *testing.T, opts ...sage.Option) *sage.DualCone {
	t.Helper()
	sp := affine.NewSpace()
	v := sp.Vec("v", 2)
	alpha := mat.NewDense(2, 1, []float64{1, 0})
	A, b, K := orthantBackground()

	opts = append([]sage.Option{
		sage.WithPrimalCoefficients(affine.Const([]float64{1, -0.5})),
	}, opts...)
	dc, err := sage.NewDual(sp, v, alpha, A, b, K, "w", opts...)
	require.NoError(t, err)

	return dc
}

func TestNewDual_ShapeErrors(t *testing.T) {
	alpha := mat.NewDense(2, 1, []float64{1, 0})
	A, b, K := orthantBackground()

	t.Run("v wrong length", func(t *testing.T) {
		sp := affine.NewSpace()
		_, err := sage.NewDual(sp, sp.Vec("v", 3), alpha, A, b, K, "e")
		require.ErrorIs(t, err, sage.ErrShapeMismatch)
	})

	t.Run("companion wrong length", func(t *testing.T) {
		sp := affine.NewSpace()
		_, err := sage.NewDual(sp, sp.Vec("v", 2), alpha, A, b, K, "e",
			sage.WithPrimalCoefficients(affine.Const([]float64{1})))
		require.ErrorIs(t, err, sage.ErrShapeMismatch)
	})
}

func TestDual_SingleTerm(t *testing.T) {
	sp := affine.NewSpace()
	v := sp.Vec("v", 1)
	alpha := mat.NewDense(1, 1, []float64{1})
	A, b, K := orthantBackground()

	dc, err := sage.NewDual(sp, v, alpha, A, b, K, "single")
	require.NoError(t, err)

	blocks, err := dc.ConicForm()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, []cone.Cone{cone.NewCone(cone.Nonneg, 1)}, blocks[0].Cones)

	viol, err := dc.Violation([]float64{-2}, sage.DefaultNormOrd, true)
	require.NoError(t, err)
	require.Equal(t, 2.0, viol)

	viol, err = dc.Violation([]float64{3}, sage.DefaultNormOrd, true)
	require.NoError(t, err)
	require.Zero(t, viol)
}

func TestDual_MuAccessor(t *testing.T) {
	dc := witnessDual(t)
	require.Nil(t, dc.Mu(0), "definite-positive term carries no multiplier")
	require.Len(t, dc.Mu(1), 1)
}

func TestDual_ConicForm(t *testing.T) {
	dc := witnessDual(t)
	require.Equal(t, []int{1}, dc.MustCertify())
	require.Equal(t, []bool{true, false}, dc.Covers()[1])

	blocks, err := dc.ConicForm()
	require.NoError(t, err)
	require.Len(t, blocks, 4)

	// block 0: v ≥ 0 on the must-certify ∪ definite-positive coordinates
	require.Equal(t, []cone.Cone{cone.NewCone(cone.Nonneg, 2)}, blocks[0].Cones)
	// block 1: elementwise relative entropy, one exp triple
	require.Equal(t, []cone.Cone{cone.NewCone(cone.Exp, 3)}, blocks[1].Cones)
	// block 2: mu against the exponent differences and the epigraph
	require.Equal(t, []cone.Cone{cone.NewCone(cone.Nonneg, 1)}, blocks[2].Cones)
	// block 3: A·mu + v_1·b in the background cone
	require.Equal(t, []cone.Cone{cone.NewCone(cone.Nonneg, 1)}, blocks[3].Cones)

	// feasible point: v = (1, 1), mu = 0, epi = 0
	point := []float64{1, 1, 0, 0}
	require.Equal(t, []float64{1, 1}, evalBlock(t, blocks[0], point))
	// exp triple rows are (−epi, v_1, v_0)
	require.Equal(t, []float64{0, 1, 1}, evalBlock(t, blocks[1], point))
	// (alpha_1 − alpha_0)·mu − epi = −mu − epi
	require.Equal(t, []float64{0}, evalBlock(t, blocks[2], point))
	// A·mu + v_1·b = mu
	require.Equal(t, []float64{0}, evalBlock(t, blocks[3], point))
}

func TestDual_RoughViolation(t *testing.T) {
	dc := witnessDual(t)

	// v = (1, 1), mu = 0 satisfies every dual constraint
	viol, err := dc.Violation([]float64{1, 1, 0, 0}, sage.DefaultNormOrd, true)
	require.NoError(t, err)
	require.Zero(t, viol)

	// v = (1/2, 2): the entropy lower bound 2·log(4) cannot be met by mu = 0
	viol, err = dc.Violation([]float64{0.5, 2, 0, 0}, sage.DefaultNormOrd, true)
	require.NoError(t, err)
	require.InDelta(t, 2*math.Log(4), viol, 1e-12)

	// v_1 > 0 against v_0 = 0 pushes the lower bound to +Inf
	viol, err = dc.Violation([]float64{0, 1, 0, 0}, sage.DefaultNormOrd, true)
	require.NoError(t, err)
	require.True(t, math.IsInf(viol, 1))
}

func TestDual_ExactRefinement(t *testing.T) {
	point := []float64{0.5, 2, 0, 0} // rough violation 2·log(4)

	t.Run("solved near-zero certifies the term", func(t *testing.T) {
		stub := &stubSolver{fn: func(p *solver.Problem) (solver.Result, error) {
			return solver.Result{Status: solver.Solved, Value: 0}, nil
		}}
		dc := witnessDual(t, sage.WithSolver(stub), sage.WithoutTrivialElimination())
		viol, err := dc.Violation(point, sage.DefaultNormOrd, false)
		require.NoError(t, err)
		require.Zero(t, viol)
		require.Equal(t, 1, stub.calls)
	})

	t.Run("nonzero optimum keeps the rough estimate", func(t *testing.T) {
		stub := &stubSolver{fn: func(p *solver.Problem) (solver.Result, error) {
			return solver.Result{Status: solver.Solved, Value: 1}, nil
		}}
		dc := witnessDual(t, sage.WithSolver(stub), sage.WithoutTrivialElimination())
		viol, err := dc.Violation(point, sage.DefaultNormOrd, false)
		require.NoError(t, err)
		require.InDelta(t, 2*math.Log(4), viol, 1e-12)
	})

	t.Run("solve error keeps the rough estimate", func(t *testing.T) {
		stub := &stubSolver{fn: func(p *solver.Problem) (solver.Result, error) {
			return solver.Result{}, errors.New("backend exploded")
		}}
		dc := witnessDual(t, sage.WithSolver(stub), sage.WithoutTrivialElimination())
		viol, err := dc.Violation(point, sage.DefaultNormOrd, false)
		require.NoError(t, err)
		require.InDelta(t, 2*math.Log(4), viol, 1e-12)
	})

	t.Run("no solver skips refinement", func(t *testing.T) {
		dc := witnessDual(t)
		viol, err := dc.Violation(point, sage.DefaultNormOrd, false)
		require.NoError(t, err)
		require.InDelta(t, 2*math.Log(4), viol, 1e-12)
	})
}
