// SPDX-License-Identifier: MIT

// Package sage_test covers term classification and cover selection.
package sage_test

import (
	"context"
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

// stubSolver is a deterministic solver.Interface for exercising the
// reduction and exact-violation paths without a conic backend.
type stubSolver struct {
	fn    func(p *solver.Problem) (solver.Result, error)
	calls int
}

func (s *stubSolver) Solve(_ context.Context, p *solver.Problem) (solver.Result, error) {
	s.calls++
	if s.fn == nil {
		return solver.Result{Status: solver.Failed}, nil
	}

	return s.fn(p)
}

// orthantBackground is the 1-D background X = {x : x ≥ 0}.
func orthantBackground() (*mat.Dense, []float64, []cone.Cone) {
	return mat.NewDense(1, 1, []float64{1}), []float64{0}, []cone.Cone{cone.NewCone(cone.Nonneg, 1)}
}

// orthantBackground2 is the 2-D background X = {x ∈ R² : x ≥ 0}, wide enough
// for two-column exponent matrices.
func orthantBackground2() (*mat.Dense, []float64, []cone.Cone) {
	return mat.NewDense(2, 2, []float64{1, 0, 0, 1}), []float64{0, 0}, []cone.Cone{cone.NewCone(cone.Nonneg, 2)}
}

func TestClassification_Partition(t *testing.T) {
	sp := affine.NewSpace()
	free := sp.Vec("f", 1)
	// c = (free, -2, 3, 0)
	c := affine.Vector{free[0], affine.ConstScalar(-2), affine.ConstScalar(3), affine.ConstScalar(0)}
	alpha := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	A, b, K := orthantBackground()

	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "cls")
	require.NoError(t, err)

	require.Equal(t, []int{0, 1}, p.MustCertify())
	require.Equal(t, []int{1}, p.DefiniteNegative())
	require.Equal(t, []int{2}, p.DefinitePositive())

	// the three groups are disjoint and consistent: index 3 (exact zero
	// constant) belongs to none of them
	for _, i := range p.DefiniteNegative() {
		require.Contains(t, p.MustCertify(), i)
	}
	require.NotContains(t, p.MustCertify(), 3)
	require.NotContains(t, p.DefinitePositive(), 3)
}

func TestClassification_NilCompanionMeansAllMustCertify(t *testing.T) {
	sp := affine.NewSpace()
	v := sp.Vec("v", 3)
	alpha := mat.NewDense(3, 1, []float64{0, 1, 2})
	A, b, K := orthantBackground()

	dc, err := sage.NewDual(sp, v, alpha, A, b, K, "nilc")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, dc.MustCertify())
}

func TestDefaultCovers_ExcludeSelfAndNegatives(t *testing.T) {
	sp := affine.NewSpace()
	free := sp.Vec("f", 1)
	c := affine.Vector{free[0], affine.ConstScalar(-1), affine.ConstScalar(2)}
	// negative exponent entry keeps aggressive reduction out of the way
	alpha := mat.NewDense(3, 2, []float64{
		-1, 0,
		1, 1,
		0, 2,
	})
	A, b, K := orthantBackground2()

	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "default")
	require.NoError(t, err)

	covers := p.Covers()
	require.Equal(t, []bool{false, false, true}, covers[0]) // no self, no negatives
	require.Equal(t, []bool{true, false, true}, covers[1])
	require.False(t, covers[0][0])
	require.False(t, covers[1][1])
}

func TestSuppliedCovers_Validation(t *testing.T) {
	alpha := mat.NewDense(2, 1, []float64{1, 0})
	A, b, K := orthantBackground()

	newWith := func(covers map[int][]bool) (*sage.PrimalCone, error) {
		sp := affine.NewSpace()
		c := affine.Vector{sp.Vec("f", 1)[0], affine.ConstScalar(-1)}

		return sage.NewPrimal(sp, c, alpha, A, b, K, "supplied", sage.WithCovers(covers))
	}

	t.Run("missing key", func(t *testing.T) {
		_, err := newWith(map[int][]bool{0: {false, true}})
		require.ErrorIs(t, err, sage.ErrCoverKeyMissing)
	})

	t.Run("wrong mask length", func(t *testing.T) {
		_, err := newWith(map[int][]bool{0: {false, true}, 1: {true}})
		require.ErrorIs(t, err, sage.ErrCoverMask)
	})

	t.Run("self-cover corrected, input untouched", func(t *testing.T) {
		supplied := map[int][]bool{
			0: {true, true}, // self-cover at 0
			1: {true, false},
		}
		p, err := newWith(supplied)
		require.NoError(t, err)

		covers := p.Covers()
		require.False(t, covers[0][0], "self-cover must be corrected")
		require.True(t, covers[0][1])
		require.True(t, supplied[0][0], "caller's map must not be mutated")
		require.NotEmpty(t, p.Diagnostics())
	})

	t.Run("valid covers pass through without diagnostics", func(t *testing.T) {
		p, err := newWith(map[int][]bool{0: {false, true}, 1: {true, false}})
		require.NoError(t, err)
		require.Empty(t, p.Diagnostics())
	})
}

func TestAggressiveReduction_OrthogonalRowsDropped(t *testing.T) {
	sp := affine.NewSpace()
	free := sp.Vec("f", 3)
	c := affine.Vector{free[0], free[1], free[2]}
	// zero row at 0; rows 1 and 2 are orthogonal to each other
	alpha := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
	})
	A, b, K := orthantBackground2()

	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "aggr")
	require.NoError(t, err)

	covers := p.Covers()
	// term 1 drops term 2 and vice versa; both keep the zero-row term
	require.Equal(t, []bool{true, false, false}, covers[1])
	require.Equal(t, []bool{true, false, false}, covers[2])
	// the zero-row term itself is left untouched
	require.Equal(t, []bool{false, true, true}, covers[0])
}

func TestAggressiveReduction_DisabledByOption(t *testing.T) {
	sp := affine.NewSpace()
	free := sp.Vec("f", 3)
	c := affine.Vector{free[0], free[1], free[2]}
	alpha := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
	})
	A, b, K := orthantBackground2()

	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "noaggr", sage.WithoutAggressiveReduction())
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, p.Covers()[1])
}

func TestAggressiveReduction_DuplicateZeroRows(t *testing.T) {
	// Two all-zero rows: only the first is protected; the second behaves
	// like an ordinary row and is dropped from disjoint-support covers.
	sp := affine.NewSpace()
	free := sp.Vec("f", 3)
	c := affine.Vector{free[0], free[1], free[2]}
	alpha := mat.NewDense(3, 2, []float64{
		0, 0,
		0, 0,
		1, 1,
	})
	A, b, K := orthantBackground2()

	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "dupzero")
	require.NoError(t, err)

	covers := p.Covers()
	require.Equal(t, []bool{true, false, false}, covers[2]) // row 1 ⟂ row 2
	require.Equal(t, []bool{true, false, false}, covers[1]) // keeps only the protected zero row
	require.Equal(t, []bool{false, true, true}, covers[0])  // protected row untouched
}

func TestTrivialElimination_EmptiesCoverBelowThreshold(t *testing.T) {
	sp := affine.NewSpace()
	free := sp.Vec("f", 2)
	c := affine.Vector{free[0], free[1]}
	alpha := mat.NewDense(2, 1, []float64{-1, 2})
	A, b, K := orthantBackground()

	stub := &stubSolver{fn: func(p *solver.Problem) (solver.Result, error) {
		return solver.Result{Status: solver.Solved, Value: -1000}, nil
	}}
	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "elim", sage.WithSolver(stub))
	require.NoError(t, err)

	require.Equal(t, 2, stub.calls, "one solve per must-certify term")
	for i, mask := range p.Covers() {
		for j, v := range mask {
			require.False(t, v, "cover[%d][%d] should be emptied", i, j)
		}
	}
}

func TestTrivialElimination_KeepsCoverOnFailureOrModestValue(t *testing.T) {
	alpha := mat.NewDense(2, 1, []float64{-1, 2})
	A, b, K := orthantBackground()

	for _, tc := range []struct {
		name string
		fn   func(p *solver.Problem) (solver.Result, error)
	}{
		{"solver error", func(p *solver.Problem) (solver.Result, error) {
			return solver.Result{}, errors.New("backend exploded")
		}},
		{"value above threshold", func(p *solver.Problem) (solver.Result, error) {
			return solver.Result{Status: solver.Solved, Value: -1}, nil
		}},
		{"not solved", func(p *solver.Problem) (solver.Result, error) {
			return solver.Result{Status: solver.Unbounded, Value: -1e9}, nil
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sp := affine.NewSpace()
			free := sp.Vec("f", 2)
			c := affine.Vector{free[0], free[1]}
			p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "keep", sage.WithSolver(&stubSolver{fn: tc.fn}))
			require.NoError(t, err)
			require.Equal(t, []bool{false, true}, p.Covers()[0])
			require.Equal(t, []bool{true, false}, p.Covers()[1])
		})
	}
}

func TestTrivialElimination_CustomThreshold(t *testing.T) {
	alpha := mat.NewDense(2, 1, []float64{-1, 2})
	A, b, K := orthantBackground()

	sp := affine.NewSpace()
	free := sp.Vec("f", 2)
	c := affine.Vector{free[0], free[1]}
	stub := &stubSolver{fn: func(p *solver.Problem) (solver.Result, error) {
		return solver.Result{Status: solver.Solved, Value: -10}, nil
	}}
	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "thresh",
		sage.WithSolver(stub), sage.WithEliminationThreshold(-5))
	require.NoError(t, err)

	for _, mask := range p.Covers() {
		for _, v := range mask {
			require.False(t, v)
		}
	}
}

func TestTrivialElimination_SkippedWithoutSolver(t *testing.T) {
	sp := affine.NewSpace()
	free := sp.Vec("f", 2)
	c := affine.Vector{free[0], free[1]}
	alpha := mat.NewDense(2, 1, []float64{-1, 2})
	A, b, K := orthantBackground()

	p, err := sage.NewPrimal(sp, c, alpha, A, b, K, "nosolver")
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, p.Covers()[0])
}

func TestWithEliminationThresholdPanicsOnNaN(t *testing.T) {
	require.Panics(t, func() { sage.WithEliminationThreshold(math.NaN()) })
}
