// SPDX-License-Identifier: MIT

// Package sage: the dual conditional-SAGE compiler.

package sage

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sagecone/affine"
	"github.com/katalvlaran/sagecone/cone"
	"github.com/katalvlaran/sagecone/solver"
)

// dualFeasTol is the acceptance tolerance for the exact dual feasibility
// refinement: a solved program with |optimal value| below it certifies the
// per-term violation as zero.
const dualFeasTol = 1e-7

// DualCone aggregates constraints on a vector v so that v can act as a dual
// variable to a constraint of the form c ∈ C_SAGE(alpha, A, b, K). Supplying
// the companion primal coefficients (WithPrimalCoefficients) restricts the
// must-certify set by sign knowledge; without them every term participates.
type DualCone struct {
	name    string
	m, n    int
	liftedN int
	d       int
	alpha   *mat.Dense // lifted, m×liftedN
	A       *mat.Dense
	b       []float64
	K       []cone.Cone
	v       affine.Vector
	ech     *coverHelper
	terms   map[int]*dualTerm
	o       options
}

// dualTerm bundles one term's auxiliaries: the lifted multiplier mu over the
// background variable space and, for nonempty covers, the relative-entropy
// epigraph vector.
type dualTerm struct {
	mu  affine.Vector // liftedN
	epi affine.Vector // cover size; nil when the cover is empty
}

// NewDual constructs the dual compiler over the caller's variable space.
// Shapes and the background cone list are validated exactly as in NewPrimal;
// v must have length m.
func NewDual(sp *affine.Space, v affine.Vector, alpha, A mat.Matrix, b []float64, K []cone.Cone, name string, opts ...Option) (*DualCone, error) {
	o := gatherOptions(opts...)
	valid, err := cone.Validate(K)
	if err != nil {
		return nil, err
	}
	m, n := alpha.Dims()
	d, liftedN := A.Dims()
	if liftedN < n {
		return nil, fmt.Errorf("A has %d columns, alpha has %d: %w", liftedN, n, ErrShapeMismatch)
	}
	if len(b) != d {
		return nil, fmt.Errorf("b has length %d, A has %d rows: %w", len(b), d, ErrShapeMismatch)
	}
	if len(v) != m {
		return nil, fmt.Errorf("v has length %d, alpha has %d rows: %w", len(v), m, ErrShapeMismatch)
	}
	if dim := cone.Dim(valid); dim != d {
		return nil, fmt.Errorf("K has dimension %d, A has %d rows: %w", dim, d, ErrShapeMismatch)
	}
	if o.primalC != nil && len(o.primalC) != m {
		return nil, fmt.Errorf("companion c has length %d, alpha has %d rows: %w", len(o.primalC), m, ErrShapeMismatch)
	}

	dc := &DualCone{
		name:    name,
		m:       m,
		n:       n,
		liftedN: liftedN,
		d:       d,
		alpha:   liftAlpha(alpha, liftedN),
		A:       mat.DenseCopyOf(A),
		b:       append([]float64(nil), b...),
		K:       valid,
		v:       v,
		o:       o,
	}
	dc.ech, err = newCoverHelper(dc.alpha, o.primalC, dc.A, dc.b, dc.K, o)
	if err != nil {
		return nil, err
	}
	dc.initVariables(sp)

	return dc, nil
}

func (dc *DualCone) initVariables(sp *affine.Space) {
	dc.terms = make(map[int]*dualTerm, len(dc.ech.sets.mustCertify))
	if dc.m <= 1 {
		return
	}
	for _, i := range dc.ech.sets.mustCertify {
		t := &dualTerm{
			mu: sp.Vec(fmt.Sprintf("mu[%d]_%s", i, dc.name), dc.liftedN),
		}
		if size := dc.ech.coverSize(i); size > 0 {
			t.epi = sp.Vec(fmt.Sprintf("relent_epi[%d]_%s", i, dc.name), size)
		}
		dc.terms[i] = t
	}
}

// Mu returns term i's multiplier restricted to the non-auxiliary (first n)
// coordinates, or nil if i carries no AGE cone.
func (dc *DualCone) Mu(i int) affine.Vector {
	t, ok := dc.terms[i]
	if !ok {
		return nil
	}

	return t.mu[:dc.n]
}

// Covers returns a deep copy of the per-term cover map.
func (dc *DualCone) Covers() map[int][]bool { return dc.ech.copyCovers() }

// MustCertify returns the ascending indices that received a dual AGE cone.
func (dc *DualCone) MustCertify() []int {
	return append([]int(nil), dc.ech.sets.mustCertify...)
}

// Diagnostics returns the advisory notes produced by cover validation.
func (dc *DualCone) Diagnostics() []string {
	return append([]string(nil), dc.ech.notes...)
}

// ConicForm emits the dual certificate: nonnegativity of v on the union of
// the must-certify and definite-positive sets, then per must-certify term
// the elementwise relative-entropy lower bound linking the replicated v_i
// against the covered components, the linear inequality tying mu to the
// exponent differences and the entropy epigraph, and membership of
// A·mu + v_i·b in the background cone K.
func (dc *DualCone) ConicForm() ([]*cone.Block, error) {
	if dc.m == 1 {
		return []*cone.Block{affine.GeZero(dc.v)}, nil
	}

	nontrivial := sortedUnion(dc.ech.sets.mustCertify, dc.ech.sets.defPositive)
	blocks := []*cone.Block{affine.GeZero(dc.v.Gather(nontrivial))}

	for _, i := range dc.ech.sets.mustCertify {
		t := dc.terms[i]
		mask := dc.ech.covers[i]
		if size := dc.ech.coverSize(i); size > 0 {
			relent, err := affine.ElementwiseRelEnt(affine.Repeat(dc.v[i], size), dc.v.Select(mask), t.epi)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, relent, dc.muEpiRows(i))
		}

		bg, err := affine.InCone(dc.abkExpr(t.mu, dc.v[i]), dc.K)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, bg)
	}

	return blocks, nil
}

// muEpiRows builds the linear inequality −(alpha_cover − alpha_i)·mu ≥ epi,
// one row per covered term.
func (dc *DualCone) muEpiRows(i int) *cone.Block {
	t := dc.terms[i]
	mask := dc.ech.covers[i]
	rows := make(affine.Vector, 0, len(t.epi))
	k := 0
	for j := 0; j < dc.m; j++ {
		if !mask[j] {
			continue
		}
		var acc affine.Scalar
		for col := 0; col < dc.liftedN; col++ {
			if coef := dc.alpha.At(i, col) - dc.alpha.At(j, col); coef != 0 {
				acc = acc.Add(t.mu[col].Scale(coef))
			}
		}
		rows = append(rows, acc.Sub(t.epi[k]))
		k++
	}

	return affine.GeZero(rows)
}

// abkExpr is the affine image A·mu + v_i·b entering the background cone.
func (dc *DualCone) abkExpr(mu affine.Vector, vi affine.Scalar) affine.Vector {
	expr := affine.MatVec(dc.A, mu)
	for j := range expr {
		expr[j] = expr[j].Add(vi.Scale(dc.b[j]))
	}

	return expr
}

// Violation estimates how far a candidate point sits outside the dual cone:
// the maximum, over must-certify terms, of the clipped relative-entropy
// lower-bound residual plus the background-cone projection of A·mu + v_i·b.
// When a term's rough residual is positive and rough == false, the estimate
// is refined by re-solving that term's feasibility program; a solved program
// with near-zero value certifies the term as satisfied.
func (dc *DualCone) Violation(point []float64, normOrd float64, rough bool) (float64, error) {
	if dc.m == 1 {
		return negPartNorm(dc.v.Eval(point), normOrd), nil
	}

	vvals := dc.v.Eval(point)
	var maxViol float64
	for _, i := range dc.ech.sets.mustCertify {
		viol, err := dc.termViolation(i, normOrd, rough, vvals, point)
		if err != nil {
			return 0, err
		}
		if viol > maxViol {
			maxViol = viol
		}
	}

	return maxViol, nil
}

// termViolation is the per-term dual residual, optionally refined exactly.
func (dc *DualCone) termViolation(i int, normOrd float64, rough bool, vvals, point []float64) (float64, error) {
	mask := dc.ech.covers[i]
	size := dc.ech.coverSize(i)
	t := dc.terms[i]
	muVals := t.mu.Eval(point)

	abk := make([]float64, dc.d)
	var r, col int
	for r = 0; r < dc.d; r++ {
		acc := vvals[i] * dc.b[r]
		for col = 0; col < dc.liftedN; col++ {
			acc += dc.A.At(r, col) * muVals[col]
		}
		abk[r] = acc
	}
	abkViol, err := cone.ProjectPrimal(abk, dc.K)
	if err != nil {
		return 0, err
	}

	if size == 0 {
		return abkViol, nil
	}

	// lower bounds rel_entr(v_i, v_j) and residual −(alpha_j − alpha_i)·mu − lb
	lower := make([]float64, 0, size)
	residual := make([]float64, 0, size)
	for j := 0; j < dc.m; j++ {
		if !mask[j] {
			continue
		}
		lb := relEntr(vvals[i], vvals[j])
		lower = append(lower, lb)
		acc := 0.0
		for col = 0; col < dc.liftedN; col++ {
			acc += (dc.alpha.At(i, col) - dc.alpha.At(j, col)) * muVals[col]
		}
		res := acc - lb
		if res > 0 {
			res = 0
		}
		residual = append(residual, res)
	}
	viol := vecNorm(residual, normOrd) + abkViol
	if viol <= 0 || rough {
		return viol, nil
	}
	if dc.o.solver == nil {
		dc.o.logger.Debug("sage: exact dual refinement skipped, no solver configured")

		return viol, nil
	}

	refined, err := dc.refineTerm(i, vvals[i], lower)
	if err != nil {
		dc.o.logger.Warn("sage: dual feasibility refinement failed; keeping rough estimate")

		return viol, nil
	}
	if refined {
		return 0, nil
	}

	return viol, nil
}

// refineTerm solves the per-term feasibility program
//
//	find w:  −(alpha_cover − alpha_i)·w ≥ lower,  A·w + v_i·b ∈ K
//
// with a zero objective and reports whether it certifies satisfaction.
func (dc *DualCone) refineTerm(i int, vi float64, lower []float64) (bool, error) {
	if hasInf(lower) {
		return false, nil // no finite program can meet an infinite bound
	}
	mask := dc.ech.covers[i]
	sp := affine.NewSpace()
	w := sp.Vec("w", dc.liftedN)

	rows := make(affine.Vector, 0, len(lower))
	k := 0
	for j := 0; j < dc.m; j++ {
		if !mask[j] {
			continue
		}
		var acc affine.Scalar
		for col := 0; col < dc.liftedN; col++ {
			if coef := dc.alpha.At(i, col) - dc.alpha.At(j, col); coef != 0 {
				acc = acc.Add(w[col].Scale(coef))
			}
		}
		rows = append(rows, acc.AddConst(-lower[k]))
		k++
	}

	scaledB := make([]float64, dc.d)
	for j := range scaledB {
		scaledB[j] = vi * dc.b[j]
	}
	bg, err := affine.InCone(affine.MatVec(dc.A, w).Add(affine.Const(scaledB)), dc.K)
	if err != nil {
		return false, err
	}

	prob := &solver.Problem{
		NumCols:   sp.Dim(),
		Objective: map[int]float64{},
		Blocks:    []*cone.Block{affine.GeZero(rows), bg},
	}
	res, err := dc.o.solver.Solve(dc.o.ctx, prob)
	if err != nil {
		return false, err
	}

	return res.Status == solver.Solved && math.Abs(res.Value) < dualFeasTol, nil
}

// hasInf reports whether any entry is +Inf.
func hasInf(v []float64) bool {
	for _, x := range v {
		if math.IsInf(x, 1) {
			return true
		}
	}

	return false
}
