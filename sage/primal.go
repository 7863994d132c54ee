// SPDX-License-Identifier: MIT

// Package sage: the primal conditional-SAGE compiler.

package sage

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sagecone/affine"
	"github.com/katalvlaran/sagecone/cone"
	"github.com/katalvlaran/sagecone/solver"
)

// PrimalCone certifies that a coefficient vector c lies in the conditional
// SAGE cone C_SAGE(alpha, A, b, K). The background system {x : A·x + b ∈ K}
// is assumed nonempty and is never validated here.
//
// All per-term state is created once at construction; ConicForm re-derives
// the block list from that fixed state on every call, deterministically and
// order-stably.
type PrimalCone struct {
	name    string
	m, n    int
	liftedN int
	d       int
	alpha   *mat.Dense // lifted, m×liftedN
	A       *mat.Dense // d×liftedN
	b       []float64
	K       []cone.Cone
	c       affine.Vector
	ech     *coverHelper
	terms   map[int]*primalTerm
	o       options
}

// primalTerm bundles the auxiliary variables of one AGE sub-cone: the weight
// vector nu over the covered subset, its relative-entropy epigraph, the
// decomposition slice cVar of the age vector, and the multiplier lambda
// coupling the cone to the dual of the background system.
type primalTerm struct {
	nu     affine.Vector // cover size; nil when the cover is empty
	epi    affine.Vector // cover size; nil when the cover is empty
	cVar   affine.Vector // cover size, +1 free slot unless definite-negative
	lambda affine.Vector // background row dimension d
}

// NewPrimal constructs the primal compiler over the caller's variable space.
//
// Inputs:
//   - sp: the space auxiliary variables are allocated in (shared with the
//     enclosing problem, so emitted columns are unambiguous).
//   - c: coefficient vector, length m; entries may be constants or free
//     affine forms. Use affine.Const for a fully numeric vector.
//   - alpha: m×n exponent matrix. Zero-padded internally when A is wider.
//   - A, b, K: background system; A may be any mat.Matrix (sparse inputs are
//     densified), K must contain only supported cone kinds.
//   - name: diagnostic prefix for auxiliary variable names.
//
// Errors: cone.ErrUnsupportedCone, cone.ErrBadDim, ErrShapeMismatch, and
// cover-map validation errors when WithCovers was supplied.
func NewPrimal(sp *affine.Space, c affine.Vector, alpha, A mat.Matrix, b []float64, K []cone.Cone, name string, opts ...Option) (*PrimalCone, error) {
	return newPrimal(sp, c, alpha, A, b, K, name, gatherOptions(opts...))
}

func newPrimal(sp *affine.Space, c affine.Vector, alpha, A mat.Matrix, b []float64, K []cone.Cone, name string, o options) (*PrimalCone, error) {
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
	if len(c) != m {
		return nil, fmt.Errorf("c has length %d, alpha has %d rows: %w", len(c), m, ErrShapeMismatch)
	}
	if dim := cone.Dim(valid); dim != d {
		return nil, fmt.Errorf("K has dimension %d, A has %d rows: %w", dim, d, ErrShapeMismatch)
	}

	p := &PrimalCone{
		name:    name,
		m:       m,
		n:       n,
		liftedN: liftedN,
		d:       d,
		alpha:   liftAlpha(alpha, liftedN),
		A:       mat.DenseCopyOf(A),
		b:       append([]float64(nil), b...),
		K:       valid,
		c:       c,
		o:       o,
	}
	p.ech, err = newCoverHelper(p.alpha, c, p.A, p.b, p.K, o)
	if err != nil {
		return nil, err
	}
	p.initVariables(sp)

	return p, nil
}

// initVariables allocates the per-term auxiliary variables. Nothing is
// allocated in the degenerate single-term case, where membership reduces to
// coordinatewise nonnegativity.
func (p *PrimalCone) initVariables(sp *affine.Space) {
	p.terms = make(map[int]*primalTerm, len(p.ech.sets.mustCertify))
	if p.m <= 1 {
		return
	}
	for _, i := range p.ech.sets.mustCertify {
		t := &primalTerm{}
		size := p.ech.coverSize(i)
		if size > 0 {
			t.nu = sp.Vec(fmt.Sprintf("nu^(%d)_%s", i, p.name), size)
			t.epi = sp.Vec(fmt.Sprintf("relent_epi^(%d)_%s", i, p.name), size)
		}
		cLen := size
		if !p.ech.inNeg[i] {
			cLen++
		}
		if cLen > 0 {
			t.cVar = sp.Vec(fmt.Sprintf("c^(%d)_%s", i, p.name), cLen)
		}
		if p.d > 0 {
			t.lambda = sp.Vec(fmt.Sprintf("lambda^(%d)_%s", i, p.name), p.d)
		}
		p.terms[i] = t
	}
}

// alignedAgeVectors lifts every term's decomposition slice into an m-length
// vector: entries at the cover indices come from cVar, the entry at i itself
// is either the fixed coefficient (definite-negative terms) or the last free
// decomposition slot.
func (p *PrimalCone) alignedAgeVectors() map[int]affine.Vector {
	ages := make(map[int]affine.Vector, len(p.terms))
	for _, i := range p.ech.sets.mustCertify {
		t := p.terms[i]
		mask := p.ech.covers[i]
		age := make(affine.Vector, p.m)
		k := 0
		for j := 0; j < p.m; j++ {
			if mask[j] {
				age[j] = t.cVar[k]
				k++
			}
		}
		if p.ech.inNeg[i] {
			age[i] = p.c[i]
		} else {
			age[i] = t.cVar[len(t.cVar)-1]
		}
		ages[i] = age
	}

	return ages
}

// ConicForm emits the full certificate as ordered blocks: per must-certify
// term a relative-entropy block (or its linear degenerate form), a linear
// equality tying nu to the exponent differences and lambda to Aᵀ, and the
// dual-cone domain of lambda; then one global equality forcing the age
// vectors to sum to c on every non-definite-negative coordinate.
func (p *PrimalCone) ConicForm() ([]*cone.Block, error) {
	if p.m == 1 {
		return []*cone.Block{affine.GeZero(p.c)}, nil
	}

	ages := p.alignedAgeVectors()
	var blocks []*cone.Block
	for _, i := range p.ech.sets.mustCertify {
		relent, err := p.ageRelEnt(i, ages[i])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, relent, p.ageLinEq(i))

		domain, err := affine.InDualCone(p.terms[i].lambda, p.K)
		if err != nil {
			return nil, err
		}
		if domain.NumRows() > 0 {
			blocks = append(blocks, domain)
		}
	}
	blocks = append(blocks, p.sumToC(ages))

	return blocks, nil
}

// ageRelEnt builds the relative-entropy constraint of one AGE cone:
//
//	Σ nu_j·log(nu_j / (e·age_j)) ≤ −age_i + lambdaᵀ·b
//
// over the covered subset. With an empty cover the cone degenerates to the
// linear inequality lambdaᵀ·b ≤ age_i.
func (p *PrimalCone) ageRelEnt(i int, age affine.Vector) (*cone.Block, error) {
	t := p.terms[i]
	mask := p.ech.covers[i]
	if !anyTrue(mask) {
		return affine.GeZero(affine.Vector{age[i].Sub(t.lambda.Dot(p.b))}), nil
	}
	y := age.Select(mask).Scale(math.E)
	z := age[i].Scale(-1).Add(t.lambda.Dot(p.b))

	return affine.SumRelEnt(t.nu, y, z, t.epi)
}

// ageLinEq builds the equality (alpha_cover − alpha_i)ᵀ·nu − Aᵀ·lambda = 0
// (just −Aᵀ·lambda = 0 when the cover is empty), one row per lifted column.
func (p *PrimalCone) ageLinEq(i int) *cone.Block {
	t := p.terms[i]
	mask := p.ech.covers[i]
	rows := make(affine.Vector, p.liftedN)
	var col, j, r int
	for col = 0; col < p.liftedN; col++ {
		var acc affine.Scalar
		k := 0
		for j = 0; j < p.m; j++ {
			if !mask[j] {
				continue
			}
			if coef := p.alpha.At(j, col) - p.alpha.At(i, col); coef != 0 {
				acc = acc.Add(t.nu[k].Scale(coef))
			}
			k++
		}
		for r = 0; r < p.d; r++ {
			if arc := p.A.At(r, col); arc != 0 {
				acc = acc.Sub(t.lambda[r].Scale(arc))
			}
		}
		rows[col] = acc
	}

	return affine.EqZero(rows)
}

// sumToC builds the global equality: the age vectors, summed across the
// must-certify set, reproduce c on every coordinate outside the
// definite-negative set (those coordinates are reproduced exactly by their
// own singleton AGE cones by construction).
func (p *PrimalCone) sumToC(ages map[int]affine.Vector) *cone.Block {
	total := affine.Const(make([]float64, p.m))
	for _, i := range p.ech.sets.mustCertify {
		total = total.Add(ages[i])
	}
	mask := make([]bool, p.m)
	for i := range mask {
		mask[i] = !p.ech.inNeg[i]
	}

	return affine.EqZero(total.Select(mask).Sub(p.c.Select(mask)))
}

// Covers returns a deep copy of the per-term cover map.
func (p *PrimalCone) Covers() map[int][]bool { return p.ech.copyCovers() }

// MustCertify returns the ascending indices that received an AGE cone.
func (p *PrimalCone) MustCertify() []int {
	return append([]int(nil), p.ech.sets.mustCertify...)
}

// DefiniteNegative returns the ascending indices with constant negative
// coefficients.
func (p *PrimalCone) DefiniteNegative() []int {
	return append([]int(nil), p.ech.sets.defNegative...)
}

// DefinitePositive returns the ascending indices with constant positive
// coefficients.
func (p *PrimalCone) DefinitePositive() []int {
	return append([]int(nil), p.ech.sets.defPositive...)
}

// Diagnostics returns the advisory notes produced by cover validation.
func (p *PrimalCone) Diagnostics() []string {
	return append([]string(nil), p.ech.notes...)
}

// Violation estimates how far a candidate solution point sits outside the
// modeled cone; zero (within tolerance) certifies membership.
//
// Rough mode aggregates closed-form residuals: the clipped shortfall of c
// against the summed age vectors, plus the maximum per-term AGE violation
// (relative-entropy residual with negative weights clipped, equality
// residual norm, and the dual-cone projection of lambda). If any per-term
// violation is infinite the maximum is replaced by the sum of finite ones
// plus an exact projection.
//
// Exact mode (rough == false) solves the projection program
// min ‖c − ĉ‖ s.t. ĉ ∈ C_SAGE through the injected solver; on any solve
// failure it falls back to the rough estimate.
func (p *PrimalCone) Violation(point []float64, normOrd float64, rough bool) (float64, error) {
	cvals := p.c.Eval(point)
	if p.m == 1 {
		return negPartNorm(cvals, normOrd), nil
	}

	if !rough {
		viol, err := p.exactProject(cvals)
		if err == nil {
			return viol, nil
		}
		p.o.logger.Warn("sage: exact primal violation unavailable, using rough estimate", zap.Error(err))
	}

	ages := p.alignedAgeVectors()
	sumAge := make([]float64, p.m)
	ageVals := make(map[int][]float64, len(ages))
	lambdaVals := make(map[int][]float64, len(ages))
	for _, i := range p.ech.sets.mustCertify {
		vals := ages[i].Eval(point)
		ageVals[i] = vals
		lambdaVals[i] = p.terms[i].lambda.Eval(point)
		for j, v := range vals {
			sumAge[j] += v
		}
	}

	shortfall := make([]float64, p.m)
	for j := range shortfall {
		if r := cvals[j] - sumAge[j]; r > 0 {
			shortfall[j] = r
		}
	}
	sumToCViol := vecNorm(shortfall, normOrd)

	var maxViol, finiteSum float64
	sawInf := false
	for _, i := range p.ech.sets.mustCertify {
		v := p.ageViolation(i, normOrd, ageVals[i], lambdaVals[i], point)
		if math.IsInf(v, 1) {
			sawInf = true

			continue
		}
		finiteSum += v
		if v > maxViol {
			maxViol = v
		}
	}

	if sawInf {
		total := sumToCViol + finiteSum
		proj, err := p.exactProject(cvals)
		if err != nil {
			p.o.logger.Warn("sage: projection fallback unavailable", zap.Error(err))

			return math.Inf(1), nil
		}

		return total + proj, nil
	}

	return sumToCViol + maxViol, nil
}

// ageViolation is the rough per-term residual of one AGE cone.
func (p *PrimalCone) ageViolation(i int, normOrd float64, age, lambda []float64, point []float64) float64 {
	lambdaViol, err := cone.ProjectDual(lambda, p.K)
	if err != nil {
		return math.Inf(1)
	}
	mask := p.ech.covers[i]
	if !anyTrue(mask) {
		// lambdaᵀ·b ≤ age_i
		residual := age[i] - bDotLambda(p.b, lambda)

		return math.Max(0, -residual) + lambdaViol
	}

	t := p.terms[i]
	x := t.nu.Eval(point)
	for k, v := range x {
		if v < 0 {
			x[k] = 0
		}
	}

	relentRes := -age[i] + bDotLambda(p.b, lambda)
	k := 0
	for j := 0; j < p.m; j++ {
		if mask[j] {
			relentRes += relEntr(x[k], math.E*age[j])
			k++
		}
	}
	relentViol := math.Max(0, relentRes)

	eqRes := make([]float64, p.liftedN)
	var col, j, r int
	for col = 0; col < p.liftedN; col++ {
		acc := 0.0
		k = 0
		for j = 0; j < p.m; j++ {
			if mask[j] {
				acc += (p.alpha.At(j, col) - p.alpha.At(i, col)) * x[k]
				k++
			}
		}
		for r = 0; r < p.d; r++ {
			acc -= p.A.At(r, col) * lambda[r]
		}
		eqRes[col] = acc
	}

	return relentViol + vecNorm(eqRes, normOrd) + lambdaViol
}

// exactProject solves min ‖target − ĉ‖₂ over ĉ ∈ C_SAGE(alpha, A, b, K) and
// returns the optimal distance. An all-nonnegative target is trivially a
// member and short-circuits to zero.
func (p *PrimalCone) exactProject(target []float64) (float64, error) {
	nonneg := true
	for _, v := range target {
		if v < 0 {
			nonneg = false

			break
		}
	}
	if nonneg {
		return 0, nil
	}
	if p.o.solver == nil {
		return 0, ErrNoSolver
	}

	sp := affine.NewSpace()
	chat := sp.Vec("c", p.m)
	t := sp.Vec("t", 1)

	auxOpts := p.o
	auxOpts.covers = nil
	auxOpts.primalC = nil
	aux, err := newPrimal(sp, chat, p.alpha, p.A, p.b, p.K, p.name+"_proj", auxOpts)
	if err != nil {
		return 0, err
	}
	blocks, err := aux.ConicForm()
	if err != nil {
		return 0, err
	}
	blocks = append(blocks, affine.SecondOrder(t[0], affine.Const(target).Sub(chat)))

	prob := &solver.Problem{
		NumCols:   sp.Dim(),
		Objective: map[int]float64{t[0].Terms[0].Col: 1},
		Blocks:    blocks,
	}
	res, err := p.o.solver.Solve(p.o.ctx, prob)
	if err != nil {
		return 0, err
	}
	if res.Status != solver.Solved && res.Status != solver.Inaccurate {
		return 0, fmt.Errorf("%w: status %s", ErrAuxSolve, res.Status)
	}

	return math.Max(0, res.Value), nil
}

// bDotLambda guards floats.Dot against the d == 0 background edge case.
func bDotLambda(b, lambda []float64) float64 {
	if len(b) == 0 {
		return 0
	}

	return floats.Dot(b, lambda)
}
