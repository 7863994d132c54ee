// SPDX-License-Identifier: MIT

// Package sage: term classification and cover selection.
//
// The cover selector runs once at compiler construction and is shared by the
// primal and dual compilers. It decides, per must-certify term, which other
// terms participate in that term's AGE sub-cone, then prunes participants
// that provably cannot matter.

package sage

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sagecone/affine"
	"github.com/katalvlaran/sagecone/cone"
	"github.com/katalvlaran/sagecone/solver"
)

// termSets partitions term indices by sign knowledge of the coefficient
// vector. The three sets are disjoint; indices carrying an exact zero
// constant fall in none of them.
type termSets struct {
	mustCertify []int // unknown or possibly-negative sign: needs an AGE cone
	defNegative []int // constant and strictly negative
	defPositive []int // constant and strictly positive
}

// classify derives the term partition from an affine coefficient vector.
// A nil vector (dual-only use without a companion primal) marks every term
// must-certify. All sets come out in ascending index order.
func classify(c affine.Vector, m int) termSets {
	var sets termSets
	if c == nil {
		sets.mustCertify = make([]int, m)
		for i := range sets.mustCertify {
			sets.mustCertify[i] = i
		}

		return sets
	}
	for i, ci := range c {
		switch {
		case !ci.IsConst():
			sets.mustCertify = append(sets.mustCertify, i)
		case ci.Offset < 0:
			sets.mustCertify = append(sets.mustCertify, i)
			sets.defNegative = append(sets.defNegative, i)
		case ci.Offset > 0:
			sets.defPositive = append(sets.defPositive, i)
		}
	}

	return sets
}

// coverHelper holds the immutable cover state shared by both compilers.
type coverHelper struct {
	m      int
	alpha  *mat.Dense // lifted, m×liftedN
	sets   termSets
	inNeg  map[int]bool
	covers map[int][]bool
	notes  []string // advisory diagnostics from cover validation
}

// newCoverHelper classifies terms and computes (or validates) the covers.
// Supplied covers bypass both reduction heuristics, matching their role as
// an explicit override.
func newCoverHelper(alpha *mat.Dense, c affine.Vector, A *mat.Dense, b []float64, K []cone.Cone, o options) (*coverHelper, error) {
	m, _ := alpha.Dims()
	h := &coverHelper{
		m:     m,
		alpha: alpha,
		sets:  classify(c, m),
		inNeg: make(map[int]bool),
	}
	for _, i := range h.sets.defNegative {
		h.inNeg[i] = true
	}

	if o.covers != nil {
		covers, notes, err := validateCovers(o.covers, h.sets, m, o.logger)
		if err != nil {
			return nil, err
		}
		h.covers = covers
		h.notes = notes

		return h, nil
	}

	h.covers = h.defaultCovers()
	if o.aggressive {
		h.aggressiveReduce()
	}
	if o.eliminate {
		h.eliminateTrivial(A, b, K, o)
	}

	return h, nil
}

// validateCovers checks a caller-supplied cover map and returns a corrected
// deep copy plus advisory diagnostics. The input map is never mutated.
// Missing must-certify keys and wrong mask lengths are hard errors;
// self-covering entries are corrected with a warning.
func validateCovers(supplied map[int][]bool, sets termSets, m int, log *zap.Logger) (map[int][]bool, []string, error) {
	covers := make(map[int][]bool, len(sets.mustCertify))
	var notes []string
	for _, i := range sets.mustCertify {
		mask, ok := supplied[i]
		if !ok {
			return nil, nil, fmt.Errorf("term %d: %w", i, ErrCoverKeyMissing)
		}
		if len(mask) != m {
			return nil, nil, fmt.Errorf("term %d: got %d, want %d: %w", i, len(mask), m, ErrCoverMask)
		}
		cp := make([]bool, m)
		copy(cp, mask)
		if cp[i] {
			cp[i] = false
			note := fmt.Sprintf("cover for term %d marked the term itself; corrected to false", i)
			notes = append(notes, note)
			log.Warn("sage: nonsensical self-cover entry corrected", zap.Int("term", i))
		}
		covers[i] = cp
	}

	return covers, notes, nil
}

// defaultCovers builds the starting cover for every must-certify term:
// all terms except the term itself and the definite-negative set.
func (h *coverHelper) defaultCovers() map[int][]bool {
	covers := make(map[int][]bool, len(h.sets.mustCertify))
	for _, i := range h.sets.mustCertify {
		mask := make([]bool, h.m)
		for j := range mask {
			mask[j] = true
		}
		for _, j := range h.sets.defNegative {
			mask[j] = false
		}
		mask[i] = false
		covers[i] = mask
	}

	return covers
}

// aggressiveReduce drops provably-unnecessary cover participants. It applies
// only when every exponent entry is nonnegative and some row is the zero
// vector: then for a must-certify term i (other than the zero row), a
// covered term j whose exponent row is exactly orthogonal to row i cannot
// contribute to certifying i's component, unless j is the zero row itself.
// The orthogonality test is exact, not tolerance-based.
func (h *coverHelper) aggressiveReduce() {
	_, cols := h.alpha.Dims()
	zeroLoc := -1
	for i := 0; i < h.m; i++ {
		rowSum := 0.0
		for j := 0; j < cols; j++ {
			v := h.alpha.At(i, j)
			if v < 0 {
				return // a negative exponent disables the heuristic outright
			}
			rowSum += v
		}
		if rowSum == 0 && zeroLoc < 0 {
			zeroLoc = i
		}
	}
	if zeroLoc < 0 {
		return
	}

	for _, i := range h.sets.mustCertify {
		if i == zeroLoc {
			continue
		}
		mask := h.covers[i]
		rowI := h.alpha.RawRowView(i)
		for j := 0; j < h.m; j++ {
			if mask[j] && j != zeroLoc && floats.Dot(rowI, h.alpha.RawRowView(j)) == 0 {
				mask[j] = false
			}
		}
	}
}

// eliminateTrivial empties the cover of every AGE cone whose reduction
// subproblem
//
//	minimize t  s.t.  (alpha_cover − alpha_i)·x ≤ t,  A·x + b ∈ K
//
// solves to a value below the configured threshold: such a cone imposes no
// constraint and need not be built downstream. A missing solver, a solve
// error, or a non-optimal status leaves the cover untouched (conservative).
func (h *coverHelper) eliminateTrivial(A *mat.Dense, b []float64, K []cone.Cone, o options) {
	if o.solver == nil {
		o.logger.Debug("sage: trivial-cone elimination skipped, no solver configured")

		return
	}
	for _, i := range h.sets.mustCertify {
		mask := h.covers[i]
		if !anyTrue(mask) {
			continue
		}
		prob := h.trivialProblem(i, mask, A, b, K)
		if prob == nil {
			continue
		}
		res, err := o.solver.Solve(o.ctx, prob)
		if err != nil {
			o.logger.Debug("sage: reduction solve failed, keeping cover",
				zap.Int("term", i), zap.Error(err))

			continue
		}
		if res.Status == solver.Solved && res.Value < o.threshold {
			for j := range mask {
				mask[j] = false
			}
		}
	}
}

// trivialProblem assembles the reduction subproblem for term i over a fresh
// variable space. The returned problem minimizes the epigraph variable t.
func (h *coverHelper) trivialProblem(i int, mask []bool, A *mat.Dense, b []float64, K []cone.Cone) *solver.Problem {
	_, liftedN := h.alpha.Dims()
	sp := affine.NewSpace()
	x := sp.Vec("x", liftedN)
	t := sp.Vec("t", 1)

	rows := make(affine.Vector, 0, h.m)
	for j := 0; j < h.m; j++ {
		if !mask[j] {
			continue
		}
		diff := make([]float64, liftedN)
		for col := 0; col < liftedN; col++ {
			diff[col] = h.alpha.At(j, col) - h.alpha.At(i, col)
		}
		rows = append(rows, t[0].Sub(x.Dot(diff)))
	}

	bg, err := affine.InCone(affine.MatVec(A, x).Add(affine.Const(b)), K)
	if err != nil {
		return nil
	}

	return &solver.Problem{
		NumCols:   sp.Dim(),
		Objective: map[int]float64{t[0].Terms[0].Col: 1},
		Blocks:    []*cone.Block{affine.GeZero(rows), bg},
	}
}

// coverSize counts the participants of term i's cover.
func (h *coverHelper) coverSize(i int) int {
	n := 0
	for _, v := range h.covers[i] {
		if v {
			n++
		}
	}

	return n
}

// copyCovers returns a deep copy of the cover map for public accessors.
func (h *coverHelper) copyCovers() map[int][]bool {
	out := make(map[int][]bool, len(h.covers))
	for i, mask := range h.covers {
		cp := make([]bool, len(mask))
		copy(cp, mask)
		out[i] = cp
	}

	return out
}

// anyTrue reports whether a mask has at least one participant.
func anyTrue(mask []bool) bool {
	for _, v := range mask {
		if v {
			return true
		}
	}

	return false
}

// sortedUnion merges two ascending index sets without duplicates.
func sortedUnion(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, s := range [][]int{a, b} {
		for _, i := range s {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	sort.Ints(out)

	return out
}
