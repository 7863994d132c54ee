// SPDX-License-Identifier: MIT

// Package affine: core expression types (Space, Term, Scalar, Vector).
// Arithmetic lives in ops.go, constraint lowering in constraints.go and
// relent.go.
package affine

import "fmt"

// Internal panic messages (programmer errors only; no magic strings).
const (
	panicLenMismatch = "affine: vector length mismatch"
	panicMaskLen     = "affine: mask length mismatch"
	panicBadVecLen   = "affine: vector length must be positive"
)

// Term is one nonzero coefficient of a scalar linear form.
type Term struct {
	Col  int     // variable column in the owning Space
	Coef float64 // nonzero coefficient
}

// Scalar is a sparse affine expression: Offset + Σ Terms[k].Coef · x[Col].
// Terms are sorted by column and hold no zero coefficients; the zero value
// is the constant 0. Scalars are immutable: every operation returns a fresh
// value.
type Scalar struct {
	Offset float64
	Terms  []Term
}

// Vector is an ordered sequence of scalar affine expressions.
type Vector []Scalar

// Space allocates variable columns for one compiled system. Names are kept
// for diagnostics only; semantics depend solely on column indices.
// A Space is not safe for concurrent use, matching the synchronous,
// single-threaded model of the compilers.
type Space struct {
	names []string
}

// NewSpace returns an empty variable space.
func NewSpace() *Space { return &Space{} }

// Dim reports the number of columns allocated so far.
func (s *Space) Dim() int { return len(s.names) }

// Name returns the diagnostic name of a column, or "" if out of range.
func (s *Space) Name(col int) string {
	if col < 0 || col >= len(s.names) {
		return ""
	}

	return s.names[col]
}

// Vec allocates n fresh columns named name[0..n-1] and returns the vector of
// pure single-term scalars referencing them. Panics on n < 1 (programmer
// error; variable shapes are fixed by construction in the compilers).
func (s *Space) Vec(name string, n int) Vector {
	if n < 1 {
		panic(panicBadVecLen)
	}
	base := len(s.names)
	out := make(Vector, n)
	var i int
	for i = 0; i < n; i++ {
		s.names = append(s.names, fmt.Sprintf("%s[%d]", name, i))
		out[i] = Scalar{Terms: []Term{{Col: base + i, Coef: 1}}}
	}

	return out
}

// Const wraps a float64 slice as a vector of constant scalars.
func Const(vals []float64) Vector {
	out := make(Vector, len(vals))
	for i, v := range vals {
		out[i] = Scalar{Offset: v}
	}

	return out
}

// ConstScalar wraps one constant as a Scalar.
func ConstScalar(v float64) Scalar { return Scalar{Offset: v} }

// IsConst reports whether the scalar carries no variable terms.
func (e Scalar) IsConst() bool { return len(e.Terms) == 0 }

// Eval evaluates the scalar at a solution point indexed by column.
// Columns beyond len(x) contribute zero (the point may predate later
// auxiliary allocations).
func (e Scalar) Eval(x []float64) float64 {
	v := e.Offset
	for _, t := range e.Terms {
		if t.Col < len(x) {
			v += t.Coef * x[t.Col]
		}
	}

	return v
}

// Eval evaluates every component at a solution point.
func (v Vector) Eval(x []float64) []float64 {
	out := make([]float64, len(v))
	for i, e := range v {
		out[i] = e.Eval(x)
	}

	return out
}
