// SPDX-License-Identifier: MIT

// Package affine: arithmetic on scalar and vector linear forms.
// All operations are allocation-fresh and deterministic: term lists stay
// sorted by column, zero coefficients are dropped eagerly.

package affine

import "gonum.org/v1/gonum/mat"

// mergeTerms adds two sorted term lists, dropping exact-zero results.
// Complexity: O(len(a) + len(b)).
func mergeTerms(a, b []Term) []Term {
	out := make([]Term, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Col < b[j].Col:
			out = append(out, a[i])
			i++
		case a[i].Col > b[j].Col:
			out = append(out, b[j])
			j++
		default:
			if c := a[i].Coef + b[j].Coef; c != 0 {
				out = append(out, Term{Col: a[i].Col, Coef: c})
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)

	return out
}

// Add returns e + o.
func (e Scalar) Add(o Scalar) Scalar {
	return Scalar{Offset: e.Offset + o.Offset, Terms: mergeTerms(e.Terms, o.Terms)}
}

// Sub returns e − o.
func (e Scalar) Sub(o Scalar) Scalar { return e.Add(o.Scale(-1)) }

// Scale returns k·e. Scaling by zero yields the constant 0.
func (e Scalar) Scale(k float64) Scalar {
	if k == 0 {
		return Scalar{}
	}
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{Col: t.Col, Coef: k * t.Coef}
	}

	return Scalar{Offset: k * e.Offset, Terms: terms}
}

// AddConst returns e + k.
func (e Scalar) AddConst(k float64) Scalar {
	return Scalar{Offset: e.Offset + k, Terms: e.Terms}
}

// Add returns the elementwise sum v + o. Panics on length mismatch
// (programmer error; compiler shapes are fixed at construction).
func (v Vector) Add(o Vector) Vector {
	if len(v) != len(o) {
		panic(panicLenMismatch)
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].Add(o[i])
	}

	return out
}

// Sub returns the elementwise difference v − o.
func (v Vector) Sub(o Vector) Vector { return v.Add(o.Scale(-1)) }

// Scale returns k·v elementwise.
func (v Vector) Scale(k float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].Scale(k)
	}

	return out
}

// Select returns the subvector of components where mask is true.
// Panics when len(mask) != len(v).
func (v Vector) Select(mask []bool) Vector {
	if len(mask) != len(v) {
		panic(panicMaskLen)
	}
	out := make(Vector, 0, len(v))
	for i, keep := range mask {
		if keep {
			out = append(out, v[i])
		}
	}

	return out
}

// Gather returns the subvector at the given indices, in order.
func (v Vector) Gather(idx []int) Vector {
	out := make(Vector, len(idx))
	for k, i := range idx {
		out[k] = v[i]
	}

	return out
}

// Sum returns Σᵢ v[i].
func (v Vector) Sum() Scalar {
	var acc Scalar
	for _, e := range v {
		acc = acc.Add(e)
	}

	return acc
}

// Dot returns Σᵢ w[i]·v[i] for a constant weight vector w.
// Panics on length mismatch.
func (v Vector) Dot(w []float64) Scalar {
	if len(v) != len(w) {
		panic(panicLenMismatch)
	}
	var acc Scalar
	for i, e := range v {
		if w[i] != 0 {
			acc = acc.Add(e.Scale(w[i]))
		}
	}

	return acc
}

// Repeat returns a vector of n copies of e.
func Repeat(e Scalar, n int) Vector {
	out := make(Vector, n)
	for i := range out {
		out[i] = e
	}

	return out
}

// Stack concatenates vectors in order.
func Stack(vs ...Vector) Vector {
	var total int
	for _, v := range vs {
		total += len(v)
	}
	out := make(Vector, 0, total)
	for _, v := range vs {
		out = append(out, v...)
	}

	return out
}

// MatVec applies a dense matrix to a vector of expressions: out[i] = Σⱼ
// M[i,j]·v[j]. Panics when the matrix width does not match len(v).
// Complexity: O(r·c) term merges; zero entries are skipped.
func MatVec(M mat.Matrix, v Vector) Vector {
	r, c := M.Dims()
	if c != len(v) {
		panic(panicLenMismatch)
	}
	out := make(Vector, r)
	var i, j int
	for i = 0; i < r; i++ {
		var acc Scalar
		for j = 0; j < c; j++ {
			if mij := M.At(i, j); mij != 0 {
				acc = acc.Add(v[j].Scale(mij))
			}
		}
		out[i] = acc
	}

	return out
}
