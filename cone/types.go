// SPDX-License-Identifier: MIT

// Package cone: domain types for typed conic blocks.
// Errors live in errors.go, validation in validate.go, projection residuals
// in project.go, per the package-per-concern conventions.
package cone

import "fmt"

// Kind enumerates the supported cone types. The set is closed: every switch
// over Kind in this module is exhaustive, and Validate rejects anything else.
type Kind byte

const (
	// Nonneg is the nonnegative orthant; size = dimension.
	Nonneg Kind = '+'
	// SecondOrder is the second-order (Lorentz) cone; size = dimension
	// including the epigraph slot, i.e. {(t, z) : ‖z‖₂ ≤ t}.
	SecondOrder Kind = 'S'
	// Exp is the exponential cone, closure{(u, v, w) : v·e^(u/v) ≤ w, v > 0}.
	// Every Exp instance has dimension exactly ExpDim.
	Exp Kind = 'e'
	// Zero is the equality (zero) cone; size = dimension.
	Zero Kind = '0'
)

// ExpDim is the fixed dimension of a single exponential-cone instance.
const ExpDim = 3

// String returns the wire tag of the kind ("+", "S", "e", "0").
func (k Kind) String() string {
	switch k {
	case Nonneg, SecondOrder, Exp, Zero:
		return string(rune(k))
	default:
		return fmt.Sprintf("Kind(%#x)", byte(k))
	}
}

// Cone is one typed block of a conic system: a kind and its dimension.
type Cone struct {
	Kind Kind
	Dim  int
}

// NewCone builds a cone descriptor. It does not validate; use Validate on the
// assembled list before handing it to a compiler.
func NewCone(kind Kind, dim int) Cone { return Cone{Kind: kind, Dim: dim} }

// Dim returns the total dimension of an ordered cone list.
func Dim(cones []Cone) int {
	var total int
	for _, co := range cones {
		total += co.Dim
	}

	return total
}

// Block is the conic-form output contract: a sparse coefficient matrix in
// triplet form, a dense offset vector B, and the ordered cones the rows map
// into. Row indices are local to the block; the consumer stacks blocks
// vertically in the order produced, so len(B) == Dim(Cones) always holds.
type Block struct {
	Vals  []float64
	Rows  []int
	Cols  []int
	B     []float64
	Cones []Cone
}

// NewBlock allocates a block with `rows` offset slots and the given cones.
// Callers fill triplets via AddEntry and offsets via SetOffset.
func NewBlock(rows int, cones ...Cone) *Block {
	return &Block{
		B:     make([]float64, rows),
		Cones: cones,
	}
}

// AddEntry appends one nonzero coefficient at (row, col).
func (b *Block) AddEntry(row, col int, val float64) {
	if val == 0 {
		return
	}
	b.Vals = append(b.Vals, val)
	b.Rows = append(b.Rows, row)
	b.Cols = append(b.Cols, col)
}

// SetOffset assigns the dense offset of one row.
func (b *Block) SetOffset(row int, val float64) { b.B[row] = val }

// NumRows reports the block height.
func (b *Block) NumRows() int { return len(b.B) }
