// SPDX-License-Identifier: MIT

package cone

import "fmt"

// Validate normalizes a background cone list: it returns a fresh copy with
// the same kinds and dimensions, or fails if any entry is unsupported or has
// an invalid dimension. Pure function; the input is never mutated.
//
// Errors:
//   - ErrUnsupportedCone for a kind outside the closed set.
//   - ErrBadDim for dim < 1, or an Exp cone with dim != ExpDim.
//
// Complexity: O(len(K)).
func Validate(K []Cone) ([]Cone, error) {
	out := make([]Cone, len(K))
	for idx, co := range K {
		switch co.Kind {
		case Nonneg, SecondOrder, Zero:
			if co.Dim < 1 {
				return nil, fmt.Errorf("cone %d (%s, dim %d): %w", idx, co.Kind, co.Dim, ErrBadDim)
			}
		case Exp:
			if co.Dim != ExpDim {
				return nil, fmt.Errorf("cone %d (%s, dim %d): %w", idx, co.Kind, co.Dim, ErrBadDim)
			}
		default:
			return nil, fmt.Errorf("cone %d: %w: %s", idx, ErrUnsupportedCone, co.Kind)
		}
		out[idx] = Cone{Kind: co.Kind, Dim: co.Dim}
	}

	return out, nil
}
