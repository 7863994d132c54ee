// Package sagecone lowers SAGE nonnegativity certificates over constrained
// domains into sparse conic blocks any exponential-cone solver can consume.
//
// 🚀 What is sagecone?
//
//	A deterministic compiler for conditional SAGE cone membership:
//		• Primal certificates: decompose a coefficient vector into
//		  per-term AGE cones via relative entropy
//		• Dual certificates: the matching multiplier-side constraints
//		• Cover selection: classify terms by sign knowledge, then prune
//		  provably-irrelevant cover participants
//		• Violation oracles: closed-form rough residuals, with optional
//		  exact refinement through an injected solver
//
// ✨ Why choose sagecone?
//
//   - Deterministic output – identical inputs emit identical block lists
//   - Explicit wiring – auxiliary solvers are injected, never discovered
//   - Typed blocks – sparse triplets tagged with the cones their rows map into
//   - Extensible – implement solver.Interface to plug in any backend
//
// Everything is organized under four subpackages:
//
//	affine/ — variable spaces, affine expressions & constraint lowering
//	cone/   — cone descriptors, typed blocks & projection residuals
//	sage/   — the primal and dual compilers plus the cover selector
//	solver/ — the auxiliary-solve contract and the HiGHS LP adapter
//
// Quick sketch of a primal certificate for c ∈ C_SAGE(α, A, b, K):
//
//	for every term i that could go negative:
//	    Σ_j ν_j·log(ν_j / (e·ĉ_j))  ≤  −ĉ_i + λᵀb    (relative entropy)
//	    (α_cover − α_i)ᵀ·ν − Aᵀ·λ  =  0              (linear coupling)
//	    λ ∈ K*                                        (dual domain)
//	and the ĉ vectors sum back to c.
//
// Dive into the package docs for the full API and the block contract.
//
//	go get github.com/katalvlaran/sagecone
package sagecone
