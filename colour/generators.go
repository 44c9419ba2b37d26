// Package colour implements the colour-algebra helpers spec §4.1 describes
// as precomputing "the non-zero entries of standard colour tensors
// (generator-product T·T, commutator [T,T], structure-constant f, Kronecker
// deltas) so that each recursive call sees a list of (colour-index-jump,
// scalar-value) pairs rather than a nested loop".
package colour

import (
	"math"

	"github.com/qflow/ampcore/tensor"
)

// GellMannGenerators returns the n^2-1 generalized Gell-Mann matrices of
// su(n), normalized so Tr(T^a T^b) = (1/2) δ^ab — the fundamental
// representation's generators, used to build the generator-product,
// commutator, and structure-constant colour structures.
func GellMannGenerators(n int) []*tensor.Tensor {
	if n < 2 {
		return nil
	}
	var gens []*tensor.Tensor

	// symmetric off-diagonal generators
	for k := 0; k < n; k++ {
		for j := 0; j < k; j++ {
			g := tensor.New(n, n)
			g.SetAt(complex(0.5, 0), j, k)
			g.SetAt(complex(0.5, 0), k, j)
			gens = append(gens, g)
		}
	}
	// antisymmetric off-diagonal generators
	for k := 0; k < n; k++ {
		for j := 0; j < k; j++ {
			g := tensor.New(n, n)
			g.SetAt(complex(0, -0.5), j, k)
			g.SetAt(complex(0, 0.5), k, j)
			gens = append(gens, g)
		}
	}
	// diagonal (Cartan) generators
	for l := 1; l < n; l++ {
		g := tensor.New(n, n)
		norm := 1.0 / math.Sqrt(float64(2*l*(l+1)))
		for m := 0; m < l; m++ {
			g.SetAt(complex(norm, 0), m, m)
		}
		g.SetAt(complex(-norm*float64(l), 0), l, l)
		gens = append(gens, g)
	}
	return gens
}
