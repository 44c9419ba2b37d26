package colour

import "github.com/qflow/ampcore/tensor"

// Term is one non-zero (colour-index-jump, scalar-value) pair, the form
// spec §4.1 says the recursive-relation dispatch should see "rather than a
// nested loop".
type Term struct {
	Jump  int
	Value complex128
}

// Structure is a colour-algebra object; the interface only exposes Dim.
// The concrete values come from methods of the implementing types:
// Delta.Value returns δ_ij, and Generators.T, Generators.Commutator and
// Generators.StructureConstant return T^a_{ij}, [T^a,T^b]_{ij} and f^{abc}.
type Structure interface {
	// Dim is the fundamental-representation dimension (N_c).
	Dim() int
}

// Delta is the Kronecker δ_ij colour structure (singlet propagator,
// quark-line identity).
type Delta struct{ N int }

func (d Delta) Dim() int { return d.N }

// Value returns δ_ij.
func (d Delta) Value(i, j int) complex128 {
	if i == j {
		return 1
	}
	return 0
}

// Generators wraps the fundamental generator matrices T^a for repeated
// lookups by adjoint index.
type Generators struct {
	N   int
	Gen []*tensor.Tensor // length N^2-1, each N x N
}

func (g Generators) Dim() int { return g.N }

// NewGenerators builds and wraps the generalized Gell-Mann basis.
func NewGenerators(n int) Generators {
	return Generators{N: n, Gen: GellMannGenerators(n)}
}

// T returns T^a_{ij}.
func (g Generators) T(a, i, j int) complex128 {
	v, _ := g.Gen[a].At(i, j)
	return v
}

// Commutator returns [T^a, T^b]_{ij} = sum_k T^a_ik T^b_kj - T^b_ik T^a_kj.
func (g Generators) Commutator(a, b, i, j int) complex128 {
	var sum complex128
	for k := 0; k < g.N; k++ {
		sum += g.T(a, i, k)*g.T(b, k, j) - g.T(b, i, k)*g.T(a, k, j)
	}
	return sum
}

// StructureConstant returns f^{abc} = -2i Tr([T^a,T^b] T^c), the standard
// normalization for generators with Tr(T^aT^b) = (1/2)δ^ab.
func (g Generators) StructureConstant(a, b, c int) complex128 {
	var tr complex128
	for i := 0; i < g.N; i++ {
		for k := 0; k < g.N; k++ {
			tr += g.Commutator(a, b, i, k) * g.T(c, k, i)
		}
	}
	return complex(0, -2) * tr
}

// FierzProduct returns sum_a T^a_{ij} T^a_{kl} in closed form via the su(N)
// Fierz identity: (1/2)(δ_il δ_jk - (1/N) δ_ij δ_kl). This is the colour
// factor for one-gluon exchange between two quark lines (spec §4.1
// "generator-product T·T"), and does not require summing over the
// N^2-1 generators explicitly.
func (g Generators) FierzProduct(i, j, k, l int) complex128 {
	n := float64(g.N)
	d := Delta{N: g.N}
	return 0.5*(d.Value(i, l)*d.Value(j, k)) - complex(0.5/n, 0)*(d.Value(i, j)*d.Value(k, l))
}
