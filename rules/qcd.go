// Package rules assembles concrete model.FeynmanRuleFunc implementations
// for common vertex topologies, delegating their colour structure to the
// colour package (spec §4.1's "helper structures precompute... (colour-
// index-jump, scalar-value) pairs", elaborated in §4.9).
package rules

import (
	"github.com/qflow/ampcore/colour"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/tensor"
)

// BuildQuarkGluonRule returns the natural-order rule for a vertex with
// legs ordered (quark, antiquark, gluon) — a fundamental, an
// anti-fundamental, and an adjoint colour index — for the produced leg at
// index produced. The Lorentz/Dirac part of the coupling is left to
// prefactor/couplings; only the colour contraction lives here.
func BuildQuarkGluonRule(nc, produced int) model.FeynmanRuleFunc {
	gens := colour.NewGenerators(nc)
	adjointDim := nc*nc - 1

	return func(prefactor complex128, couplings []complex128, iters []tensor.Iterator, _ []model.Momentum) {
		coupling := complex128(1)
		if len(couplings) > 0 {
			coupling = couplings[0]
		}
		quark, antiquark, gluon := iters[0].Tensor(), iters[1].Tensor(), iters[2].Tensor()

		switch produced {
		case 2:
			for a := 0; a < adjointDim; a++ {
				var sum complex128
				for i := 0; i < nc; i++ {
					qv, _ := quark.At(i)
					for j := 0; j < nc; j++ {
						aqv, _ := antiquark.At(j)
						sum += qv * aqv * gens.T(a, i, j)
					}
				}
				cur, _ := gluon.At(a)
				_ = gluon.SetAt(cur+prefactor*coupling*sum, a)
			}
		case 0:
			for i := 0; i < nc; i++ {
				var sum complex128
				for a := 0; a < adjointDim; a++ {
					gv, _ := gluon.At(a)
					for j := 0; j < nc; j++ {
						aqv, _ := antiquark.At(j)
						sum += gv * aqv * gens.T(a, i, j)
					}
				}
				cur, _ := quark.At(i)
				_ = quark.SetAt(cur+prefactor*coupling*sum, i)
			}
		case 1:
			for j := 0; j < nc; j++ {
				var sum complex128
				for a := 0; a < adjointDim; a++ {
					gv, _ := gluon.At(a)
					for i := 0; i < nc; i++ {
						qv, _ := quark.At(i)
						sum += gv * qv * gens.T(a, i, j)
					}
				}
				cur, _ := antiquark.At(j)
				_ = antiquark.SetAt(cur+prefactor*coupling*sum, j)
			}
		}
	}
}

// QuarkGluonRuleTable builds the three natural-order variants (quark,
// antiquark, or gluon produced) for a quark-antiquark-gluon vertex.
func QuarkGluonRuleTable(nc int) model.RuleTable {
	return model.RuleTable{
		Natural: [4]model.FeynmanRuleFunc{
			BuildQuarkGluonRule(nc, 0),
			BuildQuarkGluonRule(nc, 1),
			BuildQuarkGluonRule(nc, 2),
			nil,
		},
	}
}
