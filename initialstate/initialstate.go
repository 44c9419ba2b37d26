// Package initialstate builds the incoming four-momenta for the three
// beam configurations of spec §6's "initial state" knob, elaborated in
// SPEC_FULL.md §4.11 from original_source's partonic/e+e-/proton_proton
// flavours (dropped by the distillation, supplemented here).
package initialstate

import (
	"errors"
	"math"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/randsrc"
)

// ErrBeamBelowThreshold is returned by proton_proton generation when none
// of its momentum-fraction draws gives a positive PDF value at both beams.
var ErrBeamBelowThreshold = errors.New("initialstate: beam energy insufficient for requested process")

// PDFSet is the stand-in parton-distribution interface SPEC_FULL.md §4.11
// names in place of an LHAPDF binding: XFX returns x·f(x, Q²) for parton
// flavour id at momentum fraction x and scale Q².
type PDFSet interface {
	XFX(id int, x, q2 float64) float64
}

// Beams produces the two incoming lab-frame four-momenta and an overall
// weight (1 for fixed-energy beams; the product of the two PDF values
// f1·f2 for proton_proton) for one event.
type Beams struct {
	Kind       config.InitialState
	EnergyA    float64
	EnergyB    float64
	MassA      float64
	MassB      float64
	PDF        PDFSet
	FlavourIDA int
	FlavourIDB int
	QScale2    float64
}

// New validates and returns a Beams generator for kind using the beam
// energies and masses from cfg/particle masses. flavourA, flavourB and pdf
// are only consulted when kind is ProtonProton.
func New(cfg *config.Parameters, massA, massB float64, pdf PDFSet, flavourA, flavourB int) (*Beams, error) {
	if cfg.BeamEnergy[0] <= 0 || cfg.BeamEnergy[1] <= 0 {
		return nil, config.ErrInvalidBeamEnergy
	}
	if cfg.Initial == config.ProtonProton && pdf == nil {
		return nil, errors.New("initialstate: proton_proton initial state requires a PDFSet")
	}
	return &Beams{
		Kind:       cfg.Initial,
		EnergyA:    cfg.BeamEnergy[0],
		EnergyB:    cfg.BeamEnergy[1],
		MassA:      massA,
		MassB:      massB,
		PDF:        pdf,
		FlavourIDA: flavourA,
		FlavourIDB: flavourB,
		QScale2:    cfg.BeamEnergy[0] * cfg.BeamEnergy[1] * 4,
	}, nil
}

// Generate returns the two incoming four-momenta and the initial-state
// weight for one event. partonic and eplus_eminus both fix back-to-back
// beams along the z axis at the configured energies (massless beam
// particles unless MassA/MassB are set); proton_proton additionally
// samples x1, x2 from the PDF set and rescales the partonic CM energy.
func (b *Beams) Generate(src randsrc.Source) (a, bMom model.Momentum, weight float64, err error) {
	switch b.Kind {
	case config.Partonic, config.EPlusEMinus:
		return b.fixedBeams(), b.otherFixedBeam(), 1, nil
	case config.ProtonProton:
		return b.partonBeams(src)
	default:
		return model.Momentum{}, model.Momentum{}, 0, errors.New("initialstate: unknown initial state kind")
	}
}

func pz(energy, mass float64) float64 {
	p2 := energy*energy - mass*mass
	if p2 < 0 {
		return 0
	}
	return math.Sqrt(p2)
}

func (b *Beams) fixedBeams() model.Momentum {
	return model.Momentum{b.EnergyA, 0, 0, pz(b.EnergyA, b.MassA)}
}

func (b *Beams) otherFixedBeam() model.Momentum {
	return model.Momentum{b.EnergyB, 0, 0, -pz(b.EnergyB, b.MassB)}
}

// partonBeams draws momentum fractions x1, x2 uniformly in (0,1), retrying
// (up to 1000 times) until the PDF values f1, f2 at the scale QScale2 are
// both positive, then builds the rescaled incoming momenta and returns
// f1·f2 as the weight.
func (b *Beams) partonBeams(src randsrc.Source) (a, bMom model.Momentum, weight float64, err error) {
	const maxTries = 1000
	var x1, x2, f1, f2 float64
	for try := 0; try < maxTries; try++ {
		x1 = src.Float64()
		x2 = src.Float64()
		if x1 <= 0 || x2 <= 0 {
			continue
		}
		f1 = b.PDF.XFX(b.FlavourIDA, x1, b.QScale2)
		f2 = b.PDF.XFX(b.FlavourIDB, x2, b.QScale2)
		if f1 > 0 && f2 > 0 {
			break
		}
	}
	if f1 <= 0 || f2 <= 0 {
		return model.Momentum{}, model.Momentum{}, 0, ErrBeamBelowThreshold
	}

	ea := x1 * b.EnergyA
	eb := x2 * b.EnergyB
	a = model.Momentum{ea, 0, 0, pz(ea, b.MassA)}
	bMom = model.Momentum{eb, 0, 0, -pz(eb, b.MassB)}
	return a, bMom, f1 * f2, nil
}
