package generator

import (
	"errors"
	"fmt"

	"github.com/qflow/ampcore/algorithm"
	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/initialstate"
	"github.com/qflow/ampcore/log"
	"github.com/qflow/ampcore/metrics"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/parni"
	"github.com/qflow/ampcore/phasespace"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/randsrc"
	"github.com/qflow/ampcore/sampler"
)

// GeVToPb is the natural-units conversion factor from GeV^-2 to
// picobarns used to report cross sections in the conventional unit
// (spec §6 "unit conversion... GeV to pb").
const GeVToPb = 3.8937966e8

// ErrUnsupportedPhaseSpace is returned when cfg.PhaseSpace names a mode
// New does not (yet) implement.
var ErrUnsupportedPhaseSpace = errors.New("generator: unsupported phase-space generator mode")

// momentumSampler abstracts over sampler.RAMBOGenerator and
// sampler.RecursiveMomentumGenerator so Generator can drive either
// without caring which is configured.
type momentumSampler interface {
	// generate returns one momentum per leg of the process, incoming legs
	// first (matching process.Process.Legs' ordering); incoming-leg
	// entries are placeholders the caller overwrites with the true beam
	// momenta via pinIncomingLegs.
	generate(src randsrc.Source, incoming model.Momentum, nIn int) ([]model.Momentum, float64, []int, error)
}

type rambosAdapter struct{ r *sampler.RAMBOGenerator }

func (a rambosAdapter) generate(src randsrc.Source, incoming model.Momentum, nIn int) ([]model.Momentum, float64, []int, error) {
	res, err := a.r.Generate(src, incoming.Mass())
	if err != nil {
		return nil, 0, nil, err
	}
	momenta := make([]model.Momentum, nIn+len(res.Momenta))
	copy(momenta[nIn:], res.Momenta)
	return momenta, res.Weight, nil, nil
}

type recursiveAdapter struct{ r *sampler.RecursiveMomentumGenerator }

func (a recursiveAdapter) generate(src randsrc.Source, incoming model.Momentum, nIn int) ([]model.Momentum, float64, []int, error) {
	res, chosen, err := a.r.Generate(src, incoming)
	if err != nil {
		return nil, 0, nil, err
	}
	return res.Momenta, res.Weight, chosen, nil
}

// Generator is spec §4.8's process generator façade: it ties one
// algorithm.Algorithm to one initial-state beam model, one momentum
// sampler, and the helicity/colour samplers, and drives weighted and
// unweighted event production with running multichannel/grid adaptation
// (spec §2 "the process generator owns one Algorithm, one phase-space
// generator, the helicity/colour samplers, and the adaptive grids they
// share").
type Generator struct {
	Algorithm *algorithm.Algorithm
	Beams     *initialstate.Beams
	Params    *config.Parameters
	Sink      Sink
	Logger    log.Logger

	momentum momentumSampler
	tree     *phasespace.Tree // non-nil only for Recursive phase space

	CrossSection metrics.CrossSection

	maxWeight     float64
	batchSinceAdp int
}

// New builds a Generator for process processString against m, using
// cfg's knobs to select the phase-space, helicity, and colour samplers.
// beams must already be constructed for the process's incoming flavours.
func New(m *model.Model, processString string, cfg *config.Parameters, beams *initialstate.Beams, sink Sink, logger log.Logger) (*Generator, error) {
	if err := cfg.Valid(); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	sumSpins := cfg.Helicity == config.HelicitySpinorSum
	sumColours := cfg.Colour == config.ColourSummed
	alg, err := algorithm.New(m, processString, algorithm.DefaultFinalLeg, sumSpins, sumColours)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	g := &Generator{
		Algorithm: alg,
		Beams:     beams,
		Params:    cfg,
		Sink:      sink,
		Logger:    logger,
	}

	p := alg.Subprocess[0].Process
	masses := make([]float64, 0, p.NOut())
	for _, leg := range p.Legs {
		if leg.Direction != process.Outgoing {
			continue
		}
		particle := m.GetParticleByID(leg.Particle)
		if particle != nil {
			masses = append(masses, particle.GetMass())
		} else {
			masses = append(masses, 0)
		}
	}

	switch cfg.PhaseSpace {
	case config.Uniform:
		g.momentum = rambosAdapter{sampler.NewRAMBO(masses, cfg.NewtonRaphsonIterations)}
	case config.Recursive, config.RecursiveBackwardS, config.RecursiveBackwardSHat:
		tr, err := phasespace.Build(m, p)
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		if cfg.AdaptiveAngle {
			if err := tr.EnableAdaptiveAngles(cfg.GridBinCap, toParniMode(cfg.GridMode)); err != nil {
				return nil, fmt.Errorf("generator: %w", err)
			}
		}
		g.tree = tr
		g.momentum = recursiveAdapter{&sampler.RecursiveMomentumGenerator{Tree: tr, Exps: cfg.Exponents}}
	default:
		return nil, ErrUnsupportedPhaseSpace
	}

	return g, nil
}

// GenerateOnce draws one event: beams, momenta (with incoming legs
// pinned to the sampled beam momenta), helicities, colours, evaluates
// the matrix element, and folds every piece into the event weight
// (spec §4.8 "weighted generation").
func (g *Generator) GenerateOnce(src randsrc.Source) (Event, error) {
	p := g.Algorithm.Subprocess[0].Process

	beamA, beamB, beamWeight, err := g.Beams.Generate(src)
	if err != nil {
		return Event{}, fmt.Errorf("generator: %w", err)
	}
	incoming := beamA.Add(beamB)

	momenta, psWeight, chosen, err := g.momentum.generate(src, incoming, p.NIn())
	if err != nil {
		return Event{}, fmt.Errorf("generator: %w", err)
	}
	momenta = pinIncomingLegs(momenta, p, beamA, beamB)

	helRes, err := sampler.SampleHelicities(g.Params.Helicity, p, src)
	if err != nil {
		return Event{}, fmt.Errorf("generator: %w", err)
	}
	colRes, err := sampler.SampleColours(g.Params.Colour, g.Params.ColourDiscrete, p, src)
	if err != nil {
		return Event{}, fmt.Errorf("generator: %w", err)
	}

	var m2 float64
	if helRes.Summed {
		m2, err = g.sumHelicitiesAndSubprocesses(momenta)
	} else {
		var amp complex128
		amp, err = g.Algorithm.Evaluate(0, momenta, helRes.Helicities)
		m2 = real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	if err != nil {
		return Event{}, fmt.Errorf("generator: %w", err)
	}

	weight := beamWeight * psWeight * helRes.Weight * colRes.Weight * m2 * symmetryFactor(p) * GeVToPb

	if g.tree != nil {
		for _, pc := range chosen {
			g.tree.RecordParticleContribution(pc, weight)
		}
		g.tree.UpdateAngleGrids(weight)
	}
	g.CrossSection.Observe(weight)
	if weight > g.maxWeight {
		g.maxWeight = weight
	}
	g.maybeAdapt()

	ev := buildEvent(p, momenta, helRes, colRes, weight, g.maxWeight)
	if g.Sink != nil {
		g.Sink.OnEvent(ev)
	}
	return ev, nil
}

// GenerateUnweighted draws events via GenerateOnce until one survives
// rejection sampling against (1-ε)*maxWeight (spec §4.8 "unweighted
// generation... accept with probability weight/max_weight"), returning
// the accepted event. maxTries bounds the number of draws attempted.
func (g *Generator) GenerateUnweighted(src randsrc.Source, maxTries int) (Event, error) {
	eps := g.Params.DiscardedHighWeightFraction
	for try := 0; try < maxTries; try++ {
		ev, err := g.GenerateOnce(src)
		if err != nil {
			continue
		}
		threshold := g.maxWeight * (1 - eps)
		if threshold <= 0 {
			return ev, nil
		}
		if src.Float64()*threshold <= ev.Weight {
			return ev, nil
		}
	}
	g.Logger.Warn("unweighted generation exhausted its try budget without an accepted event")
	return Event{}, fmt.Errorf("generator: no event accepted within %d tries", maxTries)
}

// maybeAdapt runs channel/grid adaptation once every configured batch
// size, per cfg.AutoAdaptChannelBatch/AutoAdaptGridBatch.
func (g *Generator) maybeAdapt() {
	g.batchSinceAdp++
	if g.tree == nil {
		return
	}
	if g.Params.AutoAdaptChannelBatch > 0 && g.batchSinceAdp%g.Params.AutoAdaptChannelBatch == 0 {
		g.tree.AdaptChannels(g.Params.ChannelAdaptivity)
	}
	if g.Params.AutoAdaptGridBatch > 0 && g.batchSinceAdp%g.Params.AutoAdaptGridBatch == 0 {
		g.tree.AdaptAngleGrids()
	}
}

// ReportCrossSection pushes the running cross-section estimate to Sink.
func (g *Generator) ReportCrossSection() {
	if g.Sink == nil {
		return
	}
	g.Sink.OnCrossSection(g.CrossSection.Mean(), g.CrossSection.StdError(), g.CrossSection.N())
}

// sumHelicitiesAndSubprocesses sums |M|² over every combination of
// external-leg helicity states and every built subprocess. Neither
// Algorithm.Evaluate nor tree.Evaluate perform an internal helicity sum
// (Algorithm.EvaluateSum sums subprocesses at one fixed helicity
// configuration, per spec §4.7's "the algorithm's evaluate_sum is
// used"); spinor-sum mode needs the generator itself to enumerate the
// helicity states a spin sum genuinely requires.
func (g *Generator) sumHelicitiesAndSubprocesses(momenta []model.Momentum) (float64, error) {
	p := g.Algorithm.Subprocess[0].Process
	states := make([][]int, len(p.Legs))
	for i, leg := range p.Legs {
		particle := p.Model.GetParticleByID(leg.Particle)
		if particle == nil {
			states[i] = []int{0}
			continue
		}
		states[i] = particle.Helicities()
	}

	var total float64
	combo := make([]int, len(states))
	var recurse func(leg int) error
	recurse = func(leg int) error {
		if leg == len(states) {
			for i := 0; i < g.Algorithm.NSubprocess(); i++ {
				amp, err := g.Algorithm.Evaluate(i, momenta, combo)
				if err != nil {
					return err
				}
				total += real(amp)*real(amp) + imag(amp)*imag(amp)
			}
			return nil
		}
		for _, h := range states[leg] {
			combo[leg] = h
			if err := recurse(leg + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := recurse(0); err != nil {
		return 0, err
	}
	return total, nil
}

// pinIncomingLegs overwrites every incoming leg's momentum with the
// true sampled beam value and recomputes the process's sink leg (the
// last leg in p.Legs, always outgoing per process.buildProcess's leg
// ordering) from four-momentum conservation, discarding whatever the
// recursive channel-tree decomposition assigned it: the channel tree
// treats every leg but the sink uniformly as a combinatorial external,
// which is correct for the amplitude current tree but wrong for
// generation, where incoming legs must equal the externally supplied
// beam momenta rather than a freshly sampled value.
func pinIncomingLegs(momenta []model.Momentum, p *process.Process, beamA, beamB model.Momentum) []model.Momentum {
	out := append([]model.Momentum(nil), momenta...)
	beams := []model.Momentum{beamA, beamB}
	bi := 0
	sink := len(p.Legs) - 1
	for i, leg := range p.Legs {
		if leg.Direction == process.Incoming && bi < len(beams) {
			out[i] = beams[bi]
			bi++
		}
	}
	total := out[0]
	for i := 1; i < len(out); i++ {
		if i == sink {
			continue
		}
		if p.Legs[i].Direction == process.Incoming {
			total = total.Add(out[i])
		} else {
			total = total.Sub(out[i])
		}
	}
	out[sink] = total
	return out
}

// symmetryFactor returns 1/n! for each group of n identical outgoing
// flavours, the combinatorial factor needed when summing over final
// states indistinguishable by permutation (spec §6 "symmetry factor for
// identical outgoing particles").
func symmetryFactor(p *process.Process) float64 {
	counts := map[model.ID]int{}
	for _, leg := range p.Legs {
		if leg.Direction == process.Outgoing {
			counts[leg.Particle]++
		}
	}
	factor := 1.0
	for _, n := range counts {
		for i := 2; i <= n; i++ {
			factor /= float64(i)
		}
	}
	return factor
}

func buildEvent(p *process.Process, momenta []model.Momentum, hel sampler.HelicityResult, col sampler.ColourResult, weight, maxWeight float64) Event {
	nIn, nOut := p.NIn(), p.NOut()
	ev := Event{
		Weight:      weight,
		MaxWeight:   maxWeight,
		Incoming:    make([]model.Momentum, nIn),
		Outgoing:    make([]model.Momentum, nOut),
		IncomingPDG: make([]int, nIn),
		OutgoingPDG: make([]int, nOut),
	}
	if !hel.Summed {
		ev.Helicities = hel.Helicities
	}
	ev.ColourTag, ev.AntiColourTag = assignColourFlowTags(p, col)

	inI, outI := 0, 0
	for i, leg := range p.Legs {
		if leg.Direction == process.Incoming {
			ev.Incoming[inI] = momenta[i]
			ev.IncomingPDG[inI] = pdgOf(p, leg.Particle)
			inI++
		} else {
			ev.Outgoing[outI] = momenta[i]
			ev.OutgoingPDG[outI] = pdgOf(p, leg.Particle)
			outI++
		}
	}
	return ev
}

func pdgOf(p *process.Process, id model.ID) int {
	particle := p.Model.GetParticleByID(id)
	if particle == nil {
		return 0
	}
	return particle.PDG
}

// assignColourFlowTags maps SampleColours' flow-index output onto Les
// Houches tags (spec §6 "colour tag and anti-colour tag per particle...
// starting from 501"): each distinct flow index seen becomes one tag,
// assigned to the coloured leg's ColourTag and the matched anti-coloured
// leg's AntiColourTag.
func assignColourFlowTags(p *process.Process, col sampler.ColourResult) (colourTag, antiColourTag []int) {
	n := len(p.Legs)
	colourTag = make([]int, n)
	antiColourTag = make([]int, n)
	if len(col.Indices) != n {
		return colourTag, antiColourTag
	}
	tagByFlow := map[int]int{}
	next := leHouchesBase
	for i, leg := range p.Legs {
		flow := col.Indices[i]
		if flow == 0 {
			continue
		}
		particle := p.Model.GetParticleByID(leg.Particle)
		if particle == nil {
			continue
		}
		tag, ok := tagByFlow[flow]
		if !ok {
			tag = next
			tagByFlow[flow] = tag
			next++
		}
		switch particle.ColourType(0) {
		case 1:
			colourTag[i] = tag
		case -1:
			antiColourTag[i] = tag
		}
	}
	return colourTag, antiColourTag
}

// toParniMode maps the configuration layer's grid-scoring mode onto
// parni's own Mode enum; the two are defined in the same order (spec §6
// "grid mode: sum of weights, variance, maximum, cumulant").
func toParniMode(m config.GridMode) parni.Mode {
	switch m {
	case config.VarianceWeights:
		return parni.SumSquares
	case config.MaximumWeights:
		return parni.Maximum
	case config.CumulantWeights:
		return parni.Cumulant
	default:
		return parni.RunningSum
	}
}
