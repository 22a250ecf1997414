package bbn

import (
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
)

// RandomSource is the only randomness the sampler uses. *rand.Rand
// satisfies it.
type RandomSource interface {
	Float64() float64
}

// Sample draws steps independent steps by ancestral sampling. Within a step
// each instrument is drawn after its parent, from the row for the value the
// parent just took. Nothing carries over between steps. Every step consumes
// exactly one draw per instrument.
func (m *Model) Sample(steps int, src RandomSource) (model.GeneratedPattern, error) {
	if steps <= 0 {
		return model.GeneratedPattern{}, errors.Wrapf(model.ErrInvalidEvidence, "step count %d", steps)
	}
	if m.order == nil {
		if err := m.prepare(); err != nil {
			return model.GeneratedPattern{}, err
		}
	}

	p := model.GeneratedPattern{
		Style:       m.Style,
		Instruments: append(model.Instruments(nil), m.Instruments...),
		Steps:       make([]model.StepAssignment, steps),
	}
	for s := range p.Steps {
		values := make([]int, len(m.Instruments))
		assignment := make(model.StepAssignment, len(m.Instruments))
		for _, i := range m.order {
			pv := NoParent
			if m.parents[i] != NoParent {
				pv = values[m.parents[i]]
			}
			values[i] = draw(m.CPTs[i].Row(pv), src.Float64())
			assignment[i] = values[i] == 1
		}
		p.Steps[s] = assignment
	}
	return p, nil
}

// SampleFor is Sample with an instrument set check, for callers that built
// their pipeline against a specific set.
func (m *Model) SampleFor(expected model.Instruments, steps int, src RandomSource) (model.GeneratedPattern, error) {
	if !m.Instruments.Equal(expected) {
		return model.GeneratedPattern{}, errors.Wrapf(model.ErrInstrumentMismatch, "model has %v, want %v", m.Instruments, expected)
	}
	return m.Sample(steps, src)
}
