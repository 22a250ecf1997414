package grid

import (
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
)

// ClassPitches lists the MIDI pitches that sound a class.
type ClassPitches struct {
	Class   model.InstrumentClass
	Pitches []uint8
}

// Mapping resolves pitches to instrument classes. Entries are in priority
// order: when a pitch is listed under several classes, the earliest wins.
type Mapping struct {
	entries []ClassPitches
	lookup  map[uint8]int
}

// DefaultClasses groups the GM drum map into the canonical classes. Open and
// pedal hats are folded into closed_hat.
var DefaultClasses = []ClassPitches{
	{Class: model.Kick, Pitches: []uint8{35, 36}},
	{Class: model.Snare, Pitches: []uint8{38, 40}},
	{Class: model.ClosedHat, Pitches: []uint8{42, 44, 46}},
	{Class: model.Crash, Pitches: []uint8{49, 57}},
	{Class: model.LowTom, Pitches: []uint8{45, 41, 43}},
}

func NewMapping(entries []ClassPitches) (*Mapping, error) {
	m := &Mapping{lookup: make(map[uint8]int)}
	seen := make(map[model.InstrumentClass]bool)
	for i, e := range entries {
		if e.Class == "" {
			return nil, errors.Errorf("mapping entry %d has no class", i)
		}
		if seen[e.Class] {
			return nil, errors.Errorf("class %v listed twice", e.Class)
		}
		seen[e.Class] = true
		for _, p := range e.Pitches {
			if _, taken := m.lookup[p]; !taken {
				m.lookup[p] = i
			}
		}
	}
	m.entries = entries
	return m, nil
}

func DefaultMapping() *Mapping {
	m, err := NewMapping(DefaultClasses)
	if err != nil {
		panic("default mapping is invalid: " + err.Error())
	}
	return m
}

// Instruments is the column order of matrices built with this mapping.
func (m *Mapping) Instruments() model.Instruments {
	res := make(model.Instruments, len(m.entries))
	for i, e := range m.entries {
		res[i] = e.Class
	}
	return res
}

// Column returns the matrix column for a pitch, or
// ErrUnsupportedInstrumentMapping.
func (m *Mapping) Column(pitch uint8) (int, error) {
	idx, ok := m.lookup[pitch]
	if !ok {
		return -1, errors.Wrapf(model.ErrUnsupportedInstrumentMapping, "pitch %d", pitch)
	}
	return idx, nil
}

// Pitch is the first listed pitch of a class, used when rendering.
func (m *Mapping) Pitch(c model.InstrumentClass) (uint8, bool) {
	for _, e := range m.entries {
		if e.Class == c && len(e.Pitches) > 0 {
			return e.Pitches[0], true
		}
	}
	return 0, false
}
