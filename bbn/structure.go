package bbn

import (
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
)

// Edge says Child is conditioned on Parent.
type Edge struct {
	Parent model.InstrumentClass
	Child  model.InstrumentClass
}

// Structure is the dependency graph between instruments. It is configuration,
// not learned: fitting and sampling work with any valid structure.
type Structure []Edge

// DefaultStructure chains the kit from the kick up to the toms.
var DefaultStructure = Structure{
	{Parent: model.Kick, Child: model.Snare},
	{Parent: model.Snare, Child: model.ClosedHat},
	{Parent: model.ClosedHat, Child: model.Crash},
	{Parent: model.Crash, Child: model.LowTom},
}

// Parents maps each instrument to its column's parent column, or NoParent.
func (s Structure) Parents(instruments model.Instruments) ([]int, error) {
	parents := make([]int, len(instruments))
	for i := range parents {
		parents[i] = NoParent
	}
	for _, e := range s {
		p := instruments.Index(e.Parent)
		c := instruments.Index(e.Child)
		if p < 0 || c < 0 {
			return nil, errors.Errorf("edge %v -> %v names an unknown instrument", e.Parent, e.Child)
		}
		if p == c {
			return nil, errors.Errorf("%v cannot depend on itself", e.Child)
		}
		if parents[c] != NoParent {
			return nil, errors.Errorf("%v has more than one parent", e.Child)
		}
		parents[c] = p
	}
	return parents, nil
}

// Order returns the columns in an order where every parent precedes its
// children. Ties go to the earlier column.
func (s Structure) Order(instruments model.Instruments) ([]int, error) {
	parents, err := s.Parents(instruments)
	if err != nil {
		return nil, err
	}

	placed := make([]bool, len(instruments))
	order := make([]int, 0, len(instruments))
	for len(order) < len(instruments) {
		progress := false
		for c, p := range parents {
			if placed[c] || (p != NoParent && !placed[p]) {
				continue
			}
			placed[c] = true
			order = append(order, c)
			progress = true
			break
		}
		if !progress {
			return nil, errors.New("structure has a cycle")
		}
	}
	return order, nil
}

func (s Structure) Validate(instruments model.Instruments) error {
	_, err := s.Order(instruments)
	return err
}
