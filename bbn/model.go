package bbn

import (
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/corpus"
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Model is a fitted network for one style.
type Model struct {
	Style        string
	Instruments  model.Instruments
	Structure    Structure
	StepDuration float64

	// CPTs is aligned with Instruments.
	CPTs []*CPT

	// Stats describe the filtered corpus the model was fit on.
	Stats model.TrainingStats

	order   []int
	parents []int
}

func (m *Model) prepare() error {
	parents, err := m.Structure.Parents(m.Instruments)
	if err != nil {
		return err
	}
	order, err := m.Structure.Order(m.Instruments)
	if err != nil {
		return err
	}
	if len(m.CPTs) != len(m.Instruments) {
		return errors.Errorf("model has %d tables for %d instruments", len(m.CPTs), len(m.Instruments))
	}
	m.parents = parents
	m.order = order
	return nil
}

func (m *Model) CPT(c model.InstrumentClass) *CPT {
	idx := m.Instruments.Index(c)
	if idx < 0 {
		return nil
	}
	return m.CPTs[idx]
}

// Fit estimates every table by counting (parent value, own value) pairs over
// rows. Rows are expected to be active steps.
func Fit(style string, rows [][]bool, instruments model.Instruments, structure Structure, stepDuration float64) (*Model, error) {
	if len(rows) == 0 {
		return nil, errors.Wrapf(model.ErrInsufficientTrainingData, "%v has no rows", style)
	}

	m := &Model{
		Style:        style,
		Instruments:  instruments,
		Structure:    structure,
		StepDuration: stepDuration,
		CPTs:         make([]*CPT, len(instruments)),
	}
	parents, err := structure.Parents(instruments)
	if err != nil {
		return nil, errors.Wrap(err, "invalid structure")
	}

	marginals := make([][]int, len(instruments))
	for i, c := range instruments {
		m.CPTs[i] = &CPT{
			Variable: c,
			Rows:     make(map[int][]float64),
			Counts:   make(map[int][]int),
		}
		if parents[i] != NoParent {
			m.CPTs[i].Parent = instruments[parents[i]]
		}
		marginals[i] = make([]int, Cardinality)
	}

	for n, row := range rows {
		if len(row) != len(instruments) {
			return nil, errors.Wrapf(model.ErrInstrumentMismatch, "row %d has %d columns, want %d", n, len(row), len(instruments))
		}
		for i, hit := range row {
			pv := NoParent
			if parents[i] != NoParent {
				pv = boolValue(row[parents[i]])
			}
			counts, ok := m.CPTs[i].Counts[pv]
			if !ok {
				counts = make([]int, Cardinality)
				m.CPTs[i].Counts[pv] = counts
			}
			counts[boolValue(hit)]++
			marginals[i][boolValue(hit)]++
		}
	}

	for i, cpt := range m.CPTs {
		for pv, counts := range cpt.Counts {
			cpt.Rows[pv] = normalize(counts)
		}
		cpt.Fallback = normalize(marginals[i])
	}

	if err := m.prepare(); err != nil {
		return nil, err
	}
	return m, nil
}

type Trainer struct {
	Instruments  model.Instruments
	Structure    Structure
	StepDuration float64
	MinSamples   int
}

func NewTrainer() *Trainer {
	return &Trainer{
		Instruments:  model.DefaultInstruments,
		Structure:    DefaultStructure,
		StepDuration: constants.StepDuration,
		MinSamples:   constants.MinActiveSteps,
	}
}

// Train filters silent steps out of the corpus and fits a model, or returns
// ErrInsufficientTrainingData when too few active steps remain.
func (t *Trainer) Train(c corpus.Corpus) (*Model, error) {
	logger := log.WithFields(log.Fields{
		"function": "Trainer.Train",
		"style":    c.Style,
	})

	if !c.Instruments.Equal(t.Instruments) {
		return nil, errors.Wrapf(model.ErrInstrumentMismatch, "corpus has %v, trainer has %v", c.Instruments, t.Instruments)
	}

	filtered := c.FilterSilent()
	rows := filtered.Rows()
	if len(rows) < t.MinSamples {
		return nil, errors.Wrapf(model.ErrInsufficientTrainingData, "%v has %d active steps, need %d", c.Style, len(rows), t.MinSamples)
	}

	m, err := Fit(c.Style, rows, t.Instruments, t.Structure, t.StepDuration)
	if err != nil {
		return nil, err
	}
	m.Stats = filtered.Stats()
	logger.Infof("Trained on %d active steps from %d examples", len(rows), len(filtered.Examples))
	return m, nil
}
