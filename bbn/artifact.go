package bbn

import (
	"fmt"
	"path/filepath"

	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/util"
	"github.com/pkg/errors"
)

// SchemaVersion is bumped whenever Artifact changes shape.
const SchemaVersion = 1

// Artifact is the persisted form of a Model.
type Artifact struct {
	SchemaVersion int
	Style         string
	Instruments   []string
	Structure     Structure
	StepDuration  float64
	CPTs          []CPT
	Stats         model.TrainingStats
}

func ModelFilename(style string) string {
	return fmt.Sprintf("%v_model.dat", style)
}

func (m *Model) Save(path string) error {
	a := Artifact{
		SchemaVersion: SchemaVersion,
		Style:         m.Style,
		Instruments:   m.Instruments.Strings(),
		Structure:     m.Structure,
		StepDuration:  m.StepDuration,
		Stats:         m.Stats,
	}
	for _, cpt := range m.CPTs {
		a.CPTs = append(a.CPTs, *cpt)
	}
	return util.CreateBinary(path, a)
}

// Load reads a model and refuses it unless it was trained with the expected
// schema, instrument set and step duration.
func Load(path string, expected model.Instruments, stepDuration float64) (*Model, error) {
	a, err := util.ReadBinary[Artifact](path)
	if err != nil {
		return nil, err
	}
	if a.SchemaVersion != SchemaVersion {
		return nil, errors.Wrapf(model.ErrSchemaMismatch, "%v has schema %d, want %d", filepath.Base(path), a.SchemaVersion, SchemaVersion)
	}
	instruments := make(model.Instruments, len(a.Instruments))
	for i, name := range a.Instruments {
		instruments[i] = model.InstrumentClass(name)
	}
	if !instruments.Equal(expected) {
		return nil, errors.Wrapf(model.ErrInstrumentMismatch, "%v was trained on %v, want %v", filepath.Base(path), instruments, expected)
	}
	if a.StepDuration != stepDuration {
		return nil, errors.Wrapf(model.ErrSchemaMismatch, "%v uses step duration %v, want %v", filepath.Base(path), a.StepDuration, stepDuration)
	}

	m := &Model{
		Style:        a.Style,
		Instruments:  instruments,
		Structure:    a.Structure,
		StepDuration: a.StepDuration,
		Stats:        a.Stats,
	}
	for i := range a.CPTs {
		m.CPTs = append(m.CPTs, &a.CPTs[i])
	}
	if err := m.prepare(); err != nil {
		return nil, errors.Wrapf(err, "loading %v", filepath.Base(path))
	}
	return m, nil
}
