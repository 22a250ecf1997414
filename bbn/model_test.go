package bbn

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/jsphweid/drumbbn/corpus"
	"github.com/jsphweid/drumbbn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(hits ...model.InstrumentClass) model.GridStep {
	s := make(model.GridStep, len(model.DefaultInstruments))
	for _, h := range hits {
		s[model.DefaultInstruments.Index(h)] = true
	}
	return s
}

func rockCorpus() corpus.Corpus {
	return corpus.Corpus{
		Style:       "rock",
		Instruments: model.DefaultInstruments,
		Examples: []model.PatternMatrix{
			{
				Instruments: model.DefaultInstruments,
				Steps: []model.GridStep{
					step(model.Kick, model.ClosedHat),
					step(),
					step(model.Snare, model.ClosedHat),
					step(model.Kick, model.ClosedHat),
					step(model.Snare, model.ClosedHat, model.Crash),
				},
			},
			{
				Instruments: model.DefaultInstruments,
				Steps: []model.GridStep{
					step(model.Kick, model.Crash),
					step(model.ClosedHat),
					step(model.Snare, model.LowTom),
					step(),
				},
			},
		},
	}
}

func TestCPTRowsSumToOne(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)

	for _, cpt := range m.CPTs {
		require.NotEmpty(t, cpt.Rows, "%v", cpt.Variable)
		for pv, row := range cpt.Rows {
			assert.InDelta(t, 1.0, row[0]+row[1], 1e-9, "%v | %v=%d", cpt.Variable, cpt.Parent, pv)
		}
		assert.InDelta(t, 1.0, cpt.Fallback[0]+cpt.Fallback[1], 1e-9)
	}
}

func TestCountsComeFromActiveStepsOnly(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)

	kick := m.CPT(model.Kick)
	require.True(t, kick.IsRoot())
	// 7 active steps, 3 with a kick
	assert.Equal(t, []int{4, 3}, kick.Counts[NoParent])
	assert.InDelta(t, 3.0/7.0, kick.Rows[NoParent][1], 1e-9)

	snare := m.CPT(model.Snare)
	assert.Equal(t, model.Kick, snare.Parent)
	// kick hit: never a snare; kick silent: 3 of 4 steps have a snare
	assert.Equal(t, []int{3, 0}, snare.Counts[1])
	assert.Equal(t, []int{1, 3}, snare.Counts[0])

	assert.Equal(t, 7, m.Stats.ActiveSteps)
	assert.Equal(t, 2, m.Stats.Examples)
}

func TestUnseenParentValueFallsBackToMarginal(t *testing.T) {
	// the kick always sounds, so the snare never sees kick=0
	rows := [][]bool{
		step(model.Kick, model.Snare),
		step(model.Kick),
		step(model.Kick),
		step(model.Kick, model.Snare),
		step(model.Kick),
	}
	m, err := Fit("test", rows, model.DefaultInstruments, DefaultStructure, 0.5)
	require.NoError(t, err)

	snare := m.CPT(model.Snare)
	_, seen := snare.Rows[0]
	require.False(t, seen)
	assert.Equal(t, snare.Fallback, snare.Row(0))
	assert.InDelta(t, 0.4, snare.Row(0)[1], 1e-9)
}

func TestInsufficientTrainingData(t *testing.T) {
	c := corpus.Corpus{
		Style:       "jazz",
		Instruments: model.DefaultInstruments,
		Examples: []model.PatternMatrix{{
			Instruments: model.DefaultInstruments,
			Steps: []model.GridStep{
				step(model.Kick), step(), step(), step(model.Snare),
				step(), step(model.ClosedHat), step(), step(model.Kick),
			},
		}},
	}
	_, err := NewTrainer().Train(c)
	assert.ErrorIs(t, err, model.ErrInsufficientTrainingData)
}

func TestTrainRejectsOtherInstrumentSet(t *testing.T) {
	c := rockCorpus()
	c.Instruments = model.Instruments{model.Kick, model.Snare}
	_, err := NewTrainer().Train(c)
	assert.ErrorIs(t, err, model.ErrInstrumentMismatch)
}

func TestSameSeedSamePattern(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)

	a, err := m.Sample(32, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := m.Sample(32, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	c, err := m.Sample(32, rand.New(rand.NewSource(43)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Steps, c.Steps)
	assert.Equal(t, "rock", a.Style)
	assert.Len(t, a.Steps, 32)
}

func TestStepsCarryNoMemory(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)

	long, err := m.Sample(16, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	src := rand.New(rand.NewSource(9))
	for i := 0; i < 16; i++ {
		one, err := m.Sample(1, src)
		require.NoError(t, err)
		assert.Equal(t, long.Steps[i], one.Steps[0], "step %d", i)
	}
}

func TestSamplingFollowsParentWithinStep(t *testing.T) {
	// snare sounds exactly when the kick does not
	rows := [][]bool{
		step(model.Kick), step(model.Snare), step(model.Kick),
		step(model.Snare), step(model.Kick), step(model.Snare),
	}
	m, err := Fit("test", rows, model.DefaultInstruments, DefaultStructure, 0.5)
	require.NoError(t, err)

	p, err := m.Sample(200, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	kick := model.DefaultInstruments.Index(model.Kick)
	snare := model.DefaultInstruments.Index(model.Snare)
	for i, s := range p.Steps {
		assert.NotEqual(t, s[kick], s[snare], "step %d", i)
	}
}

func TestSampleRejectsZeroSteps(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)
	_, err = m.Sample(0, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, model.ErrInvalidEvidence)
}

func TestSampleForChecksInstruments(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)
	_, err = m.SampleFor(model.Instruments{model.Kick}, 4, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, model.ErrInstrumentMismatch)
}

func TestSaveLoad(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), ModelFilename("rock"))
	require.NoError(t, m.Save(path))

	loaded, err := Load(path, model.DefaultInstruments, 0.5)
	require.NoError(t, err)

	a, err := m.Sample(16, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := loaded.Sample(16, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, m.Stats, loaded.Stats)
}

func TestLoadRejectsMismatches(t *testing.T) {
	m, err := NewTrainer().Train(rockCorpus())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), ModelFilename("rock"))
	require.NoError(t, m.Save(path))

	_, err = Load(path, model.Instruments{model.Kick, model.Snare}, 0.5)
	assert.ErrorIs(t, err, model.ErrInstrumentMismatch)

	_, err = Load(path, model.DefaultInstruments, 0.25)
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)
}
