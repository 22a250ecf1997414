package generate

import (
	"testing"

	"github.com/jsphweid/drumbbn/bbn"
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModels struct {
	models  map[string]*bbn.Model
	lookups int
}

func (s *stubModels) Lookup(style string) (*bbn.Model, error) {
	s.lookups++
	if m, ok := s.models[style]; ok {
		return m, nil
	}
	if style == "jazz" {
		return nil, errors.Wrap(model.ErrModelNotFound, "jazz was not trained")
	}
	return nil, errors.Wrapf(model.ErrInvalidEvidence, "unrecognized style %q", style)
}

func kickOrSnare(t *testing.T) *stubModels {
	k := []bool{true, false, false, false, false}
	s := []bool{false, true, false, false, false}
	m, err := bbn.Fit("rock", [][]bool{k, s, k, s, k, s}, model.DefaultInstruments, bbn.DefaultStructure, 0.5)
	require.NoError(t, err)
	m.Stats = model.TrainingStats{
		Style:        "rock",
		Instruments:  model.DefaultInstruments,
		Density:      16,
		Distribution: map[model.InstrumentClass]float64{model.Kick: 0.5, model.Snare: 0.5},
	}
	return &stubModels{models: map[string]*bbn.Model{"rock": m}}
}

func TestSameRequestSamePattern(t *testing.T) {
	g := New(kickOrSnare(t))
	a, err := g.Generate(Request{Style: "rock", Steps: 16, Seed: 3})
	require.NoError(t, err)
	b, err := g.Generate(Request{Style: "rock", Steps: 16, Seed: 3})
	require.NoError(t, err)

	assert.Equal(t, a.Pattern, b.Pattern)
	assert.Equal(t, a.Score, b.Score)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 16, a.Pattern.TotalHits())
	assert.InDelta(t, 1.0, a.Score.Density, 1e-9)
}

func TestDefaults(t *testing.T) {
	res, err := New(kickOrSnare(t)).Generate(Request{Style: "rock"})
	require.NoError(t, err)
	assert.Len(t, res.Pattern.Steps, 16)
	assert.Equal(t, 120.0, res.Tempo)
}

func TestMissingModelIsFatal(t *testing.T) {
	_, err := New(kickOrSnare(t)).Generate(Request{Style: "jazz", Steps: 4})
	assert.ErrorIs(t, err, model.ErrModelNotFound)
}

func TestInvalidEvidence(t *testing.T) {
	g := New(kickOrSnare(t))
	for _, req := range []Request{
		{Style: "polka", Steps: 4},
		{Style: "rock", Steps: -1},
		{Style: "rock", Steps: constants.MaxSteps + 1},
		{Style: "rock", Steps: 1 << 40},
		{Style: "rock", Steps: 4, Tempo: 500},
		{Style: "rock", Steps: 4, Tempo: 10},
	} {
		_, err := g.Generate(req)
		assert.ErrorIs(t, err, model.ErrInvalidEvidence, "%+v", req)
	}
}

func TestUntilAcceptedStopsAtFirstAccept(t *testing.T) {
	models := kickOrSnare(t)
	g := New(models)
	g.Evaluator.Threshold = -100

	res, err := g.GenerateUntilAccepted(Request{Style: "rock", Steps: 8, Seed: 10}, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, int64(10), res.Seed)
	assert.Equal(t, 1, models.lookups)
}

func TestUntilAcceptedHonorsCap(t *testing.T) {
	models := kickOrSnare(t)
	g := New(models)
	g.Evaluator.Threshold = 100

	res, err := g.GenerateUntilAccepted(Request{Style: "rock", Steps: 8, Seed: 10}, 4)
	assert.ErrorIs(t, err, model.ErrNotAccepted)
	assert.Equal(t, 4, models.lookups)
	assert.Equal(t, 4, res.Attempts)
	assert.Len(t, res.Pattern.Steps, 8)
	assert.GreaterOrEqual(t, res.Seed, int64(10))
	assert.Less(t, res.Seed, int64(14))
}

func TestUntilAcceptedDoesNotRetryErrors(t *testing.T) {
	models := kickOrSnare(t)
	_, err := New(models).GenerateUntilAccepted(Request{Style: "jazz", Steps: 8}, 5)
	assert.ErrorIs(t, err, model.ErrModelNotFound)
	assert.Equal(t, 1, models.lookups)
}

func TestUntilAcceptedNeedsAPositiveCap(t *testing.T) {
	_, err := New(kickOrSnare(t)).GenerateUntilAccepted(Request{Style: "rock"}, 0)
	assert.Error(t, err)
}

func TestMaxStepsAllowed(t *testing.T) {
	res, err := New(kickOrSnare(t)).Generate(Request{Style: "rock", Steps: constants.MaxSteps, Seed: 1})
	require.NoError(t, err)
	assert.Len(t, res.Pattern.Steps, constants.MaxSteps)
}
