// Package fitness scores a generated pattern against the statistics of the
// corpus its model was trained on.
//
// None of the scores are clamped. The density score goes negative once a
// pattern has more than twice the training density, and the distribution
// score goes negative when the frequency gaps add up to more than 1. The
// final weighted score is compared to the threshold as is.
package fitness

import (
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/util"
	"github.com/pkg/errors"
)

type Evaluator struct {
	DensityWeight      float64
	DistributionWeight float64
	PositionWeight     float64
	Threshold          float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		DensityWeight:      constants.DensityWeight,
		DistributionWeight: constants.DistributionWeight,
		PositionWeight:     constants.PositionWeight,
		Threshold:          constants.AcceptThreshold,
	}
}

// DensityScore is 1 - |generated - training| / max(training, 1), where
// generated is the pattern's total hit count.
func DensityScore(p model.GeneratedPattern, stats model.TrainingStats) float64 {
	generated := float64(p.TotalHits())
	return 1 - util.Abs(generated-stats.Density)/util.Max(stats.Density, 1)
}

// DistributionScore is 1 minus the summed frequency gaps over the
// instruments in the training distribution. Instruments the pattern never
// plays count as frequency 0; instruments absent from training are ignored.
func DistributionScore(p model.GeneratedPattern, stats model.TrainingStats) float64 {
	generated := p.Distribution()
	var gap float64
	for _, c := range util.GetKeys(stats.Distribution) {
		gap += util.Abs(generated[c] - stats.Distribution[c])
	}
	return 1 - gap
}

// PositionScore is the share of steps where some hit instrument lands on
// one of its expected positions. An empty pattern scores 0.
func PositionScore(p model.GeneratedPattern, expected model.ExpectedPositions) float64 {
	if len(p.Steps) == 0 {
		return 0
	}

	positions := make([]map[int]bool, len(p.Instruments))
	for i, c := range p.Instruments {
		positions[i] = make(map[int]bool)
		for _, s := range expected[c] {
			positions[i][s] = true
		}
	}

	var matched int
	for s, assignment := range p.Steps {
		for i, hit := range assignment {
			if hit && positions[i][s] {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(p.Steps))
}

// Evaluate scores a pattern. expected may be nil, in which case the position
// score is 0. It never retries; a rejected score is the caller's cue to
// generate again.
func (e *Evaluator) Evaluate(p model.GeneratedPattern, stats model.TrainingStats, expected model.ExpectedPositions) (model.FitnessScore, error) {
	if stats.Instruments != nil && !stats.Instruments.Equal(p.Instruments) {
		return model.FitnessScore{}, errors.Wrapf(model.ErrInstrumentMismatch, "pattern has %v, stats have %v", p.Instruments, stats.Instruments)
	}

	score := model.FitnessScore{
		Density:      DensityScore(p, stats),
		Distribution: DistributionScore(p, stats),
		Position:     PositionScore(p, expected),
	}
	score.Final = e.DensityWeight*score.Density +
		e.DistributionWeight*score.Distribution +
		e.PositionWeight*score.Position
	score.Accepted = e.Accept(score.Final)
	return score, nil
}

func (e *Evaluator) Accept(final float64) bool {
	return final >= e.Threshold
}

// DefaultExpectedPositions puts the kick on the first and third step of every
// four and the snare on the second and fourth.
func DefaultExpectedPositions(steps int) model.ExpectedPositions {
	res := model.ExpectedPositions{}
	for s := 0; s < steps; s++ {
		switch s % 4 {
		case 0, 2:
			res[model.Kick] = append(res[model.Kick], s)
		case 1, 3:
			res[model.Snare] = append(res[model.Snare], s)
		}
	}
	return res
}
