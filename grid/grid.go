package grid

import (
	"math"

	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ValidateStepDuration rejects durations that cannot divide time into steps.
func ValidateStepDuration(stepDuration float64) error {
	if stepDuration <= 0 || math.IsNaN(stepDuration) || math.IsInf(stepDuration, 0) {
		return errors.Errorf("step duration must be a positive number of seconds, got %v", stepDuration)
	}
	return nil
}

// StepIndex is floor(start / stepDuration). Negative starts land on step 0.
// stepDuration must pass ValidateStepDuration.
func StepIndex(start, stepDuration float64) int {
	if start <= 0 {
		return 0
	}
	return int(math.Floor(start / stepDuration))
}

// Quantize turns one drum track into a hit matrix. The matrix is exactly as
// long as the last step that received any event, mapped or not. Repeated hits
// of a class within a step collapse to one flag.
func Quantize(events []model.NoteEvent, m *Mapping, stepDuration float64) (model.PatternMatrix, error) {
	logger := log.WithFields(log.Fields{
		"function": "grid.Quantize",
	})

	if err := ValidateStepDuration(stepDuration); err != nil {
		return model.PatternMatrix{}, err
	}

	pattern := model.NewPatternMatrix(m.Instruments())
	var dropped int
	for _, evt := range events {
		if !evt.IsDrum {
			continue
		}
		step := StepIndex(evt.Start, stepDuration)
		pattern.Grow(step + 1)

		col, err := m.Column(evt.Pitch)
		if err != nil {
			dropped++
			continue
		}
		pattern.Steps[step][col] = true
	}

	if dropped > 0 {
		logger.Debugf("dropped %d notes with unmapped pitches", dropped)
	}
	return pattern, nil
}
