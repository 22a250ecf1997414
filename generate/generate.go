package generate

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/jsphweid/drumbbn/bbn"
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/fitness"
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Request asks for one pattern. Tempo is not evidence for the model; it only
// sets playback speed when the pattern is rendered. Zero means the default.
type Request struct {
	Style string
	Steps int
	Seed  int64
	Tempo float64
}

type Result struct {
	ID       string
	Style    string
	Seed     int64
	Tempo    float64
	Attempts int
	Pattern  model.GeneratedPattern
	Score    model.FitnessScore
}

// Models resolves a style to its trained model. *registry.Registry
// satisfies it.
type Models interface {
	Lookup(style string) (*bbn.Model, error)
}

type Generator struct {
	Models    Models
	Evaluator *fitness.Evaluator

	// Expected builds the expected positions for a pattern length. Nil
	// disables the position score.
	Expected func(steps int) model.ExpectedPositions
}

func New(models Models) *Generator {
	return &Generator{
		Models:    models,
		Evaluator: fitness.NewEvaluator(),
		Expected:  fitness.DefaultExpectedPositions,
	}
}

// Normalize fills defaults and rejects requests no model could serve.
func Normalize(req Request) (Request, error) {
	if req.Steps == 0 {
		req.Steps = constants.DefaultSteps
	}
	if req.Tempo == 0 {
		req.Tempo = constants.DefaultTempo
	}
	if req.Steps < 0 || req.Steps > constants.MaxSteps {
		return req, errors.Wrapf(model.ErrInvalidEvidence, "step count %d outside [1, %d]", req.Steps, constants.MaxSteps)
	}
	if req.Tempo < constants.MinTempo || req.Tempo > constants.MaxTempo {
		return req, errors.Wrapf(model.ErrInvalidEvidence, "tempo %v outside [%v, %v]", req.Tempo, constants.MinTempo, constants.MaxTempo)
	}
	return req, nil
}

// Generate samples and scores exactly one pattern. The same request always
// yields the same pattern.
func (g *Generator) Generate(req Request) (Result, error) {
	req, err := Normalize(req)
	if err != nil {
		return Result{}, err
	}

	m, err := g.Models.Lookup(req.Style)
	if err != nil {
		return Result{}, err
	}

	pattern, err := m.Sample(req.Steps, rand.New(rand.NewSource(req.Seed)))
	if err != nil {
		return Result{}, err
	}

	var expected model.ExpectedPositions
	if g.Expected != nil {
		expected = g.Expected(req.Steps)
	}
	score, err := g.Evaluator.Evaluate(pattern, m.Stats, expected)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ID:       uuid.New().String(),
		Style:    m.Style,
		Seed:     req.Seed,
		Tempo:    req.Tempo,
		Attempts: 1,
		Pattern:  pattern,
		Score:    score,
	}, nil
}

// GenerateUntilAccepted calls Generate at most maxAttempts times, with the
// seed advanced by one per attempt, and stops at the first accepted pattern.
// When none is accepted it returns the best scoring result together with
// ErrNotAccepted. Lookup and validation errors are returned at once.
func (g *Generator) GenerateUntilAccepted(req Request, maxAttempts int) (Result, error) {
	logger := log.WithFields(log.Fields{
		"function": "Generator.GenerateUntilAccepted",
		"style":    req.Style,
	})

	if maxAttempts < 1 {
		return Result{}, errors.Errorf("maxAttempts must be at least 1, got %d", maxAttempts)
	}

	var best Result
	for attempt := 0; attempt < maxAttempts; attempt++ {
		try := req
		try.Seed = req.Seed + int64(attempt)

		res, err := g.Generate(try)
		if err != nil {
			return Result{}, err
		}
		res.Attempts = attempt + 1
		if res.Score.Accepted {
			logger.Infof("Accepted with score %.2f after %d attempts", res.Score.Final, res.Attempts)
			return res, nil
		}
		logger.Debugf("Rejected seed %d with score %.2f", try.Seed, res.Score.Final)
		if attempt == 0 || res.Score.Final > best.Score.Final {
			best = res
		}
	}

	best.Attempts = maxAttempts
	return best, errors.Wrapf(model.ErrNotAccepted, "best score %.2f after %d attempts", best.Score.Final, maxAttempts)
}
