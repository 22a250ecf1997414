package model

// TrainingStats summarizes a style's filtered (active steps only) corpus.
type TrainingStats struct {
	Style       string
	Instruments Instruments
	Examples    int
	ActiveSteps int

	// Density is the average number of hits per example.
	Density float64

	// Distribution is each instrument's share of all hits in the corpus.
	Distribution map[InstrumentClass]float64
}

// FitnessScore is not clamped; Density and Distribution can go negative.
type FitnessScore struct {
	Density      float64 `json:"density"`
	Distribution float64 `json:"distribution"`
	Position     float64 `json:"position"`
	Final        float64 `json:"final"`
	Accepted     bool    `json:"accepted"`
}

// ExpectedPositions maps an instrument to the step indices it should hit.
type ExpectedPositions = map[InstrumentClass][]int
