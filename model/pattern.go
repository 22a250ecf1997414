package model

// NoteEvent is a single observed note as read from a recording.
// Start is in seconds from the beginning of the file.
type NoteEvent struct {
	Pitch    uint8
	Start    float64
	Velocity uint8
	IsDrum   bool
}

// GridStep holds one hit flag per instrument, aligned with the matrix's
// instrument set.
type GridStep = []bool

type PatternMatrix struct {
	Instruments Instruments
	Steps       []GridStep
}

func NewPatternMatrix(instruments Instruments) PatternMatrix {
	return PatternMatrix{Instruments: instruments}
}

// Grow zero-fills the matrix until it holds at least n steps.
func (p *PatternMatrix) Grow(n int) {
	for len(p.Steps) < n {
		p.Steps = append(p.Steps, make(GridStep, len(p.Instruments)))
	}
}

func (p PatternMatrix) Len() int {
	return len(p.Steps)
}

// Hits counts every set flag in the matrix.
func (p PatternMatrix) Hits() int {
	var n int
	for _, step := range p.Steps {
		n += CountHits(step)
	}
	return n
}

func CountHits(step []bool) int {
	var n int
	for _, hit := range step {
		if hit {
			n++
		}
	}
	return n
}

// IsActive reports whether at least one instrument sounds in the step.
func IsActive(step []bool) bool {
	for _, hit := range step {
		if hit {
			return true
		}
	}
	return false
}

// StepAssignment is one sampled binary vector, aligned with the pattern's
// instrument set.
type StepAssignment = []bool

type GeneratedPattern struct {
	Style       string
	Instruments Instruments
	Steps       []StepAssignment
}

// Hits counts every hit of the given instrument across the pattern.
func (g GeneratedPattern) Hits(c InstrumentClass) int {
	idx := g.Instruments.Index(c)
	if idx < 0 {
		return 0
	}
	var n int
	for _, step := range g.Steps {
		if step[idx] {
			n++
		}
	}
	return n
}

// TotalHits is the pattern's note density.
func (g GeneratedPattern) TotalHits() int {
	var n int
	for _, step := range g.Steps {
		n += CountHits(step)
	}
	return n
}

// Distribution returns each instrument's share of all hits. It sums to 1 for
// any pattern with at least one hit and is empty otherwise.
func (g GeneratedPattern) Distribution() map[InstrumentClass]float64 {
	res := make(map[InstrumentClass]float64)
	total := g.TotalHits()
	if total == 0 {
		return res
	}
	for _, c := range g.Instruments {
		if hits := g.Hits(c); hits > 0 {
			res[c] = float64(hits) / float64(total)
		}
	}
	return res
}

// PatternFromHits builds a pattern where each step sounds exactly the listed
// instrument. Handy for scoring hand-written sequences.
func PatternFromHits(instruments Instruments, hits []InstrumentClass) GeneratedPattern {
	p := GeneratedPattern{Instruments: instruments}
	for _, c := range hits {
		step := make(StepAssignment, len(instruments))
		if idx := instruments.Index(c); idx >= 0 {
			step[idx] = true
		}
		p.Steps = append(p.Steps, step)
	}
	return p
}
