package bbn

import (
	"github.com/jsphweid/drumbbn/model"
)

// NoParent keys the single row of a root variable.
const NoParent = -1

// Cardinality of every variable: silent or hit.
const Cardinality = 2

// CPT holds P(variable | parent). Rows is keyed by the parent's value and
// each row lists the probability of every value of the variable.
type CPT struct {
	Variable model.InstrumentClass
	Parent   model.InstrumentClass

	Rows   map[int][]float64
	Counts map[int][]int

	// Fallback is the variable's marginal, used for parent values never
	// seen in training.
	Fallback []float64
}

func (c *CPT) IsRoot() bool {
	return c.Parent == ""
}

// Row never fails: an unseen parent value gets the fallback distribution.
func (c *CPT) Row(parentValue int) []float64 {
	if row, ok := c.Rows[parentValue]; ok {
		return row
	}
	return c.Fallback
}

func normalize(counts []int) []float64 {
	var total int
	for _, n := range counts {
		total += n
	}
	row := make([]float64, len(counts))
	if total == 0 {
		for i := range row {
			row[i] = 1 / float64(len(row))
		}
		return row
	}
	for i, n := range counts {
		row[i] = float64(n) / float64(total)
	}
	return row
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

// draw picks a value from row by inverting its cumulative distribution at u.
func draw(row []float64, u float64) int {
	var cum float64
	for v, p := range row {
		cum += p
		if u < cum {
			return v
		}
	}
	return len(row) - 1
}
