package corpus

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Corpus is every quantized example of one style.
type Corpus struct {
	Style       string
	Instruments model.Instruments
	Examples    []model.PatternMatrix
}

// Styles lists the style directories below parsedDir.
func Styles(parsedDir string) ([]string, error) {
	entries, err := os.ReadDir(parsedDir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", parsedDir)
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() {
			res = append(res, e.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}

// LoadStyle reads every matrix of a style. Unreadable files are logged and
// skipped.
func LoadStyle(parsedDir, style string, instruments model.Instruments) (Corpus, error) {
	logger := log.WithFields(log.Fields{
		"function": "corpus.LoadStyle",
		"style":    style,
	})

	c := Corpus{Style: style, Instruments: instruments}
	dir := filepath.Join(parsedDir, style)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return c, errors.Wrapf(err, "reading %v", dir)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".dat") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		m, err := LoadMatrix(path, instruments)
		if err != nil {
			logger.Warnf("Skipping %v because: %v", path, errors.Wrap(model.ErrFileUnreadable, err.Error()))
			continue
		}
		c.Examples = append(c.Examples, m)
	}
	return c, nil
}

// FilterSilent drops every step where no instrument sounds, and drops
// examples left with no steps at all. The model never sees how often a step
// is silent.
func (c Corpus) FilterSilent() Corpus {
	logger := log.WithFields(log.Fields{
		"function": "Corpus.FilterSilent",
		"style":    c.Style,
	})

	res := Corpus{Style: c.Style, Instruments: c.Instruments}
	var before, after int
	for _, ex := range c.Examples {
		before += ex.Len()
		kept := model.NewPatternMatrix(ex.Instruments)
		for _, step := range ex.Steps {
			if model.IsActive(step) {
				kept.Steps = append(kept.Steps, step)
			}
		}
		if kept.Len() > 0 {
			res.Examples = append(res.Examples, kept)
		}
		after += kept.Len()
	}
	logger.Infof("Filtered: %d -> %d active steps", before, after)
	return res
}

// Rows flattens every step of every example.
func (c Corpus) Rows() [][]bool {
	var rows [][]bool
	for _, ex := range c.Examples {
		rows = append(rows, ex.Steps...)
	}
	return rows
}

// Stats summarizes the corpus as given. Callers pass the filtered corpus so
// the statistics describe exactly what the model was fit on.
func (c Corpus) Stats() model.TrainingStats {
	stats := model.TrainingStats{
		Style:        c.Style,
		Instruments:  c.Instruments,
		Examples:     len(c.Examples),
		Distribution: make(map[model.InstrumentClass]float64),
	}

	counts := make([]int, len(c.Instruments))
	var total int
	for _, ex := range c.Examples {
		for _, step := range ex.Steps {
			if model.IsActive(step) {
				stats.ActiveSteps++
			}
			for i, hit := range step {
				if hit {
					counts[i]++
					total++
				}
			}
		}
	}

	if stats.Examples > 0 {
		stats.Density = float64(total) / float64(stats.Examples)
	}
	if total > 0 {
		for i, cls := range c.Instruments {
			stats.Distribution[cls] = float64(counts[i]) / float64(total)
		}
	}
	return stats
}
