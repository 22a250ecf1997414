package corpus

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jsphweid/drumbbn/grid"
	"github.com/jsphweid/drumbbn/midi"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Source is one recording found under the raw directory.
type Source struct {
	Style string
	ID    string
	Path  string
}

type Skipped struct {
	Path   string
	Reason error
}

type QuantizeReport struct {
	Written []Source
	Skipped []Skipped
}

type Quantizer struct {
	Mapping      *grid.Mapping
	StepDuration float64
	Workers      int
}

// SourceFor derives style and source id from a path below rawDir. The style
// is the first directory; the id is the rest of the path without extension.
func SourceFor(rawDir, path string) (Source, error) {
	rel, err := filepath.Rel(rawDir, path)
	if err != nil {
		return Source{}, err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return Source{}, errors.Errorf("%v is not inside a style directory", rel)
	}
	rest := strings.Join(parts[1:], "_")
	return Source{
		Style: strings.ToLower(parts[0]),
		ID:    strings.TrimSuffix(rest, filepath.Ext(rest)),
		Path:  path,
	}, nil
}

func MatrixPath(parsedDir string, src Source) string {
	return filepath.Join(parsedDir, src.Style, src.ID+".dat")
}

// QuantizeFile reads one recording. Any read or parse failure is reported as
// ErrFileUnreadable.
func (q *Quantizer) QuantizeFile(path string) (model.PatternMatrix, error) {
	events, err := midi.ReadNoteEvents(path)
	if err != nil {
		return model.PatternMatrix{}, errors.Wrapf(model.ErrFileUnreadable, "%v: %v", path, err)
	}
	return grid.Quantize(events, q.Mapping, q.StepDuration)
}

func (q *Quantizer) process(parsedDir string, src Source) error {
	matrix, err := q.QuantizeFile(src.Path)
	if err != nil {
		return err
	}
	out := MatrixPath(parsedDir, src)
	if err := util.EnsureDir(filepath.Dir(out)); err != nil {
		return err
	}
	return SaveMatrix(out, matrix)
}

// QuantizeAll quantizes every given midi path below rawDir into parsedDir.
// Files are independent; a failure on one is logged and skipped. Of several
// paths that map to the same matrix, the first in paths wins and the rest
// are skipped.
func (q *Quantizer) QuantizeAll(rawDir, parsedDir string, paths []string) (QuantizeReport, error) {
	logger := log.WithFields(log.Fields{
		"function": "Quantizer.QuantizeAll",
	})

	var report QuantizeReport
	if q.Mapping == nil {
		return report, errors.New("quantizer has no mapping")
	}
	if err := grid.ValidateStepDuration(q.StepDuration); err != nil {
		return report, err
	}

	var mu sync.Mutex
	skip := func(path string, err error) {
		logger.Warnf("Skipping %v because: %v", path, err)
		mu.Lock()
		report.Skipped = append(report.Skipped, Skipped{Path: path, Reason: err})
		mu.Unlock()
	}

	jobs := make(chan Source)
	var wg sync.WaitGroup
	workers := q.Workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				if err := q.process(parsedDir, src); err != nil {
					skip(src.Path, err)
					continue
				}
				mu.Lock()
				report.Written = append(report.Written, src)
				n := len(report.Written)
				mu.Unlock()
				logger.Debugf("Saved %v/%v (%d written)", src.Style, src.ID, n)
			}
		}()
	}

	claimed := make(map[string]string)
	for _, path := range paths {
		src, err := SourceFor(rawDir, path)
		if err != nil {
			skip(path, err)
			continue
		}
		out := MatrixPath(parsedDir, src)
		if first, ok := claimed[out]; ok {
			skip(path, errors.Errorf("writes the same matrix as %v", first))
			continue
		}
		claimed[out] = path
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	sort.Slice(report.Written, func(i, j int) bool {
		return report.Written[i].Path < report.Written[j].Path
	})
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Path < report.Skipped[j].Path
	})
	logger.Infof("Quantized %d files, skipped %d", len(report.Written), len(report.Skipped))
	return report, nil
}

// ClearParsed removes previously written matrices.
func ClearParsed(parsedDir string) error {
	if err := os.RemoveAll(parsedDir); err != nil {
		return err
	}
	return util.EnsureDir(parsedDir)
}
