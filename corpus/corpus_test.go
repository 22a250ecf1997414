package corpus

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/drumbbn/grid"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/render"
	"github.com/jsphweid/drumbbn/util"
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

func matrix(steps ...model.GridStep) model.PatternMatrix {
	return model.PatternMatrix{Instruments: model.DefaultInstruments, Steps: steps}
}

func TestMatrixFormat(t *testing.T) {
	m := matrix(step(model.Kick), step(), step(model.Snare, model.Crash))

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, m))

	got, err := ReadMatrix(bytes.NewReader(buf.Bytes()), model.DefaultInstruments)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = ReadMatrix(bytes.NewReader(buf.Bytes()), model.Instruments{model.Kick})
	assert.ErrorIs(t, err, model.ErrInstrumentMismatch)

	_, err = ReadMatrix(bytes.NewReader([]byte("NOTAGRID")), nil)
	assert.Error(t, err)

	_, err = ReadMatrix(bytes.NewReader(buf.Bytes()[:buf.Len()-2]), nil)
	assert.Error(t, err)
}

func TestFilterSilent(t *testing.T) {
	c := Corpus{
		Style:       "rock",
		Instruments: model.DefaultInstruments,
		Examples: []model.PatternMatrix{
			matrix(step(model.Kick), step(), step(), step(model.Snare)),
			matrix(step(), step()),
		},
	}
	f := c.FilterSilent()
	require.Len(t, f.Examples, 1)
	assert.Equal(t, 2, f.Examples[0].Len())
	assert.Len(t, f.Rows(), 2)
	// the original is untouched
	assert.Equal(t, 4, c.Examples[0].Len())
}

func TestStats(t *testing.T) {
	c := Corpus{
		Style:       "rock",
		Instruments: model.DefaultInstruments,
		Examples: []model.PatternMatrix{
			matrix(step(model.Kick), step(model.Snare), step(model.Kick), step(model.Snare)),
			matrix(step(model.Kick, model.ClosedHat), step(model.ClosedHat)),
		},
	}
	stats := c.Stats()

	assert := assert.New(t)
	assert.Equal(2, stats.Examples)
	assert.Equal(6, stats.ActiveSteps)
	assert.InDelta(4.0, stats.Density, 1e-9)
	assert.InDelta(3.0/8.0, stats.Distribution[model.Kick], 1e-9)
	assert.InDelta(2.0/8.0, stats.Distribution[model.Snare], 1e-9)
	assert.InDelta(0.0, stats.Distribution[model.Crash], 1e-9)

	var sum float64
	for _, v := range stats.Distribution {
		sum += v
	}
	assert.InDelta(1.0, sum, 1e-9)
}

func TestStatsOfEmptyCorpus(t *testing.T) {
	stats := Corpus{Style: "x", Instruments: model.DefaultInstruments}.Stats()
	assert.Equal(t, 0.0, stats.Density)
	assert.Empty(t, stats.Distribution)
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor("/raw", "/raw/Rock/live/take1.mid")
	require.NoError(t, err)
	assert.Equal(t, "rock", src.Style)
	assert.Equal(t, "live_take1", src.ID)

	_, err = SourceFor("/raw", "/raw/loose.mid")
	assert.Error(t, err)
}

func writeMidi(t *testing.T, path string, steps []model.StepAssignment) {
	p := model.GeneratedPattern{Instruments: model.DefaultInstruments, Steps: steps}
	s, err := render.Render(p, render.DefaultOptions(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NoError(t, util.EnsureDir(filepath.Dir(path)))
	require.NoError(t, render.WriteFile(path, s))
}

func TestQuantizeAllSkipsBadFiles(t *testing.T) {
	raw := t.TempDir()
	parsed := t.TempDir()

	writeMidi(t, filepath.Join(raw, "rock", "a.mid"), []model.StepAssignment{step(model.Kick), step(), step(model.Snare)})
	writeMidi(t, filepath.Join(raw, "jazz", "b.mid"), []model.StepAssignment{step(model.ClosedHat)})
	require.NoError(t, os.WriteFile(filepath.Join(raw, "rock", "broken.mid"), []byte("garbage"), 0666))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "loose.mid"), []byte("garbage"), 0666))

	paths, err := util.GatherAllMidiPaths(raw, 0)
	require.NoError(t, err)

	q := &Quantizer{Mapping: grid.DefaultMapping(), StepDuration: 0.5, Workers: 3}
	report, err := q.QuantizeAll(raw, parsed, paths)
	require.NoError(t, err)
	assert.Len(t, report.Written, 2)
	require.Len(t, report.Skipped, 2)

	styles, err := Styles(parsed)
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz", "rock"}, styles)

	rock, err := LoadStyle(parsed, "rock", model.DefaultInstruments)
	require.NoError(t, err)
	require.Len(t, rock.Examples, 1)
	assert.Equal(t, []model.GridStep{step(model.Kick), step(), step(model.Snare)}, rock.Examples[0].Steps)
}

func TestQuantizeFileReportsUnreadable(t *testing.T) {
	q := &Quantizer{Mapping: grid.DefaultMapping(), StepDuration: 0.5}
	_, err := q.QuantizeFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.ErrorIs(t, err, model.ErrFileUnreadable)
}

func TestLoadStyleSkipsCorruptMatrices(t *testing.T) {
	parsed := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parsed, "latin"), 0777))
	require.NoError(t, SaveMatrix(filepath.Join(parsed, "latin", "good.dat"), matrix(step(model.Kick))))
	require.NoError(t, os.WriteFile(filepath.Join(parsed, "latin", "bad.dat"), []byte("nope"), 0666))

	c, err := LoadStyle(parsed, "latin", model.DefaultInstruments)
	require.NoError(t, err)
	assert.Len(t, c.Examples, 1)
}

func TestQuantizeAllSkipsPathsWritingTheSameMatrix(t *testing.T) {
	raw := t.TempDir()
	parsed := t.TempDir()

	writeMidi(t, filepath.Join(raw, "rock", "a", "b.mid"), []model.StepAssignment{step(model.Kick)})
	writeMidi(t, filepath.Join(raw, "rock", "a_b.mid"), []model.StepAssignment{step(model.Snare)})

	paths, err := util.GatherAllMidiPaths(raw, 0)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	q := &Quantizer{Mapping: grid.DefaultMapping(), StepDuration: 0.5, Workers: 2}
	report, err := q.QuantizeAll(raw, parsed, paths)
	require.NoError(t, err)
	require.Len(t, report.Written, 1)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, paths[0], report.Written[0].Path)
	assert.Equal(t, paths[1], report.Skipped[0].Path)

	rock, err := LoadStyle(parsed, "rock", model.DefaultInstruments)
	require.NoError(t, err)
	require.Len(t, rock.Examples, 1)
	assert.Equal(t, []model.GridStep{step(model.Kick)}, rock.Examples[0].Steps)
}

func TestQuantizeAllRejectsBadStepDuration(t *testing.T) {
	q := &Quantizer{Mapping: grid.DefaultMapping(), StepDuration: 0}
	_, err := q.QuantizeAll(t.TempDir(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestWriteMatrixRejectsRaggedSteps(t *testing.T) {
	for _, bad := range []model.GridStep{{true}, {true, false, false, false, false, true}} {
		m := matrix(step(model.Kick), bad)
		err := WriteMatrix(&bytes.Buffer{}, m)
		assert.ErrorIs(t, err, model.ErrInstrumentMismatch)
	}
}

func TestReadMatrixTrustsNoStepCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, matrix(step(model.Kick))))
	dat := buf.Bytes()

	// the step count sits just before the single five-column row
	countAt := len(dat) - len(model.DefaultInstruments) - 4
	binary.LittleEndian.PutUint32(dat[countAt:], 0xFFFFFFFF)

	_, err := ReadMatrix(bytes.NewReader(dat), model.DefaultInstruments)
	assert.Error(t, err)

	parsed := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parsed, "funk"), 0777))
	require.NoError(t, SaveMatrix(filepath.Join(parsed, "funk", "good.dat"), matrix(step(model.Snare))))
	require.NoError(t, os.WriteFile(filepath.Join(parsed, "funk", "huge.dat"), dat, 0666))

	c, err := LoadStyle(parsed, "funk", model.DefaultInstruments)
	require.NoError(t, err)
	assert.Len(t, c.Examples, 1)
}

func TestReadMatrixRejectsStepsWithoutColumns(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("DRUMGRID")
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFFF))

	_, err := ReadMatrix(bytes.NewReader(buf.Bytes()), nil)
	assert.Error(t, err)
}
