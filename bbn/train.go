package bbn

import (
	"path/filepath"
	"sync"

	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/corpus"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ManifestEntry records what training did with one style.
type ManifestEntry struct {
	Style   string
	Trained bool
	Reason  string

	// Insufficient is set when the style was skipped for lack of data.
	Insufficient bool

	ModelFile   string
	ActiveSteps int
}

// Manifest lists every style seen at training time, trained or not, so a
// missing model can be told apart from an unknown style.
type Manifest struct {
	SchemaVersion int
	Instruments   []string
	StepDuration  float64
	Styles        map[string]ManifestEntry
}

func SaveManifest(modelDir string, m Manifest) error {
	return util.CreateBinary(filepath.Join(modelDir, constants.ManifestFile), m)
}

func LoadManifest(modelDir string) (Manifest, error) {
	return util.ReadBinary[Manifest](filepath.Join(modelDir, constants.ManifestFile))
}

func (t *Trainer) trainStyle(parsedDir, modelDir, style string) ManifestEntry {
	entry := ManifestEntry{Style: style}

	c, err := corpus.LoadStyle(parsedDir, style, t.Instruments)
	if err != nil {
		entry.Reason = err.Error()
		return entry
	}
	m, err := t.Train(c)
	if err != nil {
		entry.Reason = err.Error()
		entry.Insufficient = errors.Is(err, model.ErrInsufficientTrainingData)
		return entry
	}

	entry.ModelFile = ModelFilename(style)
	if err := m.Save(filepath.Join(modelDir, entry.ModelFile)); err != nil {
		entry.ModelFile = ""
		entry.Reason = err.Error()
		return entry
	}
	entry.Trained = true
	entry.ActiveSteps = m.Stats.ActiveSteps
	return entry
}

// TrainAll fits every style under parsedDir concurrently, writes a model per
// trained style and a manifest covering all of them. A style that fails is
// recorded and skipped; the others are unaffected.
func (t *Trainer) TrainAll(parsedDir, modelDir string) (Manifest, error) {
	logger := log.WithFields(log.Fields{
		"function": "Trainer.TrainAll",
	})

	manifest := Manifest{
		SchemaVersion: SchemaVersion,
		Instruments:   t.Instruments.Strings(),
		StepDuration:  t.StepDuration,
		Styles:        make(map[string]ManifestEntry),
	}
	if err := t.Structure.Validate(t.Instruments); err != nil {
		return manifest, errors.Wrap(err, "invalid structure")
	}

	styles, err := corpus.Styles(parsedDir)
	if err != nil {
		return manifest, err
	}
	if err := util.EnsureDir(modelDir); err != nil {
		return manifest, err
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, style := range styles {
		wg.Add(1)
		go func(style string) {
			defer wg.Done()
			entry := t.trainStyle(parsedDir, modelDir, style)
			if entry.Trained {
				logger.Infof("Model trained and saved for %v", style)
			} else {
				logger.Warnf("Skipping %v because: %v", style, entry.Reason)
			}
			mu.Lock()
			manifest.Styles[style] = entry
			mu.Unlock()
		}(style)
	}
	wg.Wait()

	return manifest, SaveManifest(modelDir, manifest)
}
