package registry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jsphweid/drumbbn/bbn"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Registry resolves style names to trained models using the manifest written
// at training time. Safe for concurrent use.
type Registry struct {
	dir          string
	instruments  model.Instruments
	stepDuration float64

	mu       sync.RWMutex
	manifest bbn.Manifest
	cache    map[string]*bbn.Model
}

func New(dir string, instruments model.Instruments, stepDuration float64) (*Registry, error) {
	r := &Registry{
		dir:          dir,
		instruments:  instruments,
		stepDuration: stepDuration,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func NormalizeStyle(style string) string {
	return strings.ToLower(strings.TrimSpace(style))
}

// Reload re-reads the manifest and drops every cached model. A missing
// manifest leaves the registry empty.
func (r *Registry) Reload() error {
	logger := log.WithFields(log.Fields{
		"function": "Registry.Reload",
	})

	manifest, err := bbn.LoadManifest(r.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		logger.Warnf("No manifest in %v, nothing has been trained yet", r.dir)
		manifest = bbn.Manifest{Styles: map[string]bbn.ManifestEntry{}}
	} else {
		if manifest.SchemaVersion != bbn.SchemaVersion {
			return errors.Wrapf(model.ErrSchemaMismatch, "manifest schema %d, want %d", manifest.SchemaVersion, bbn.SchemaVersion)
		}
		if manifest.StepDuration != r.stepDuration {
			return errors.Wrapf(model.ErrSchemaMismatch, "manifest step duration %v, want %v", manifest.StepDuration, r.stepDuration)
		}
		if strings.Join(manifest.Instruments, ",") != strings.Join(r.instruments.Strings(), ",") {
			return errors.Wrapf(model.ErrInstrumentMismatch, "manifest has %v, want %v", manifest.Instruments, r.instruments)
		}
	}

	r.mu.Lock()
	r.manifest = manifest
	r.cache = make(map[string]*bbn.Model)
	r.mu.Unlock()
	logger.Infof("Loaded manifest with %d styles", len(manifest.Styles))
	return nil
}

// Lookup returns the model for a style. An unknown style is
// ErrInvalidEvidence; a known style without a model is ErrModelNotFound.
// Neither falls back to another style.
func (r *Registry) Lookup(style string) (*bbn.Model, error) {
	style = NormalizeStyle(style)
	if style == "" {
		return nil, errors.Wrap(model.ErrInvalidEvidence, "no style given")
	}

	r.mu.RLock()
	entry, known := r.manifest.Styles[style]
	cached := r.cache[style]
	r.mu.RUnlock()

	if !known {
		return nil, errors.Wrapf(model.ErrInvalidEvidence, "unrecognized style %q", style)
	}
	if !entry.Trained {
		return nil, errors.Wrapf(model.ErrModelNotFound, "%v was not trained: %v", style, entry.Reason)
	}
	if cached != nil {
		return cached, nil
	}

	m, err := bbn.Load(filepath.Join(r.dir, entry.ModelFile), r.instruments, r.stepDuration)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(model.ErrModelNotFound, "%v: %v", style, err)
		}
		return nil, err
	}

	r.mu.Lock()
	r.cache[style] = m
	r.mu.Unlock()
	return m, nil
}

// Styles splits the known styles into trained ones and skipped ones with the
// reason they were skipped.
func (r *Registry) Styles() ([]string, map[string]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trained []string
	skipped := make(map[string]string)
	for _, style := range util.GetKeys(r.manifest.Styles) {
		entry := r.manifest.Styles[style]
		if entry.Trained {
			trained = append(trained, style)
		} else {
			skipped[style] = entry.Reason
		}
	}
	return trained, skipped
}
