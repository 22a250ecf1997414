package model

import "github.com/pkg/errors"

var (
	ErrFileUnreadable               = errors.New("file unreadable")
	ErrUnsupportedInstrumentMapping = errors.New("pitch matches no instrument class")
	ErrInsufficientTrainingData     = errors.New("insufficient training data")
	ErrModelNotFound                = errors.New("model not found")
	ErrInvalidEvidence              = errors.New("invalid evidence")
	ErrInstrumentMismatch           = errors.New("instrument set mismatch")
	ErrSchemaMismatch               = errors.New("model schema mismatch")
	ErrNotAccepted                  = errors.New("no pattern accepted")
)
