package entity

import "errors"

// Domain errors for the scheduling core. A record that exists but is
// owned by another learner yields ErrProgressNotFound, identical to the
// absent case, so callers cannot probe for existence.
var (
	ErrInvalidLearner    = errors.New("invalid learner id")
	ErrInvalidProgressID = errors.New("invalid progress id")
	ErrInvalidSignal     = errors.New("invalid performance signal")
	ErrInvalidFilter     = errors.New("invalid list filter")
	ErrProgressNotFound  = errors.New("progress record not found")
	ErrDuplicateProgress = errors.New("progress record already exists")
	ErrUnitNotFound      = errors.New("knowledge unit not found")
)
