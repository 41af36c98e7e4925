package sentiment

import "errors"

// Sentinel kinds for classifier errors.
var (
	ErrModelNotLoaded = errors.New("sentiment model not loaded")
	ErrInvalidModel   = errors.New("invalid sentiment model")
	ErrEmptyText      = errors.New("text must not be empty")
	ErrNoExamples     = errors.New("no training examples")
	ErrBadDataset     = errors.New("bad dataset")
)
