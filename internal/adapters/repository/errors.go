package repository

import (
	"errors"

	allocation "github.com/okian/skillnav/internal/domain/allocation"
)

// Sentinel kinds for registry errors.
var (
	ErrNotFound           = errors.New("candidate not found")
	ErrDuplicateCandidate = errors.New("candidate already registered")
	ErrUnknownBatch       = errors.New("unknown batch")

	// ErrBatchFull is the allocation kind so callers can match either name.
	ErrBatchFull = allocation.ErrBatchFull
)
