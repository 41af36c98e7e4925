package allocation

import (
	"errors"
	"fmt"

	model "github.com/okian/skillnav/internal/domain/model"
)

// Sentinel kinds for allocation failures.
var (
	ErrNoMatch   = errors.New("no matching batch")
	ErrBatchFull = errors.New("batch is full")
)

// Error is an allocation failure. Batch is empty for ErrNoMatch.
type Error struct {
	Batch model.Batch
	Err   error
}

// NoMatch reports that no rule matched the certifications.
func NoMatch() *Error { return &Error{Err: ErrNoMatch} }

// Full reports that batch has no free seat.
func Full(batch model.Batch) *Error { return &Error{Batch: batch, Err: ErrBatchFull} }

// Error returns the client-facing message.
func (e *Error) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoMatch):
		return "No matching batch found for the given certifications."
	case errors.Is(e.Err, ErrBatchFull):
		return fmt.Sprintf("%s batch is full. Cannot allocate at this time", e.Batch)
	}
	return fmt.Sprintf("allocation to %q failed: %v", e.Batch, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
