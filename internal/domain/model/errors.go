package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks values rejected at the boundary.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
