package blob

import "errors"

var (
	// ErrEmptyFilename is returned when an upload has no usable name.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrNotFound is returned by Fetch for a missing object.
	ErrNotFound = errors.New("object not found")
)
