package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedContainer is returned when the input extension matches no registered container kind.
	ErrUnsupportedContainer = errors.New("unsupported container")
	// ErrInvalidQuality is returned when quality is outside [0,1].
	ErrInvalidQuality = errors.New("quality must be between 0 and 1")
	ErrOpen           = errors.New("cannot open input file")
	ErrArchiveFormat  = errors.New("input is not a valid zip container")
	// ErrEncoding is returned when an XML or relationship part is not valid UTF-8.
	ErrEncoding = errors.New("text part is not valid UTF-8")
	ErrOutput   = errors.New("cannot write output file")
	ErrFinalize = errors.New("cannot finalize output archive")
)

// UnsupportedContainerError is returned when a path does not resolve to a registered container kind.
type UnsupportedContainerError struct {
	Path      string
	Extension string
	Available []string // registered extensions
}

func (e *UnsupportedContainerError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported container %q for %s: no container kinds registered", e.Extension, e.Path)
	}
	return fmt.Sprintf("unsupported container %q for %s (available: %v)", e.Extension, e.Path, e.Available)
}

func (e *UnsupportedContainerError) Unwrap() error {
	return ErrUnsupportedContainer
}
