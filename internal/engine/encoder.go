package engine

import (
	"context"
	"io"
)

// Encoder serializes reports and job summaries.
type Encoder interface {
	Encode(ctx context.Context, w io.Writer, v any) error

	// FileExtension returns extension without dot (e.g., "json").
	FileExtension() string
}
