// Package encoders provides the formats reports and job manifests are written in.
package encoders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONConfig holds configuration options for the JSON encoder.
type JSONConfig struct {
	// Indent specifies the indentation string. Empty = compact, "  " = 2 spaces, "\t" = tabs.
	Indent string
}

type JSONEncoder struct {
	indent string
}

func NewJSON(cfg JSONConfig) *JSONEncoder {
	return &JSONEncoder{indent: cfg.Indent}
}

func (e *JSONEncoder) Encode(ctx context.Context, w io.Writer, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	if e.indent != "" {
		encoder.SetIndent("", e.indent)
	}

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode as JSON: %w", err)
	}

	return nil
}

func (e *JSONEncoder) FileExtension() string {
	return "json"
}
