package encoders

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

type YAMLEncoder struct{}

func NewYAML() *YAMLEncoder {
	return &YAMLEncoder{}
}

func (e *YAMLEncoder) Encode(ctx context.Context, w io.Writer, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := yaml.NewEncoder(w, yaml.Indent(2)).Encode(v); err != nil {
		return fmt.Errorf("failed to encode as YAML: %w", err)
	}

	return nil
}

func (e *YAMLEncoder) FileExtension() string {
	return "yaml"
}
