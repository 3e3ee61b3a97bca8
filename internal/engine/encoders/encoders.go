package encoders

import (
	"fmt"

	"github.com/docshrink/docshrink/internal/engine"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// New returns the encoder for format. An empty format selects JSON.
func New(format string) (engine.Encoder, error) {
	switch format {
	case "", FormatJSON:
		return NewJSON(JSONConfig{Indent: "  "}), nil
	case FormatYAML:
		return NewYAML(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding format: %s", format)
	}
}
