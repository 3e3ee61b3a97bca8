package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docshrink/docshrink/internal/engine/encoders"
	"github.com/docshrink/docshrink/internal/runner"
	"github.com/urfave/cli/v3"
)

const (
	formatText = "text"
	formatJSON = encoders.FormatJSON
	formatYAML = encoders.FormatYAML
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Value:   formatText,
	Usage:   "Report format (text, json, yaml)",
	Action: func(ctx context.Context, command *cli.Command, s string) error {
		switch s {
		case formatText, formatJSON, formatYAML:
			return nil
		default:
			return fmt.Errorf("invalid format %q, expected one of text, json, yaml", s)
		}
	},
}

// writeStructured encodes v as JSON or YAML. It reports false for the text format.
func writeStructured(ctx context.Context, w io.Writer, format string, v any) (bool, error) {
	if format == "" || format == formatText {
		return false, nil
	}

	encoder, err := encoders.New(format)
	if err != nil {
		return false, err
	}
	return true, encoder.Encode(ctx, w, v)
}

func formatSummary(summary runner.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✓ Job '%s' complete (%s)\n", summary.Job, summary.Sink)
	for _, out := range summary.Outputs {
		fmt.Fprintf(&sb, "  • %s → %s: %d%% saved (%d → %d bytes)\n",
			out.ID, out.Path, out.Report.PercentSaved(), out.Report.OriginalSize, out.Report.CompressedSize)
	}
	return sb.String()
}
