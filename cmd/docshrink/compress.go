package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	v1 "github.com/docshrink/docshrink/apis/v1"
	"github.com/docshrink/docshrink/internal/engine"
	"github.com/docshrink/docshrink/internal/engine/sinks"
	"github.com/docshrink/docshrink/internal/runner"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	stdoutOutput = "-"
	outputMode   = 0o644
)

var compressCommand = &cli.Command{
	Name:  "compress",
	Usage: "Compress a single Word (.docx) or Slide (.pptx) package",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output path, or - for stdout (default: <input>_compressed next to the input)",
		},
		&cli.Float64Flag{
			Name:    "quality",
			Aliases: []string{"q"},
			Value:   v1.DefaultQuality,
			Usage:   "JPEG quality between 0 and 1, values outside the range are clamped",
		},
		formatFlag,
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "input",
			UsageText: "The package to compress",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		input := command.StringArg("input")
		if input == "" {
			return fmt.Errorf("no input package provided")
		}

		output := command.String("output")
		if output == "" {
			output = filepath.Join(filepath.Dir(input), runner.OutputName(input, v1.DefaultSuffix))
		}

		quality := clampQuality(command.Float64("quality"))
		logger = logger.With(zap.String("input", input), zap.String("output", output), zap.Float64("quality", quality))

		injector := runner.BuildContainer(logger, afero.NewOsFs())
		rewriter := do.MustInvoke[*engine.Rewriter](injector)

		report, err := compressToPath(ctx, logger, rewriter, input, output, quality)
		if err != nil {
			return err
		}

		// With the package on stdout the report goes to stderr.
		reportOut := io.Writer(os.Stdout)
		if output == stdoutOutput {
			reportOut = os.Stderr
		}

		structured, err := writeStructured(ctx, reportOut, command.String("format"), report)
		if err != nil {
			return err
		}
		if !structured {
			fmt.Fprintf(reportOut, "%s\n  • Output: %s\n", report.String(), output)
		}

		return nil
	},
}

func clampQuality(q float64) float64 {
	if math.IsNaN(q) {
		return v1.DefaultQuality
	}
	return min(max(q, 0), 1)
}

// compressToPath writes into a temporary file next to the destination and moves
// it into place on success, so a failed run never leaves a partial package.
func compressToPath(ctx context.Context, logger *zap.Logger, rewriter *engine.Rewriter, input, output string, quality float64) (engine.Report, error) {
	if _, err := rewriter.Registry().Resolve(input); err != nil {
		return engine.Report{}, fmt.Errorf("failed to compress %s: %w", input, err)
	}

	dir := filepath.Dir(output)
	if output == stdoutOutput {
		dir = os.TempDir()
	}

	tmp, err := os.CreateTemp(dir, ".docshrink-*.partial")
	if err != nil {
		return engine.Report{}, fmt.Errorf("failed to create temporary output: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return engine.Report{}, fmt.Errorf("failed to create temporary output: %w", err)
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove temporary output", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	progress := progressFunc(ctx, logger, filepath.Base(input))
	report, err := rewriter.CompressPackage(ctx, input, tmpPath, quality, progress.update)
	progress.done()
	if err != nil {
		return engine.Report{}, fmt.Errorf("failed to compress %s: %w", input, err)
	}
	report.Output = output

	if output == stdoutOutput {
		if err := streamFile(ctx, tmpPath, sinks.NewStreamSink(os.Stdout)); err != nil {
			return engine.Report{}, err
		}
		return report, nil
	}

	// CreateTemp makes owner-only files.
	if err := os.Chmod(tmpPath, outputMode); err != nil {
		return engine.Report{}, fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return engine.Report{}, fmt.Errorf("failed to move output into place: %w", err)
	}

	return report, nil
}

func streamFile(ctx context.Context, path string, sink engine.Sink) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open compressed package: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := sink.Write(ctx, filepath.Base(path), f); err != nil {
		return fmt.Errorf("failed to write package to stdout: %w", err)
	}
	return sink.Close(ctx)
}

type progressReporter struct {
	update engine.ProgressFunc
	done   func()
}

// progressFunc draws a progress line on interactive terminals and logs at debug level otherwise.
func progressFunc(ctx context.Context, logger *zap.Logger, label string) progressReporter {
	if isInteractive(ctx) {
		line := newProgressLine(os.Stderr)
		return progressReporter{
			update: func(processed, total int) { line.Update(label, processed, total) },
			done:   line.Clear,
		}
	}

	return progressReporter{
		update: func(processed, total int) {
			logger.Debug("image progress", zap.Int("processed", processed), zap.Int("total", total))
		},
		done: func() {},
	}
}
