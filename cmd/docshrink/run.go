package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docshrink/docshrink/internal/runner"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var allowedEnvFlag = &cli.StringSliceFlag{
	Name:  "allowed-env",
	Usage: "Environment variables allowed in job configuration (can be repeated)",
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Compress every package listed in a job file",
	Flags: []cli.Flag{
		allowedEnvFlag,
		formatFlag,
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "job",
			UsageText: "The job file to run",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		jobFilename := command.StringArg("job")
		if jobFilename == "" {
			return fmt.Errorf("no job file provided")
		}

		fs := afero.NewOsFs()
		job, err := runner.ReadCompressJob(fs, jobFilename)
		if err != nil {
			return fmt.Errorf("failed to parse job: %w", err)
		}

		opts := []runner.Option{runner.WithAllowedEnv(command.StringSlice("allowed-env")...)}
		var line *progressLine
		if isInteractive(ctx) {
			line = newProgressLine(os.Stderr)
			opts = append(opts, runner.WithProgress(line.Update))
		}

		injector := runner.BuildContainer(logger.Named("runner"), fs)
		r, err := runner.New(ctx, injector, job, opts...)
		if err != nil {
			return fmt.Errorf("failed to create runner: %w", err)
		}

		summary, err := r.Run(ctx)
		if line != nil {
			line.Clear()
		}
		if err != nil {
			return fmt.Errorf("failed to run job: %w", err)
		}

		out := io.Writer(os.Stdout)
		if r.Sink().Kind() == "stream" {
			out = os.Stderr
		}

		structured, err := writeStructured(ctx, out, command.String("format"), summary)
		if err != nil {
			return err
		}
		if !structured {
			fmt.Fprint(out, formatSummary(summary))
		}

		logger.Debug("job finished", zap.Int("outputs", len(summary.Outputs)))
		return nil
	},
}
