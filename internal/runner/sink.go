package runner

import (
	"context"
	"fmt"
	"os"

	v1 "github.com/docshrink/docshrink/apis/v1"
	"github.com/docshrink/docshrink/internal/engine"
	"github.com/docshrink/docshrink/internal/engine/archivers"
	"github.com/docshrink/docshrink/internal/engine/sinks"
)

// SinkFactory builds the sink described by a job.
type SinkFactory func(ctx context.Context, job v1.CompressJob) (engine.Sink, error)

// BuildSink creates a sink from the job spec.
//
//   - No output spec or no sink: stdout sink
//   - Filesystem or S3 sink as configured
//
// If archive is configured, the sink is wrapped with an ArchiveSink.
func BuildSink(ctx context.Context, job v1.CompressJob) (engine.Sink, error) {
	if err := checkSinkCompatibility(job); err != nil {
		return nil, err
	}
	if err := checkArchiveSpec(job); err != nil {
		return nil, err
	}

	resolved, err := ResolveSinkSpec(job.Spec.Output)
	if err != nil {
		return nil, err
	}

	var sink engine.Sink
	switch resolved.Kind {
	case SinkStdout:
		sink = sinks.NewStreamSink(os.Stdout)
	case SinkFilesystem:
		sink, err = buildFilesystemSink(resolved.Spec.(*v1.FilesystemSinkSpec))
	case SinkS3:
		sink, err = buildS3Sink(ctx, resolved.Spec.(*v1.S3SinkSpec))
	}
	if err != nil {
		return nil, err
	}

	if job.Spec.Output != nil && job.Spec.Output.Archive != nil {
		return wrapWithArchiveSink(job, sink)
	}

	return sink, nil
}

// checkSinkCompatibility rejects stdout for anything but a single bare package,
// since packages written back to back cannot be split again.
func checkSinkCompatibility(job v1.CompressJob) error {
	resolved, err := ResolveSinkSpec(job.Spec.Output)
	if err != nil {
		return err
	}
	if resolved.Kind != SinkStdout {
		return nil
	}

	if job.Spec.Output != nil && job.Spec.Output.Archive != nil {
		return fmt.Errorf("stdout sink cannot be used with archive configuration")
	}
	if job.Spec.Output != nil && job.Spec.Output.Manifest != nil {
		return fmt.Errorf("stdout sink cannot be used with a manifest")
	}
	if len(job.Spec.Documents) > 1 {
		return fmt.Errorf("stdout sink accepts a single document, got %d", len(job.Spec.Documents))
	}
	return nil
}

// checkArchiveSpec rejects a compression setting on zip archives, whose entries
// carry their own compression.
func checkArchiveSpec(job v1.CompressJob) error {
	if job.Spec.Output == nil || job.Spec.Output.Archive == nil {
		return nil
	}

	archive := job.Spec.Output.Archive
	if archive.Format == v1.ArchiveFormatZip && archive.Compression != "" {
		return fmt.Errorf("archive compression %s is only supported with the tar format", archive.Compression)
	}
	return nil
}

func newArchiver(archive *v1.ArchiveSpec) (engine.Archiver, error) {
	switch archive.Format {
	case v1.ArchiveFormatZip:
		return archivers.NewZipArchiver(), nil
	case "", v1.ArchiveFormatTar:
		compression := archive.Compression
		if compression == "" {
			compression = string(archivers.CompressionGzip)
		}
		archiver, err := archivers.NewTarArchiver(compression)
		if err != nil {
			return nil, fmt.Errorf("failed to create tar archiver: %w", err)
		}
		return archiver, nil
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", archive.Format)
	}
}

func wrapWithArchiveSink(job v1.CompressJob, inner engine.Sink) (engine.Sink, error) {
	archive := job.Spec.Output.Archive

	archiver, err := newArchiver(archive)
	if err != nil {
		return nil, err
	}

	name := archive.Name
	if name == "" {
		name = job.Metadata.Name
	}

	return sinks.NewArchiveSink(inner, archiver, name), nil
}

func buildFilesystemSink(spec *v1.FilesystemSinkSpec) (engine.Sink, error) {
	var path, prefix string
	if spec.Path != nil {
		path = *spec.Path
	}
	if spec.Prefix != nil {
		prefix = *spec.Prefix
	}

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = wd
	}

	return sinks.NewFilesystemSinkFromPath(path, prefix)
}

func buildS3Sink(ctx context.Context, spec *v1.S3SinkSpec) (engine.Sink, error) {
	cfg := sinks.S3Config{
		Bucket:         spec.Bucket,
		ForcePathStyle: spec.ForcePathStyle,
	}

	if spec.Region != nil {
		cfg.Region = *spec.Region
	}
	if spec.Endpoint != nil {
		cfg.Endpoint = *spec.Endpoint
	}
	if spec.Prefix != nil {
		cfg.Prefix = *spec.Prefix
	}
	if spec.Credentials != nil {
		cfg.AccessKeyID = spec.Credentials.AccessKeyID
		cfg.SecretAccessKey = spec.Credentials.SecretAccessKey
	}

	return sinks.NewS3Sink(ctx, cfg)
}
