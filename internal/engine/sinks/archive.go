package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docshrink/docshrink/internal/engine"
)

// ArchiveSink bundles every compressed package into one archive and hands the
// archive to the inner sink on Close.
type ArchiveSink struct {
	inner       engine.Sink
	archiver    engine.Archiver
	archiveName string
	files       int
}

// NewArchiveSink wraps inner. The archiver extension is appended to archiveName
// unless it already ends with it.
func NewArchiveSink(inner engine.Sink, archiver engine.Archiver, archiveName string) *ArchiveSink {
	if ext := archiver.Extension(); !strings.HasSuffix(archiveName, ext) {
		archiveName += ext
	}

	return &ArchiveSink{
		inner:       inner,
		archiver:    archiver,
		archiveName: archiveName,
	}
}

func (s *ArchiveSink) Name() string {
	return fmt.Sprintf("archive(%s)->%s", s.archiveName, s.inner.Name())
}

func (s *ArchiveSink) Kind() string {
	return "archive"
}

func (s *ArchiveSink) ArchiveName() string {
	return s.archiveName
}

func (s *ArchiveSink) Write(ctx context.Context, path string, data io.Reader) error {
	if err := s.archiver.AddFile(ctx, path, data); err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", path, err)
	}
	s.files++
	return nil
}

// Close finalizes the archive, writes it to the inner sink and closes the inner sink.
// The inner sink is closed even when the archive could not be written.
func (s *ArchiveSink) Close(ctx context.Context) (err error) {
	defer func() {
		if closeErr := s.inner.Close(ctx); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close inner sink: %w", closeErr))
		}
	}()

	reader, err := s.archiver.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if s.files == 0 {
		return nil
	}

	if err := s.inner.Write(ctx, s.archiveName, reader); err != nil {
		return fmt.Errorf("failed to write archive to sink: %w", err)
	}

	return nil
}
