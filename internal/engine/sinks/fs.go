package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/docshrink/docshrink/internal/engine"
	"github.com/spf13/afero"
)

// FilesystemSink writes compressed packages below an optional prefix of its filesystem.
type FilesystemSink struct {
	fs     afero.Fs
	prefix string
}

func NewFilesystemSink(fs afero.Fs, prefix string) engine.Sink {
	return &FilesystemSink{fs: fs, prefix: filepath.Clean(prefix)}
}

// NewFilesystemSinkFromPath roots a sink at path on the OS filesystem, creating it if needed.
func NewFilesystemSinkFromPath(path, prefix string) (engine.Sink, error) {
	cleanPath := filepath.Clean(path)

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(cleanPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cleanPath, err)
	}

	return NewFilesystemSink(afero.NewBasePathFs(osFs, cleanPath), prefix), nil
}

func (s *FilesystemSink) Name() string {
	if s.prefix != "." {
		return fmt.Sprintf("filesystem(%s:%s)", s.fs.Name(), s.prefix)
	}
	return fmt.Sprintf("filesystem(%s)", s.fs.Name())
}

func (s *FilesystemSink) Kind() string {
	return "filesystem"
}

func (s *FilesystemSink) Write(ctx context.Context, path string, data io.Reader) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before writing %s: %w", path, err)
	}

	target := filepath.Join(s.prefix, path)

	dir := filepath.Dir(target)
	if dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := s.fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err = io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", target, err)
	}

	return nil
}

func (s *FilesystemSink) Close(ctx context.Context) error {
	return nil
}
