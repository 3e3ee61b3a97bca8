package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/docshrink/docshrink/internal/engine"
)

// StreamSink copies every written file to w back to back. It is meant for a
// single document piped to stdout.
type StreamSink struct {
	w       io.Writer
	written int64
}

func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

var _ engine.Sink = (*StreamSink)(nil)

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return "stream"
}

func (s *StreamSink) Write(ctx context.Context, path string, data io.Reader) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before streaming %s: %w", path, err)
	}

	n, err := io.Copy(s.w, data)
	s.written += n
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}
	return nil
}

// Written returns the number of bytes copied so far.
func (s *StreamSink) Written() int64 {
	return s.written
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}
