package sinks

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemSink_Write(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		path     string
		wantPath string
	}{
		{
			name:     "no prefix",
			path:     "report_compressed.docx",
			wantPath: "report_compressed.docx",
		},
		{
			name:     "with prefix",
			prefix:   "batch-1",
			path:     "deck_compressed.pptx",
			wantPath: filepath.Join("batch-1", "deck_compressed.pptx"),
		},
		{
			name:     "nested path",
			prefix:   "out",
			path:     "q3/summary_compressed.docx",
			wantPath: filepath.Join("out", "q3", "summary_compressed.docx"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			sink := NewFilesystemSink(fs, tt.prefix)

			require.NoError(t, sink.Write(t.Context(), tt.path, bytes.NewBufferString("PK data")))

			got, err := afero.ReadFile(fs, tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, "PK data", string(got))
			require.NoError(t, sink.Close(t.Context()))
		})
	}
}

func TestFilesystemSink_NameAndKind(t *testing.T) {
	fs := afero.NewMemMapFs()

	assert.Equal(t, "filesystem(MemMapFS)", NewFilesystemSink(fs, "").Name())
	assert.Equal(t, "filesystem(MemMapFS:out)", NewFilesystemSink(fs, "out").Name())
	assert.Equal(t, "filesystem", NewFilesystemSink(fs, "").Kind())
}

func TestFilesystemSink_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs, "")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := sink.Write(ctx, "report_compressed.docx", bytes.NewBufferString("PK"))
	require.ErrorIs(t, err, context.Canceled)

	exists, err := afero.Exists(fs, "report_compressed.docx")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFilesystemSinkFromPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	sink, err := NewFilesystemSinkFromPath(dir, "")
	require.NoError(t, err)

	require.NoError(t, sink.Write(t.Context(), "report_compressed.docx", bytes.NewBufferString("PK")))

	got, err := afero.ReadFile(afero.NewOsFs(), filepath.Join(dir, "report_compressed.docx"))
	require.NoError(t, err)
	assert.Equal(t, "PK", string(got))
}
