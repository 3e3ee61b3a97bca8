package archivers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/docshrink/docshrink/internal/engine"
	"github.com/klauspost/compress/zip"
)

// ZipArchiver bundles compressed documents into a single zip file with one entry
// per document. Word and Slide packages are zip archives themselves, so they are
// stored as-is and only other files are deflated.
type ZipArchiver struct {
	buf    *bytes.Buffer
	zw     *zip.Writer
	closed bool
}

func NewZipArchiver() engine.Archiver {
	buf := new(bytes.Buffer)
	return &ZipArchiver{
		buf: buf,
		zw:  zip.NewWriter(buf),
	}
}

func (a *ZipArchiver) AddFile(ctx context.Context, filename string, data io.Reader) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	method := zip.Deflate
	switch strings.ToLower(path.Ext(filename)) {
	case ".docx", ".pptx", ".zip":
		method = zip.Store
	}

	entry, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     filename,
		Method:   method,
		Modified: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", filename, err)
	}

	if _, err := io.Copy(entry, data); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", filename, err)
	}

	return nil
}

func (a *ZipArchiver) Close() (io.Reader, error) {
	if a.closed {
		return nil, fmt.Errorf("archiver already closed")
	}
	a.closed = true

	if err := a.zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}

	return bytes.NewReader(a.buf.Bytes()), nil
}

func (a *ZipArchiver) Extension() string {
	return ".zip"
}
