package runner

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	v1 "github.com/docshrink/docshrink/apis/v1"
	"github.com/docshrink/docshrink/internal/engine"
	"github.com/klauspost/compress/zip"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writePackage stores a minimal package with a couple of indented XML parts.
func writePackage(t *testing.T, fs afero.Fs, path string) {
	t.Helper()

	f, err := fs.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, data := range map[string]string{
		"[Content_Types].xml": "<Types>\n  <Default Extension=\"xml\"/>\n</Types>\n",
		"docProps/app.xml":    "<Properties>\n  <Pages>1</Pages>\n</Properties>\n",
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = io.WriteString(w, data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// recordingSink keeps every write and can fail the first writes on purpose.
type recordingSink struct {
	mu       sync.Mutex
	kind     string
	failures int
	attempts int
	order    []string
	writes   map[string][]byte
	closed   bool
}

func newRecordingSink(kind string) *recordingSink {
	return &recordingSink{kind: kind, writes: make(map[string][]byte)}
}

func (s *recordingSink) Name() string { return "recording" }
func (s *recordingSink) Kind() string { return s.kind }

func (s *recordingSink) Write(_ context.Context, path string, data io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.failures > 0 {
		s.failures--
		return errors.New("temporary failure")
	}
	s.order = append(s.order, path)
	s.writes[path] = content
	return nil
}

func (s *recordingSink) Close(_ context.Context) error {
	s.closed = true
	return nil
}

func newTestInjector(fs afero.Fs, sink engine.Sink) do.Injector {
	injector := do.New()
	do.ProvideValue(injector, zap.NewNop())
	do.ProvideValue(injector, fs)
	do.ProvideValue[SinkFactory](injector, func(context.Context, v1.CompressJob) (engine.Sink, error) {
		return sink, nil
	})
	do.Provide(injector, func(i do.Injector) (*engine.Rewriter, error) {
		return engine.NewRewriter(zap.NewNop(), engine.WithFs(fs)), nil
	})
	return injector
}
