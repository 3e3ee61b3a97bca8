package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	name string
	data []byte
}

var fixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// writeZip stores entries uncompressed so that rewriting always has room to shrink.
func writeZip(t *testing.T, fs afero.Fs, path string, entries []testEntry) {
	t.Helper()

	f, err := fs.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Store, Modified: fixtureTime})
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// readZip returns the entries of the archive at path in archive order.
func readZip(t *testing.T, fs afero.Fs, path string) []testEntry {
	t.Helper()

	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)

	zr, err := zip.NewReader(f, info.Size())
	require.NoError(t, err)

	var entries []testEntry
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries = append(entries, testEntry{name: zf.Name, data: data})
	}
	return entries
}

func entryMap(entries []testEntry) map[string][]byte {
	m := make(map[string][]byte, len(entries))
	for _, e := range entries {
		m[e.name] = e.data
	}
	return m
}

func entryNames(entries []testEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	return names
}

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	return img
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, testImage(48, 48)))
	return buf.Bytes()
}

func jpegFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(64, 64), &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}
