package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_AddDocument(t *testing.T) {
	p := NewPipeline("test", newTestRewriter(afero.NewMemMapFs()), 0.8, 0)

	require.NoError(t, p.AddDocument("report", "report.docx", "report_compressed.docx"))
	require.NoError(t, p.AddDocument("deck", "Deck.PPTX", "deck_compressed.pptx"))

	err := p.AddDocument("report", "other.docx", "other_compressed.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = p.AddDocument("notes", "notes.txt", "notes_compressed.txt")
	require.ErrorIs(t, err, ErrUnsupportedContainer)

	docs := p.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, WordPackage, docs[0].Kind)
	assert.Equal(t, SlidePackage, docs[1].Kind)
	assert.Equal(t, "test", p.Name())
}

func TestPipeline_Run(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i := range 4 {
		writeZip(t, fs, fmt.Sprintf("doc%d.docx", i), []testEntry{
			{name: "word/document.xml", data: []byte("<w:document>\n  <w:body/>\n</w:document>")},
			{name: "word/media/image1.png", data: pngFixture(t)},
		})
	}

	p := NewPipeline("batch", newTestRewriter(fs), 0.8, 2)
	for i := range 4 {
		require.NoError(t, p.AddDocument(fmt.Sprintf("doc%d", i), fmt.Sprintf("doc%d.docx", i), fmt.Sprintf("doc%d_compressed.docx", i)))
	}

	var mu sync.Mutex
	seen := map[string]int{}
	p.OnProgress(func(id string, processed, total int) {
		mu.Lock()
		defer mu.Unlock()
		seen[id] = processed
		assert.Equal(t, 1, total)
	})

	results, err := p.Run(t.Context())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, result := range results {
		id := fmt.Sprintf("doc%d", i)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, fmt.Sprintf("doc%d_compressed.docx", i), result.Report.Output)
		assert.Equal(t, 1, seen[id])

		exists, err := afero.Exists(fs, result.Report.Output)
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestPipeline_RunFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZip(t, fs, "good.docx", []testEntry{{name: "word/document.xml", data: []byte("<a/>")}})
	require.NoError(t, afero.WriteFile(fs, "broken.docx", []byte("not a zip"), 0644))

	p := NewPipeline("batch", newTestRewriter(fs), 0.8, 1)
	require.NoError(t, p.AddDocument("good", "good.docx", "good_compressed.docx"))
	require.NoError(t, p.AddDocument("broken", "broken.docx", "broken_compressed.docx"))

	results, err := p.Run(t.Context())
	require.ErrorIs(t, err, ErrArchiveFormat)
	assert.Contains(t, err.Error(), "document 'broken'")
	assert.Nil(t, results)
}

func TestPipeline_RunCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZip(t, fs, "a.docx", []testEntry{{name: "word/document.xml", data: []byte("<a/>")}})

	p := NewPipeline("batch", newTestRewriter(fs), 0.8, 1)
	require.NoError(t, p.AddDocument("a", "a.docx", "a_compressed.docx"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Empty(t *testing.T) {
	p := NewPipeline("empty", newTestRewriter(afero.NewMemMapFs()), 0.8, 4)

	results, err := p.Run(t.Context())
	require.NoError(t, err)
	assert.Empty(t, results)
}
