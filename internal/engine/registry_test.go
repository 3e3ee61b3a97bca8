package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		name    string
		path    string
		want    ContainerKind
		wantErr bool
	}{
		{name: "docx", path: "report.docx", want: WordPackage},
		{name: "pptx", path: "/tmp/deck.pptx", want: SlidePackage},
		{name: "uppercase extension", path: "LEGACY.DOCX", want: WordPackage},
		{name: "text file", path: "notes.txt", wantErr: true},
		{name: "no extension", path: "README", wantErr: true},
		{name: "spreadsheet is not registered", path: "book.xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := registry.Resolve(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedContainer)
				var unsupported *UnsupportedContainerError
				require.ErrorAs(t, err, &unsupported)
				assert.Equal(t, []string{".docx", ".pptx"}, unsupported.Available)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.Available())

	_, err := registry.Resolve("a.docx")
	require.ErrorIs(t, err, ErrUnsupportedContainer)
	assert.ErrorContains(t, err, "no container kinds registered")

	workbook := ContainerKind{Name: "workbook", Extension: ".XLSX", Label: "Workbook package"}
	registry.Register(workbook)

	kind, err := registry.Resolve("sheet.xlsx")
	require.NoError(t, err)
	assert.Equal(t, workbook, kind)
	assert.True(t, registry.Supports(workbook))
	assert.False(t, registry.Supports(WordPackage))
	assert.Equal(t, []string{".xlsx"}, registry.Available())
}

func TestUnsupportedContainerError(t *testing.T) {
	err := &UnsupportedContainerError{Path: "a.txt", Extension: ".txt", Available: []string{".docx", ".pptx"}}
	assert.Equal(t, `unsupported container ".txt" for a.txt (available: [.docx .pptx])`, err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedContainer)
}
