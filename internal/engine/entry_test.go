package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEntry(t *testing.T) {
	tests := []struct {
		name string
		want EntryKind
	}{
		{name: "word/document.xml", want: EntryTextPart},
		{name: "_rels/.rels", want: EntryTextPart},
		{name: "word/_rels/document.xml.rels", want: EntryTextPart},
		{name: "[Content_Types].xml", want: EntryTextPart},
		{name: "ppt/slides/SLIDE1.XML", want: EntryTextPart},
		{name: "slide1/media/image1.png", want: EntryImage},
		{name: "ppt/media/image2.JPG", want: EntryImage},
		{name: "word/media/photo.jpeg", want: EntryImage},
		{name: "word/media/anim.gif", want: EntryImage},
		{name: "word/media/scan.Bmp", want: EntryImage},
		{name: "word/media/image3.emf", want: EntryImage},
		{name: "word/media/image4.wmf", want: EntryImage},
		{name: "word/fonts/font1.odttf", want: EntryOpaque},
		{name: "docProps/thumbnail.jpeg.bin", want: EntryOpaque},
		{name: "word/media/", want: EntryOpaque},
		{name: "xml", want: EntryOpaque},
		{name: "", want: EntryOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEntry(tt.name))
			assert.Equal(t, ClassifyEntry(tt.name), ClassifyEntry(tt.name))
		})
	}
}

func TestEntryKind_String(t *testing.T) {
	assert.Equal(t, "text", EntryTextPart.String())
	assert.Equal(t, "image", EntryImage.String())
	assert.Equal(t, "opaque", EntryOpaque.String())
}
