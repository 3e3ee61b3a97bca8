package engine

import "strings"

// EntryKind is the classification of an archive member, derived from its name only.
type EntryKind int

const (
	EntryOpaque EntryKind = iota
	EntryTextPart
	EntryImage
)

var (
	textPartSuffixes = []string{".xml", ".rels"}
	imageSuffixes    = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".emf", ".wmf"}
)

func (k EntryKind) String() string {
	switch k {
	case EntryTextPart:
		return "text"
	case EntryImage:
		return "image"
	default:
		return "opaque"
	}
}

// ClassifyEntry maps an archive member name to its kind by case-insensitive suffix.
// Names that match no known suffix are EntryOpaque.
func ClassifyEntry(name string) EntryKind {
	lower := strings.ToLower(name)
	if hasAnySuffix(lower, textPartSuffixes) {
		return EntryTextPart
	}
	if hasAnySuffix(lower, imageSuffixes) {
		return EntryImage
	}
	return EntryOpaque
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
