package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	kib = 1024
	mib = 1024 * 1024
)

// Stats accumulates per-entry outcomes of a single rewrite.
type Stats struct {
	TotalFiles       int   `json:"total_files" yaml:"total_files"`
	TextParts        int   `json:"text_parts" yaml:"text_parts"`
	TextSaved        int64 `json:"text_saved" yaml:"text_saved"`
	ImagesCompressed int   `json:"images_compressed" yaml:"images_compressed"`
	ImagesSkipped    int   `json:"images_skipped" yaml:"images_skipped"`
	ImageSaved       int64 `json:"image_saved" yaml:"image_saved"`
}

func (s *Stats) recordTextPart(originalLen, minifiedLen int) {
	s.TextParts++
	s.TextSaved += savedBytes(int64(originalLen), int64(minifiedLen))
}

func (s *Stats) recordImageCompressed(originalLen, compressedLen int) {
	s.ImagesCompressed++
	s.ImageSaved += savedBytes(int64(originalLen), int64(compressedLen))
}

func (s *Stats) recordImageSkipped() {
	s.ImagesSkipped++
}

// Report summarizes a finished rewrite.
type Report struct {
	Container      string        `json:"container" yaml:"container"`
	Input          string        `json:"input" yaml:"input"`
	Output         string        `json:"output" yaml:"output"`
	OriginalSize   int64         `json:"original_size" yaml:"original_size"`
	CompressedSize int64         `json:"compressed_size" yaml:"compressed_size"`
	Quality        float64       `json:"quality" yaml:"quality"`
	Elapsed        time.Duration `json:"elapsed" yaml:"elapsed"`
	Stats          Stats         `json:"stats" yaml:"stats"`
}

// SavedBytes returns how many bytes the output is smaller than the input, never negative.
func (r Report) SavedBytes() int64 {
	return savedBytes(r.OriginalSize, r.CompressedSize)
}

// PercentSaved returns saved/original*100 truncated toward zero, or 0 for an empty original.
func (r Report) PercentSaved() int {
	if r.OriginalSize <= 0 {
		return 0
	}
	return int(r.SavedBytes() * 100 / r.OriginalSize)
}

// QualityPercent returns the quality setting as a whole percentage, rounded the
// same way as the JPEG encoder quality.
func (r Report) QualityPercent() int {
	return int(math.Round(r.Quality * 100))
}

func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("✓ Compression complete\n\n")

	sb.WriteString("Size:\n")
	fmt.Fprintf(&sb, "  • Original:   %s\n", formatSize(r.OriginalSize))
	fmt.Fprintf(&sb, "  • Compressed: %s\n", formatSize(r.CompressedSize))
	fmt.Fprintf(&sb, "  • Saved:      %s\n", formatSize(r.SavedBytes()))
	fmt.Fprintf(&sb, "  • Ratio:      %d%%\n\n", r.PercentSaved())

	sb.WriteString("Entries:\n")
	fmt.Fprintf(&sb, "  • Total entries:     %d\n", r.Stats.TotalFiles)
	fmt.Fprintf(&sb, "  • XML parts:         %d (saved %.1f KB)\n", r.Stats.TextParts, float64(r.Stats.TextSaved)/kib)
	fmt.Fprintf(&sb, "  • Images compressed: %d (saved %.1f KB)\n", r.Stats.ImagesCompressed, float64(r.Stats.ImageSaved)/kib)
	fmt.Fprintf(&sb, "  • Images skipped:    %d\n", r.Stats.ImagesSkipped)
	fmt.Fprintf(&sb, "  • Image quality:     %d%%\n\n", r.QualityPercent())

	fmt.Fprintf(&sb, "Elapsed: %.2f s", r.Elapsed.Seconds())
	return sb.String()
}

func formatSize(n int64) string {
	return fmt.Sprintf("%.2f MB (%d KB, %d bytes)", float64(n)/mib, n/kib, n)
}

func savedBytes(before, after int64) int64 {
	if after >= before {
		return 0
	}
	return before - after
}
