package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/docshrink/docshrink/internal/imaging"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ProgressFunc is called once per image entry with the number of images seen so
// far and the total number of images in the package.
type ProgressFunc func(processed, total int)

// RecompressFunc re-encodes an image. Any error means the original bytes are kept.
type RecompressFunc func(data []byte, quality float64) ([]byte, error)

// Rewriter rewrites Office Open XML packages with maximum compression.
// A single Compress call is synchronous and owns all of its state, so one
// Rewriter can serve concurrent calls on distinct output paths.
type Rewriter struct {
	fs         afero.Fs
	logger     *zap.Logger
	registry   *Registry
	recompress RecompressFunc
}

type RewriterOption func(*Rewriter)

func WithFs(fs afero.Fs) RewriterOption {
	return func(r *Rewriter) {
		r.fs = fs
	}
}

func WithRegistry(registry *Registry) RewriterOption {
	return func(r *Rewriter) {
		r.registry = registry
	}
}

func WithRecompressor(f RecompressFunc) RewriterOption {
	return func(r *Rewriter) {
		r.recompress = f
	}
}

func NewRewriter(logger *zap.Logger, opts ...RewriterOption) *Rewriter {
	r := &Rewriter{
		fs:         afero.NewOsFs(),
		logger:     logger,
		registry:   DefaultRegistry(),
		recompress: imaging.Recompress,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Rewriter) Registry() *Registry {
	return r.registry
}

// CompressPackage resolves the container kind from the input extension and compresses it.
func (r *Rewriter) CompressPackage(ctx context.Context, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	kind, err := r.registry.Resolve(input)
	if err != nil {
		return Report{}, err
	}
	return r.Compress(ctx, kind, input, output, quality, progress)
}

func (r *Rewriter) CompressWordPackage(ctx context.Context, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	return r.Compress(ctx, WordPackage, input, output, quality, progress)
}

func (r *Rewriter) CompressSlidePackage(ctx context.Context, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	return r.Compress(ctx, SlidePackage, input, output, quality, progress)
}

// Compress rewrites the package at input into output. XML and relationship parts
// are minified, PNG and JPEG images are re-encoded at quality, and every entry is
// stored with the strongest Deflate level. Per-image failures keep the original
// bytes; every other failure aborts and leaves output in an undefined state.
func (r *Rewriter) Compress(ctx context.Context, kind ContainerKind, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	start := time.Now()

	if math.IsNaN(quality) || quality < 0 || quality > 1 {
		return Report{}, fmt.Errorf("%w: got %v", ErrInvalidQuality, quality)
	}

	if err := r.checkContainer(kind, input); err != nil {
		return Report{}, err
	}

	logger := r.logger.With(zap.String("container", kind.Name), zap.String("input", input))

	in, err := r.fs.Open(input)
	if err != nil {
		return Report{}, fmt.Errorf("%w %s: %w", ErrOpen, input, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return Report{}, fmt.Errorf("%w %s: %w", ErrOpen, input, err)
	}

	zr, err := zip.NewReader(in, info.Size())
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s: %w", ErrArchiveFormat, input, err)
	}

	totalImages := lo.CountBy(zr.File, func(f *zip.File) bool {
		return ClassifyEntry(f.Name) == EntryImage
	})
	logger.Debug("scanned package", zap.Int("entries", len(zr.File)), zap.Int("images", totalImages))

	out, err := r.fs.Create(output)
	if err != nil {
		return Report{}, fmt.Errorf("%w %s: %w", ErrOutput, output, err)
	}

	stats, err := r.rewrite(ctx, logger, zr, out, quality, totalImages, progress)
	if err != nil {
		out.Close()
		return Report{}, err
	}

	if err := out.Close(); err != nil {
		return Report{}, fmt.Errorf("%w %s: %w", ErrFinalize, output, err)
	}

	outInfo, err := r.fs.Stat(output)
	if err != nil {
		return Report{}, fmt.Errorf("%w %s: %w", ErrFinalize, output, err)
	}

	report := Report{
		Container:      kind.Name,
		Input:          input,
		Output:         output,
		OriginalSize:   info.Size(),
		CompressedSize: outInfo.Size(),
		Quality:        quality,
		Elapsed:        time.Since(start),
		Stats:          stats,
	}

	logger.Info("package compressed",
		zap.String("output", output),
		zap.Int64("original_size", report.OriginalSize),
		zap.Int64("compressed_size", report.CompressedSize),
		zap.Int("percent_saved", report.PercentSaved()),
		zap.Int("images_compressed", stats.ImagesCompressed),
		zap.Int("images_skipped", stats.ImagesSkipped),
		zap.Duration("elapsed", report.Elapsed),
	)

	return report, nil
}

// checkContainer makes sure the input extension belongs to kind.
func (r *Rewriter) checkContainer(kind ContainerKind, input string) error {
	resolved, err := r.registry.Resolve(input)
	if err != nil {
		return err
	}
	if resolved != kind {
		return &UnsupportedContainerError{Path: input, Extension: resolved.Extension, Available: []string{kind.Extension}}
	}
	return nil
}

func (r *Rewriter) rewrite(ctx context.Context, logger *zap.Logger, zr *zip.Reader, w io.Writer, quality float64, totalImages int, progress ProgressFunc) (Stats, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	stats := Stats{TotalFiles: len(zr.File)}
	processedImages := 0

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("context cancelled while rewriting entry '%s': %w", f.Name, err)
		}

		data, err := readEntry(f)
		if err != nil {
			return stats, fmt.Errorf("%w: failed to read entry %s: %w", ErrArchiveFormat, f.Name, err)
		}

		payload := data
		switch kind := ClassifyEntry(f.Name); kind {
		case EntryTextPart:
			if !utf8.Valid(data) {
				return stats, fmt.Errorf("%w: %s", ErrEncoding, f.Name)
			}
			minified := MinifyXML(string(data))
			stats.recordTextPart(len(data), len(minified))
			payload = []byte(minified)

		case EntryImage:
			processedImages++
			if progress != nil {
				progress(processedImages, totalImages)
			}

			compressed, err := r.recompress(data, quality)
			if err != nil {
				logger.Debug("keeping original image", zap.String("entry", f.Name), zap.Error(err))
				stats.recordImageSkipped()
				break
			}
			stats.recordImageCompressed(len(data), len(compressed))
			payload = compressed
		}

		if err := writeEntry(zw, f, payload); err != nil {
			return stats, err
		}
	}

	if err := zw.Close(); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	return stats, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func writeEntry(zw *zip.Writer, src *zip.File, payload []byte) error {
	header := &zip.FileHeader{
		Name:     src.Name,
		Method:   zip.Deflate,
		Modified: src.Modified,
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("%w: failed to create entry %s: %w", ErrOutput, src.Name, err)
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("%w: failed to write entry %s: %w", ErrOutput, src.Name, err)
	}

	return nil
}
