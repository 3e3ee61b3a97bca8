package engine

import (
	"context"

	"go.uber.org/zap"
)

// CompressWordPackage compresses a .docx package on the local filesystem.
func CompressWordPackage(ctx context.Context, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	return NewRewriter(zap.NewNop()).CompressWordPackage(ctx, input, output, quality, progress)
}

// CompressSlidePackage compresses a .pptx package on the local filesystem.
func CompressSlidePackage(ctx context.Context, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	return NewRewriter(zap.NewNop()).CompressSlidePackage(ctx, input, output, quality, progress)
}

// CompressPackage picks the container kind from the input extension.
func CompressPackage(ctx context.Context, input, output string, quality float64, progress ProgressFunc) (Report, error) {
	return NewRewriter(zap.NewNop()).CompressPackage(ctx, input, output, quality, progress)
}
