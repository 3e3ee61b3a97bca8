package runner

import (
	"errors"
	"fmt"
	"strings"

	v1 "github.com/docshrink/docshrink/apis/v1"
)

const (
	SinkStdout     = "stdout"
	SinkFilesystem = "filesystem"
	SinkS3         = "s3"
)

// ResolvedSpec holds a kind identifier and the spec for that kind.
type ResolvedSpec struct {
	Kind string
	Spec any
}

// ResolveSinkSpec extracts the sink kind and spec from an output spec. A missing
// output or sink resolves to stdout. Setting more than one sink is an error.
func ResolveSinkSpec(output *v1.OutputSpec) (ResolvedSpec, error) {
	if output == nil || output.Sink == nil {
		return ResolvedSpec{Kind: SinkStdout, Spec: &v1.StdoutSinkSpec{}}, nil
	}

	var resolved []ResolvedSpec
	sink := output.Sink
	if sink.Stdout != nil {
		resolved = append(resolved, ResolvedSpec{Kind: SinkStdout, Spec: sink.Stdout})
	}
	if sink.Filesystem != nil {
		resolved = append(resolved, ResolvedSpec{Kind: SinkFilesystem, Spec: sink.Filesystem})
	}
	if sink.S3 != nil {
		resolved = append(resolved, ResolvedSpec{Kind: SinkS3, Spec: sink.S3})
	}

	switch len(resolved) {
	case 0:
		return ResolvedSpec{}, fmt.Errorf("sink has no type specified")
	case 1:
		return resolved[0], nil
	default:
		kinds := make([]string, len(resolved))
		for i, r := range resolved {
			kinds[i] = r.Kind
		}
		return ResolvedSpec{}, fmt.Errorf("sink must have exactly one type, got %s", strings.Join(kinds, ", "))
	}
}

// Validate checks the parts of a job the struct tags cannot express: the sink
// accepts the documents, the archive settings agree and every document is a
// supported container.
func Validate(job v1.CompressJob) error {
	if err := checkSinkCompatibility(job); err != nil {
		return err
	}
	if err := checkArchiveSpec(job); err != nil {
		return err
	}

	registry := BuildRegistry()
	var errs error
	for _, doc := range job.Spec.Documents {
		if _, err := registry.Resolve(doc.Path); err != nil {
			errs = errors.Join(errs, fmt.Errorf("document %s: %w", doc.ID, err))
		}
	}
	return errs
}
