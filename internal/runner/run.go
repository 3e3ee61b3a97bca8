package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cespare/xxhash/v2"
	v1 "github.com/docshrink/docshrink/apis/v1"
	"github.com/docshrink/docshrink/internal/engine"
	"github.com/docshrink/docshrink/internal/engine/encoders"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// Sinks that can safely receive the same file again after a failed attempt.
var retryableSinks = map[string]bool{
	"filesystem": true,
	"s3":         true,
}

// ParseCompressJob parses a YAML or JSON job and validates it. It returns an error
// if parsing or validation fails.
func ParseCompressJob(data []byte) (v1.CompressJob, error) {
	var job v1.CompressJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.CompressJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.CompressJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	return job, nil
}

// ReadCompressJob reads and parses the job file at path.
func ReadCompressJob(fs afero.Fs, path string) (v1.CompressJob, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return v1.CompressJob{}, fmt.Errorf("failed to read job file %s: %w", path, err)
	}

	job, err := ParseCompressJob(data)
	if err != nil {
		return v1.CompressJob{}, fmt.Errorf("invalid job file %s: %w", path, err)
	}

	return job, nil
}

// Output is one delivered package.
type Output struct {
	ID     string        `json:"id" yaml:"id"`
	Path   string        `json:"path" yaml:"path"`
	Digest string        `json:"xxhash" yaml:"xxhash"`
	Report engine.Report `json:"report" yaml:"report"`
}

// Summary describes a finished job run.
type Summary struct {
	Job      string   `json:"job" yaml:"job"`
	RunID    string   `json:"run_id" yaml:"run_id"`
	Sink     string   `json:"sink" yaml:"sink"`
	Outputs  []Output `json:"outputs" yaml:"outputs"`
	Manifest string   `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

type Option func(*Runner)

// WithAllowedEnv makes the named environment variables available to templates.
func WithAllowedEnv(names ...string) Option {
	return func(r *Runner) {
		r.allowedEnv = append(r.allowedEnv, names...)
	}
}

// WithBackOff sets the retry policy used when delivering outputs to the sink.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(r *Runner) {
		r.newBackOff = fn
	}
}

// WithProgress reports image progress per document.
func WithProgress(fn engine.DocumentProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

type Runner struct {
	logger     *zap.Logger
	fs         afero.Fs
	job        v1.CompressJob
	runID      string
	pipeline   *engine.Pipeline
	sink       engine.Sink
	scratch    string
	outputs    map[string]string
	manifest   engine.Encoder
	manifestAt string
	allowedEnv []string
	newBackOff func() backoff.BackOff
	progress   engine.DocumentProgressFunc
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithMaxRetries(b, 3)
}

// New expands the job templates, then builds the pipeline and the sink. Every
// document is compressed into a scratch directory first and only delivered to
// the sink once the whole batch succeeded.
func New(ctx context.Context, injector do.Injector, job v1.CompressJob, opts ...Option) (*Runner, error) {
	r := &Runner{
		logger:     do.MustInvoke[*zap.Logger](injector),
		fs:         do.MustInvoke[afero.Fs](injector),
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(r)
	}

	date := time.Now().UTC()
	variables, err := BuildVariables(job, date, r.allowedEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to build template variables: %w", err)
	}
	r.runID = variables["RUN_ID"]

	// Slices and pointers of job are shared with the caller.
	job = job.DeepCopy()
	if err := ExpandTemplates(&job, variables); err != nil {
		return nil, fmt.Errorf("failed to expand templates: %w", err)
	}
	r.job = job
	r.logger = r.logger.With(zap.String("job_name", job.Metadata.Name), zap.String("run_id", r.runID))
	r.logger.Info("creating runner")

	rewriter, err := do.Invoke[*engine.Rewriter](injector)
	if err != nil {
		return nil, fmt.Errorf("failed to create rewriter: %w", err)
	}

	r.scratch, err = afero.TempDir(r.fs, "", "docshrink-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	if err := r.createPipeline(rewriter); err != nil {
		r.cleanup()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	buildSink, err := do.Invoke[SinkFactory](injector)
	if err != nil {
		r.cleanup()
		return nil, fmt.Errorf("failed to resolve sink factory: %w", err)
	}

	r.sink, err = buildSink(ctx, job)
	if err != nil {
		r.cleanup()
		return nil, fmt.Errorf("failed to build sink: %w", err)
	}

	return r, nil
}

func (r *Runner) createPipeline(rewriter *engine.Rewriter) error {
	spec := r.job.Spec

	quality := v1.DefaultQuality
	if spec.Quality != nil {
		quality = *spec.Quality
	}

	suffix := v1.DefaultSuffix
	if spec.Output != nil && spec.Output.Suffix != nil {
		suffix = *spec.Output.Suffix
	}

	concurrency := spec.Concurrency
	if concurrency == 0 {
		concurrency = v1.DefaultConcurrency
	}

	r.pipeline = engine.NewPipeline(r.job.Metadata.Name, rewriter, quality, concurrency)
	r.outputs = make(map[string]string, len(spec.Documents))
	seen := make(map[string]string, len(spec.Documents)+1)

	if spec.Output != nil && spec.Output.Manifest != nil {
		encoder, err := encoders.New(spec.Output.Manifest.Format)
		if err != nil {
			return err
		}
		name := spec.Output.Manifest.Name
		if name == "" {
			name = v1.DefaultManifestName
		}
		r.manifest = encoder
		r.manifestAt = name + "." + encoder.FileExtension()
		seen[r.manifestAt] = "manifest"
	}

	for i, doc := range spec.Documents {
		name := doc.Output
		if name == "" {
			name = OutputName(doc.Path, suffix)
		}
		if other, ok := seen[name]; ok {
			return fmt.Errorf("documents %s and %s both write %s", other, doc.ID, name)
		}
		seen[name] = doc.ID

		// Scratch files are numbered so output names never collide on disk.
		scratchPath := filepath.Join(r.scratch, strconv.Itoa(i)+filepath.Ext(doc.Path))
		if err := r.pipeline.AddDocument(doc.ID, doc.Path, scratchPath); err != nil {
			return err
		}
		r.outputs[doc.ID] = name

		r.logger.Debug("added document", zap.String("document_id", doc.ID), zap.String("path", doc.Path), zap.String("output", name))
	}

	if r.progress != nil {
		r.pipeline.OnProgress(r.progress)
	} else {
		r.pipeline.OnProgress(func(id string, processed, total int) {
			r.logger.Debug("image progress", zap.String("document_id", id), zap.Int("processed", processed), zap.Int("total", total))
		})
	}

	return nil
}

// OutputName inserts suffix between the file stem and the extension of path.
func OutputName(path, suffix string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + suffix + ext
}

func (r *Runner) Job() v1.CompressJob {
	return r.job
}

func (r *Runner) Sink() engine.Sink {
	return r.sink
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	defer r.cleanup()

	results, err := r.pipeline.Run(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to run pipeline: %w", err)
	}

	summary := Summary{
		Job:   r.job.Metadata.Name,
		RunID: r.runID,
		Sink:  r.sink.Name(),
	}

	for _, result := range results {
		path := r.outputs[result.ID]
		digest, err := r.deliver(ctx, path, r.openScratch(result.Report.Output))
		if err != nil {
			return Summary{}, fmt.Errorf("failed to write document %s: %w", result.ID, err)
		}

		report := result.Report
		report.Output = path
		summary.Outputs = append(summary.Outputs, Output{ID: result.ID, Path: path, Digest: digest, Report: report})

		r.logger.Info("document delivered",
			zap.String("document_id", result.ID),
			zap.String("path", path),
			zap.Int("percent_saved", report.PercentSaved()),
		)
	}

	if r.manifest != nil {
		if err := r.writeManifest(ctx, summary); err != nil {
			return Summary{}, err
		}
		summary.Manifest = r.manifestAt
	}

	if err := r.sink.Close(ctx); err != nil {
		return Summary{}, fmt.Errorf("failed to close sink: %w", err)
	}

	r.logger.Info("job completed", zap.Any("summary", summary))

	return summary, nil
}

func (r *Runner) writeManifest(ctx context.Context, summary Summary) error {
	var buf bytes.Buffer
	if err := r.manifest.Encode(ctx, &buf, summary); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	data := buf.Bytes()
	open := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	if _, err := r.deliver(ctx, r.manifestAt, open); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	r.logger.Info("manifest written", zap.String("path", r.manifestAt))
	return nil
}

func (r *Runner) openScratch(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return r.fs.Open(path)
	}
}

// deliver writes the content returned by open to the sink under path and
// returns the xxhash of what was written. Sinks that overwrite are retried.
func (r *Runner) deliver(ctx context.Context, path string, open func() (io.ReadCloser, error)) (string, error) {
	var digest string

	operation := func() (err error) {
		f, err := open()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to open %s: %w", path, err))
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()

		h := xxhash.New()
		if err := r.sink.Write(ctx, path, io.TeeReader(f, h)); err != nil {
			if !retryableSinks[r.sink.Kind()] {
				return backoff.Permanent(err)
			}
			r.logger.Warn("sink write failed", zap.String("path", path), zap.Error(err))
			return err
		}

		digest = fmt.Sprintf("%016x", h.Sum64())
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(r.newBackOff(), ctx)); err != nil {
		return "", err
	}

	return digest, nil
}

func (r *Runner) cleanup() {
	if r.scratch == "" {
		return
	}
	if err := r.fs.RemoveAll(r.scratch); err != nil {
		r.logger.Warn("failed to remove scratch directory", zap.String("path", r.scratch), zap.Error(err))
	}
}
