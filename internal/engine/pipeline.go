package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Document is one package to compress as part of a pipeline.
type Document struct {
	ID     string
	Input  string
	Output string
	Kind   ContainerKind
}

// Result pairs a document ID with its report.
type Result struct {
	ID     string `json:"id" yaml:"id"`
	Report Report `json:"report" yaml:"report"`
}

// DocumentProgressFunc reports image progress for a single document of a pipeline.
// With a concurrency above one it is called from several goroutines.
type DocumentProgressFunc func(id string, processed, total int)

type Pipeline struct {
	name        string
	rewriter    *Rewriter
	quality     float64
	concurrency int
	documents   []Document
	progress    DocumentProgressFunc
}

func NewPipeline(name string, rewriter *Rewriter, quality float64, concurrency int) *Pipeline {
	return &Pipeline{
		name:        name,
		rewriter:    rewriter,
		quality:     quality,
		concurrency: max(concurrency, 1),
	}
}

// AddDocument appends a document, resolving its container kind from the input path.
func (p *Pipeline) AddDocument(id, input, output string) error {
	for _, doc := range p.documents {
		if doc.ID == id {
			return fmt.Errorf("document %s already exists", id)
		}
	}

	kind, err := p.rewriter.Registry().Resolve(input)
	if err != nil {
		return fmt.Errorf("document %s: %w", id, err)
	}

	p.documents = append(p.documents, Document{ID: id, Input: input, Output: output, Kind: kind})
	return nil
}

func (p *Pipeline) OnProgress(fn DocumentProgressFunc) {
	p.progress = fn
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) Documents() []Document {
	return p.documents
}

// Run compresses every document and returns the results in document order.
// The first failure cancels the documents that have not started yet.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(p.documents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, doc := range p.documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("context cancelled while running pipeline at document '%s': %w", doc.ID, err)
			}

			var progress ProgressFunc
			if p.progress != nil {
				progress = func(processed, total int) {
					p.progress(doc.ID, processed, total)
				}
			}

			report, err := p.rewriter.Compress(gctx, doc.Kind, doc.Input, doc.Output, p.quality, progress)
			if err != nil {
				return fmt.Errorf("failed to compress document '%s': %w", doc.ID, err)
			}

			results[i] = Result{ID: doc.ID, Report: report}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
