package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pagerewrite/internal/article"
	"github.com/dgallion1/pagerewrite/internal/metrics"
	"github.com/dgallion1/pagerewrite/internal/parser"
	"github.com/dgallion1/pagerewrite/internal/transform"
)

// Output is a rewritten document.
type Output struct {
	HTML        []byte
	Report      transform.Report
	ContentHash string
}

// Worker loads, transforms and renders documents. Every call parses its own
// tree, so a Worker may be shared between goroutines.
type Worker struct {
	registry *transform.Registry
	defaults []string
	parser   parser.Options
	metrics  *metrics.Recorder
	log      *slog.Logger
}

func NewWorker(reg *transform.Registry, defaults []string, popts parser.Options, rec *metrics.Recorder, log *slog.Logger) *Worker {
	return &Worker{
		registry: reg,
		defaults: defaults,
		parser:   popts,
		metrics:  rec,
		log:      log,
	}
}

// Rewrite runs the named transforms, or the default chain when names is
// empty, over the document built from filename and data.
func (w *Worker) Rewrite(filename, title string, names []string, data []byte) (*Output, error) {
	chain, err := w.chain(names)
	if err != nil {
		return nil, err
	}
	doc, err := article.Load(filename, data, article.LoadOptions{Title: title, Parser: w.parser})
	if err != nil {
		return nil, err
	}
	report, err := chain.Apply(doc)
	if err != nil {
		return &Output{Report: report}, err
	}
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return &Output{Report: report}, fmt.Errorf("render: %w", err)
	}
	return &Output{
		HTML:        buf.Bytes(),
		Report:      report,
		ContentHash: ContentHashHex(buf.Bytes()),
	}, nil
}

func (w *Worker) chain(names []string) (*transform.Chain, error) {
	if len(names) == 0 {
		names = w.defaults
	}
	chain, err := w.registry.Chain(names...)
	if err != nil {
		return nil, err
	}
	return chain.WithLogger(w.log).WithObserver(w.metrics), nil
}

// Process runs a queued job through load, transform and render.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		w.fail(job, "queued", fmt.Errorf("cancelled: %w", err))
		return
	}

	job.SetStatus(StatusLoading, "loading")
	chain, err := w.chain(job.Transforms)
	if err != nil {
		log.Error("invalid transform chain", "error", err)
		w.fail(job, "loading", err)
		return
	}
	doc, err := article.Load(job.Filename, job.Source(), article.LoadOptions{Title: job.Title, Parser: w.parser})
	if err != nil {
		log.Error("load failed", "error", err)
		w.fail(job, "loading", err)
		return
	}

	job.SetStatus(StatusTransforming, "transforming")
	report, err := chain.Apply(doc)
	job.SetReport(report)
	if err != nil {
		log.Error("transform failed", "error", err)
		w.fail(job, "transforming", err)
		return
	}

	job.SetStatus(StatusRendering, "rendering")
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		log.Error("render failed", "error", err)
		w.fail(job, "rendering", fmt.Errorf("render: %w", err))
		return
	}

	job.Complete(buf.Bytes(), ContentHashHex(buf.Bytes()))
	w.metrics.IncJobOutcome(string(StatusCompleted))
	log.Info("rewrite complete", "steps", len(report.Steps), "changed", report.Changed(), "bytes", buf.Len())
}

func (w *Worker) fail(job *Job, phase string, err error) {
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	w.metrics.IncJobOutcome(string(StatusFailed))
}
