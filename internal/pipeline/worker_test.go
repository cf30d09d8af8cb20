package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pagerewrite/internal/config"
	"github.com/dgallion1/pagerewrite/internal/metrics"
	"github.com/dgallion1/pagerewrite/internal/parser"
	"github.com/dgallion1/pagerewrite/internal/transform"
)

const leadPage = `<div id="section_heading_and_content_block_0">` +
	`<span id="edit_section_button_0"></span>` +
	`<table class="infobox"></table>` +
	`<p isFirstGoodParagraph>Lead.</p>` +
	`</div>`

const movedPage = `<div id="section_heading_and_content_block_0">` +
	`<span id="edit_section_button_0"></span>` +
	`<p isfirstgoodparagraph="">Lead.</p>` +
	`<table class="infobox"></table>` +
	`</div>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorker() *Worker {
	return NewWorker(transform.Defaults(), []string{transform.MoveFirstGoodParagraphUp}, parser.Options{}, metrics.NewRecorder(nil), testLogger())
}

func TestWorker_RewriteDefaultChain(t *testing.T) {
	out, err := newTestWorker().Rewrite("page.html", "", nil, []byte(leadPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out.HTML) != movedPage {
		t.Errorf("expected\n%s\ngot\n%s", movedPage, out.HTML)
	}
	if out.Report.Changed() != 1 {
		t.Errorf("expected one changed step, got %+v", out.Report)
	}
	if out.ContentHash != ContentHashHex(out.HTML) {
		t.Error("expected content hash of the rendered output")
	}
}

func TestWorker_RewriteUnknownTransform(t *testing.T) {
	_, err := newTestWorker().Rewrite("page.html", "", []string{"nope"}, []byte(leadPage))
	if !errors.Is(err, transform.ErrUnknownTransform) {
		t.Errorf("expected ErrUnknownTransform, got %v", err)
	}
}

func TestWorker_ProcessCompletes(t *testing.T) {
	job := NewJob("page.html", "", nil, []byte(leadPage))
	newTestWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.StepsRun != 1 || snap.Progress.StepsChanged != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	out, ok := job.Result()
	if !ok || string(out) != movedPage {
		t.Errorf("unexpected result %q", out)
	}
}

func TestWorker_ProcessMarkdownNoMarker(t *testing.T) {
	job := NewJob("notes.md", "", nil, []byte("# Notes\n\nLead.\n"))
	newTestWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.StepsChanged != 0 || snap.Progress.Steps[0].Reason != "no_paragraph" {
		t.Errorf("expected unmarked source to be left alone, got %+v", snap.Progress.Steps)
	}
	out, _ := job.Result()
	if !strings.Contains(string(out), `id="edit_section_button_0"`) {
		t.Errorf("expected rendered scaffold, got %s", out)
	}
}

func TestWorker_ProcessTransformError(t *testing.T) {
	src := `<div isFirstGoodParagraph><span id="edit_section_button_0"></span></div>`
	job := NewJob("page.html", "", nil, []byte(src))
	newTestWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "transforming" {
		t.Errorf("expected failure in transforming, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected one recorded error, got %v", snap.Progress.Errors)
	}
}

func TestWorker_ProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewJob("page.html", "", nil, []byte(leadPage))
	newTestWorker().Process(ctx, job)
	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected cancelled job to fail, got %q", snap.Status)
	}
}

func TestOrchestrator_SubmitAndProcess(t *testing.T) {
	cfg := config.Config{
		WorkerCount:       2,
		MaxQueueSize:      4,
		JobTTL:            time.Hour,
		DefaultTransforms: []string{transform.MoveFirstGoodParagraphUp},
	}
	o := NewOrchestrator(cfg, transform.Defaults(), nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("page.html", "", nil, []byte(leadPage))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := o.GetJob(job.ID).Snapshot()
		if snap.Status == StatusCompleted {
			break
		}
		if snap.Status == StatusFailed || time.Now().After(deadline) {
			t.Fatalf("job did not complete: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if out, _ := job.Result(); string(out) != movedPage {
		t.Errorf("unexpected result %q", out)
	}
}

func TestOrchestrator_SubmitRejectsUnknownTransform(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, transform.Defaults(), nil, testLogger())

	job := NewJob("page.html", "", []string{"nope"}, []byte(leadPage))
	if err := o.Submit(job); !errors.Is(err, transform.ErrUnknownTransform) {
		t.Errorf("expected ErrUnknownTransform, got %v", err)
	}
	if o.GetJob(job.ID) != nil {
		t.Error("expected rejected job not to be stored")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	rec := metrics.NewRecorder(nil)
	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, transform.Defaults(), rec, testLogger())

	if err := o.Submit(NewJob("a.html", "", nil, nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.html", "", nil, nil)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected overflow job marked failed, got %q", snap.Status)
	}
	if o.GetJob(second.ID) != nil {
		t.Error("expected overflow job not to be stored")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	scrape := httptest.NewRecorder()
	rec.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(scrape.Body.String(), `pagerewrite_job_outcomes_total{status="failed"} 1`) {
		t.Errorf("expected failed outcome for overflow job, got:\n%s", scrape.Body)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, transform.Defaults(), nil, testLogger())
	o.Start(context.Background())
	o.Stop()
	// A second Stop is a no-op.
	o.Stop()

	job := NewJob("page.html", "", nil, []byte(leadPage))
	if err := o.Submit(job); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("expected ErrShuttingDown, got %v", err)
	}
	if o.GetJob(job.ID) != nil {
		t.Error("expected rejected job not to be stored")
	}
}

const savedPage = "<!-- saved from url=(0014)about:internet -->\n" +
	`<!DOCTYPE html><html lang="en"><head><title>T</title></head><body class="skin">` +
	leadPage +
	`</body></html>`

func TestWorker_RewriteKeepsDocumentShell(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"leading comment": {
			src: savedPage,
			want: `<!-- saved from url=(0014)about:internet -->` +
				`<!DOCTYPE html><html lang="en"><head><title>T</title></head><body class="skin">` +
				movedPage +
				`</body></html>`,
		},
		"byte order mark": {
			src:  "\ufeff" + `<!DOCTYPE html><html lang="en"><head></head><body class="skin">` + leadPage + `</body></html>`,
			want: `<!DOCTYPE html><html lang="en"><head></head><body class="skin">` + movedPage + `</body></html>`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := newTestWorker().Rewrite("page.html", "", nil, []byte(tc.src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(out.HTML) != tc.want {
				t.Errorf("expected\n%s\ngot\n%s", tc.want, out.HTML)
			}
		})
	}
}
