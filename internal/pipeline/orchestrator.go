package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pagerewrite/internal/config"
	"github.com/dgallion1/pagerewrite/internal/metrics"
	"github.com/dgallion1/pagerewrite/internal/parser"
	"github.com/dgallion1/pagerewrite/internal/transform"
)

// ErrShuttingDown is returned by Submit once Stop has been called.
var ErrShuttingDown = errors.New("pipeline is shutting down")

// Orchestrator manages the rewrite job queue and its workers.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	worker   *Worker
	metrics  *metrics.Recorder
	registry *transform.Registry
	log      *slog.Logger
	cfg      config.Config

	// mu guards stopped and sends on queue, so Stop never closes the
	// queue under a concurrent Submit.
	mu      sync.Mutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, reg *transform.Registry, rec *metrics.Recorder, log *slog.Logger) *Orchestrator {
	popts := parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		worker:   NewWorker(reg, cfg.DefaultTransforms, popts, rec, log),
		metrics:  rec,
		registry: reg,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing. The transform names are checked
// up front so a bad chain is rejected before it is queued.
func (o *Orchestrator) Submit(job *Job) error {
	if len(job.Transforms) > 0 {
		if _, err := o.registry.Chain(job.Transforms...); err != nil {
			return err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrShuttingDown
	}
	select {
	case o.queue <- job:
		o.jobs.Put(job)
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		o.metrics.IncJobOutcome(string(StatusFailed))
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// RewriteNow rewrites a document on the calling goroutine, bypassing the queue.
func (o *Orchestrator) RewriteNow(filename, title string, names []string, data []byte) (*Output, error) {
	return o.worker.Rewrite(filename, title, names, data)
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Registry returns the transform registry jobs are resolved against.
func (o *Orchestrator) Registry() *transform.Registry {
	return o.registry
}

// DefaultTransforms returns the chain used when a request names none.
func (o *Orchestrator) DefaultTransforms() []string {
	return o.cfg.DefaultTransforms
}
