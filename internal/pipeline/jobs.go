package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/pagerewrite/internal/transform"
	"github.com/google/uuid"
)

// JobStatus represents the state of a rewrite job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusLoading      JobStatus = "loading"
	StatusTransforming JobStatus = "transforming"
	StatusRendering    JobStatus = "rendering"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Job tracks the state of a single document rewrite.
type Job struct {
	mu sync.Mutex

	ID         string    `json:"job_id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Transforms []string  `json:"transforms"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	source []byte
	result []byte
	errors []string
}

// Progress tracks which transform steps ran and what they did.
type Progress struct {
	StepsRun     int                    `json:"steps_run"`
	StepsChanged int                    `json:"steps_changed"`
	Steps        []transform.StepReport `json:"steps"`
	Errors       []string               `json:"errors"`
}

// NewJob creates a queued job for source data.
func NewJob(filename, title string, transforms []string, source []byte) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.NewString(),
		Filename:   filename,
		Title:      title,
		Transforms: transforms,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
		source:     source,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetReport records the transform steps that ran.
func (j *Job) SetReport(r transform.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Steps = r.Steps
	j.Progress.StepsRun = len(r.Steps)
	j.Progress.StepsChanged = r.Changed()
	j.UpdatedAt = time.Now()
}

// Source returns the raw source bytes.
func (j *Job) Source() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.source
}

// Complete stores the rewritten document, drops the source, and marks the job done.
func (j *Job) Complete(result []byte, contentHash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = result
	j.source = nil
	j.ContentHash = contentHash
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Result returns the rewritten document once the job has completed.
func (j *Job) Result() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.Status == StatusCompleted
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Transforms  []string  `json:"transforms"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	steps := append([]transform.StepReport{}, j.Progress.Steps...)
	return JobSnapshot{
		ID:         j.ID,
		Filename:   j.Filename,
		Title:      j.Title,
		Transforms: append([]string{}, j.Transforms...),
		Status:     j.Status,
		Phase:      j.Phase,
		Progress: Progress{
			StepsRun:     j.Progress.StepsRun,
			StepsChanged: j.Progress.StepsChanged,
			Steps:        steps,
			Errors:       errs,
		},
		ContentHash: j.ContentHash,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
