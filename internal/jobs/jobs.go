// Package jobs tracks the lifecycle of data import jobs.
//
// A job is created when an ingest is requested, marked ready or failed by
// the processing workers, and swept on startup when it expired or was left
// mid-flight by a previous run.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// Status of an import job.
type Status string

// Job lifecycle states.
const (
	StatusProcessing  Status = "processing"
	StatusReady       Status = "ready"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// defaultTTL is how long a non-ready job record is kept before the startup
// sweep drops it. Ready jobs are kept regardless so imported data stays
// addressable across restarts.
const defaultTTL = 72 * time.Hour

// Job is one import job record.
type Job struct {
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Error     string    `json:"error,omitempty"`
}

// Tracker keeps import job records, optionally persisted to a JSON file.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]Job

	cachePath string
	ttl       time.Duration
	now       func() time.Time
}

// NewTracker creates a tracker. When a cache path is configured, previous
// records are loaded and swept: jobs stuck in processing from an earlier run
// and expired non-ready jobs are dropped.
func NewTracker(opts ...Option) (*Tracker, error) {
	t := &Tracker{
		jobs: make(map[string]Job),
		ttl:  defaultTTL,
		now:  time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(t)
	}

	if t.cachePath != "" {
		if err := t.load(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Create registers a new processing job for the given source and window and
// returns its record. Job names embed the creation instant and a short
// unique suffix.
func (t *Tracker) Create(ctx context.Context, source, startDate, endDate string) (Job, error) {
	if strings.TrimSpace(source) == "" {
		return Job{}, ErrNoSource
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	job := Job{
		Name:      fmt.Sprintf("%s-%s-%s", now.Format("20060102-150405"), source, uuid.NewString()[:8]),
		Source:    source,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    StatusProcessing,
		CreatedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}
	t.jobs[job.Name] = job
	if err := t.saveLocked(); err != nil {
		delete(t.jobs, job.Name)
		return Job{}, err
	}

	metrics.RecordImportJobStarted()
	return job, nil
}

// Get returns a job by name.
func (t *Tracker) Get(ctx context.Context, name string) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[name]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return job, nil
}

// List returns all jobs, newest first.
func (t *Tracker) List(ctx context.Context) []Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// LatestReady returns the most recently created ready job.
func (t *Tracker) LatestReady(ctx context.Context) (Job, error) {
	for _, job := range t.List(ctx) {
		if job.Status == StatusReady {
			return job, nil
		}
	}
	return Job{}, ErrJobNotFound
}

// MarkReady records successful processing. An interrupted job stays
// interrupted: the stop request wins over a worker finishing late.
func (t *Tracker) MarkReady(ctx context.Context, name string) error {
	return t.transition(name, StatusReady, "")
}

// MarkFailed records a processing failure with its reason. An interrupted
// job stays interrupted.
func (t *Tracker) MarkFailed(ctx context.Context, name, reason string) error {
	return t.transition(name, StatusFailed, reason)
}

// Stop interrupts a processing job. Jobs in any other state cannot be
// stopped.
func (t *Tracker) Stop(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if job.Status != StatusProcessing {
		return fmt.Errorf("%w: %s is %s", ErrJobNotProcessing, name, job.Status)
	}
	job.Status = StatusInterrupted
	t.jobs[name] = job
	return t.saveLocked()
}

// Delete removes a job record.
func (t *Tracker) Delete(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.jobs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	delete(t.jobs, name)
	return t.saveLocked()
}

func (t *Tracker) transition(name string, status Status, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if job.Status == StatusInterrupted {
		return nil
	}
	job.Status = status
	job.Error = reason
	t.jobs[name] = job

	switch status {
	case StatusReady:
		metrics.RecordImportJobCompleted()
		metrics.RecordImportJobDuration(float64(t.now().UTC().Sub(job.CreatedAt).Milliseconds()))
	case StatusFailed:
		metrics.RecordImportJobFailed()
	}
	return t.saveLocked()
}

// load reads persisted records and applies the startup sweep.
func (t *Tracker) load() error {
	data, err := os.ReadFile(t.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read job cache: %w", err)
	}

	var records []Job
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptJobCache, err)
	}

	now := t.now().UTC()
	for _, job := range records {
		// A job still "processing" means a previous run died mid-flight.
		if job.Status == StatusProcessing {
			continue
		}
		// Ready jobs persist regardless of age; everything else expires.
		if job.Status != StatusReady && now.After(job.ExpiresAt) {
			continue
		}
		t.jobs[job.Name] = job
	}
	return t.saveLocked()
}

// saveLocked persists the records. Callers must hold the lock.
func (t *Tracker) saveLocked() error {
	if t.cachePath == "" {
		return nil
	}
	records := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		records = append(records, job)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job cache: %w", err)
	}
	if err := os.WriteFile(t.cachePath, data, 0o644); err != nil {
		return fmt.Errorf("write job cache: %w", err)
	}
	return nil
}
