// File: internal/registry/registry.go
// Description: Tracks in-flight and completed executions by identifier for
// asynchronous status polling. Submissions return immediately; the actual
// run happens on a background goroutine gated by a weighted semaphore.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/webpilot-ai/webpilot/api/schemas"
	"github.com/webpilot-ai/webpilot/internal/config"
)

// ErrNotFound is returned for execution ids the registry has never seen.
// An unknown id never yields a default record.
var ErrNotFound = errors.New("execution not found")

// Registry owns the execution record map. Records are inserted in the
// running state and mutated exactly once, by the goroutine that owns the
// execution, to a terminal state. Reads return copies.
type Registry struct {
	log      *zap.Logger
	executor schemas.PromptExecutor

	mu      sync.RWMutex
	records map[string]*schemas.ExecutionRecord
	// order tracks insertion order for the optional retention cap.
	order []string

	// maxRecords caps retained records; 0 means keep everything for the
	// process lifetime.
	maxRecords int

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// New creates a Registry around the given executor.
func New(cfg config.RegistryConfig, executor schemas.PromptExecutor, logger *zap.Logger) (*Registry, error) {
	if executor == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize registry with nil dependencies")
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Registry{
		log:        logger.Named("registry"),
		executor:   executor,
		records:    make(map[string]*schemas.ExecutionRecord),
		maxRecords: cfg.MaxRecords,
		sem:        semaphore.NewWeighted(int64(workers)),
	}, nil
}

// Submit stores a running record and schedules the prompt for background
// execution. It never blocks on the execution itself; the returned id can
// be polled with Get immediately.
func (r *Registry) Submit(prompt string, saveScreenshot bool) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}

	now := time.Now()
	// The id is derived from the submission time; the uuid suffix keeps
	// two submissions within the same instant distinct.
	id := fmt.Sprintf("exec_%d_%s", now.Unix(), uuid.NewString()[:8])

	record := &schemas.ExecutionRecord{
		ID:             id,
		Prompt:         prompt,
		Status:         schemas.StatusRunning,
		SaveScreenshot: saveScreenshot,
		StartedAt:      now,
	}

	r.mu.Lock()
	r.evictLocked()
	r.records[id] = record
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.log.Info("Starting automation", zap.String("execution_id", id), zap.String("prompt", prompt))

	r.wg.Add(1)
	go r.execute(id, prompt, saveScreenshot)

	return id, nil
}

// Get returns a copy of the record for the given id.
func (r *Registry) Get(id string) (schemas.ExecutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return schemas.ExecutionRecord{}, ErrNotFound
	}
	return *record, nil
}

// Len reports the number of retained records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Shutdown waits for in-flight executions to finish or the context to
// expire. No new work is rejected; callers stop submitting first.
func (r *Registry) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute runs one submission and applies the single terminal mutation.
func (r *Registry) execute(id, prompt string, saveScreenshot bool) {
	defer r.wg.Done()

	// The semaphore bounds concurrent orchestrator runs; waiting here
	// keeps Submit itself non-blocking.
	if err := r.sem.Acquire(context.Background(), 1); err != nil {
		r.finish(id, nil, err)
		return
	}
	defer r.sem.Release(1)

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Execution panicked", zap.String("execution_id", id), zap.Any("panic", rec))
			r.finish(id, nil, fmt.Errorf("execution panicked: %v", rec))
		}
	}()

	report := r.executor.ExecutePrompt(context.Background(), prompt, saveScreenshot)
	r.finish(id, report, nil)
}

// finish moves a record to its terminal state. Interpretation failures
// (reports carrying an error and no attempted actions) are recorded as
// failed; everything else completes with the report's overall success.
func (r *Registry) finish(id string, report *schemas.ExecutionReport, execErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		// Evicted while running; nothing left to update.
		return
	}
	if record.Status.Terminal() {
		return
	}

	now := time.Now()
	record.FinishedAt = &now
	record.Report = report

	switch {
	case execErr != nil:
		record.Status = schemas.StatusFailed
		record.Error = execErr.Error()
	case report != nil && report.Error != "":
		record.Status = schemas.StatusFailed
		record.Error = report.Error
	default:
		record.Status = schemas.StatusCompleted
		if report != nil {
			record.Success = report.OverallSuccess
		}
	}

	r.log.Info("Automation finished",
		zap.String("execution_id", id),
		zap.String("status", string(record.Status)),
		zap.Bool("success", record.Success))
}

// evictLocked drops the oldest terminal records while over the cap. Called
// with the write lock held, before a new insert. Running records are never
// evicted.
func (r *Registry) evictLocked() {
	if r.maxRecords <= 0 {
		return
	}
	for len(r.records) >= r.maxRecords {
		evicted := false
		for i, id := range r.order {
			record, ok := r.records[id]
			if ok && !record.Status.Terminal() {
				continue
			}
			if ok {
				delete(r.records, id)
			}
			r.order = append(r.order[:i], r.order[i+1:]...)
			evicted = true
			break
		}
		if !evicted {
			// Everything retained is still running; let the map grow past
			// the cap rather than dropping live executions.
			return
		}
	}
}
