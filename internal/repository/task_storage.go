package repository

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

type entry struct {
	mu   sync.Mutex
	task *domain.TaskRecord
}

// TaskStorage is the in-memory task registry. The map is guarded by one RWMutex,
// every record by its own mutex, so workers updating different tasks never contend.
type TaskStorage struct {
	mu    sync.RWMutex
	tasks map[string]*entry
	now   func() time.Time
}

// NewTaskStorage creates an empty registry.
func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		tasks: make(map[string]*entry),
		now:   time.Now,
	}
}

func (r *TaskStorage) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	e, ok := r.tasks[id]
	r.mu.RUnlock()
	return e, ok
}

// CreateTask registers a new record. Ids must be unique.
func (r *TaskStorage) CreateTask(ctx context.Context, task *domain.TaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already registered", task.ID)
	}
	r.tasks[task.ID] = &entry{task: task}

	slog.Debug("task registered", "task_id", task.ID)
	return nil
}

// GetTask returns a snapshot of the record.
func (r *TaskStorage) GetTask(ctx context.Context, id string) (domain.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.TaskRecord{}, err
	}

	e, ok := r.lookup(id)
	if !ok {
		return domain.TaskRecord{}, errpkg.ErrTaskNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task.Clone(), nil
}

// UpdateTask applies mutate to the live record under its lock and then enforces
// the progress invariants: terminal states are sticky, progress stays within
// [0,100] and never moves backwards while downloading or processing, and a
// completed task always reports 100.
func (r *TaskStorage) UpdateTask(ctx context.Context, id string, mutate func(task *domain.TaskRecord)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, ok := r.lookup(id)
	if !ok {
		return errpkg.ErrTaskNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.task.Status.IsTerminal() {
		return nil
	}

	next := e.task.Clone()
	mutate(&next)

	next.ID = e.task.ID
	next.CancelRequested = e.task.CancelRequested
	next.IsPlaylist = e.task.IsPlaylist
	next.CreatedAt = e.task.CreatedAt

	next.Progress = clamp(next.Progress)
	if next.Status.IsTransferring() && e.task.Status.IsTransferring() && next.Progress < e.task.Progress {
		next.Progress = e.task.Progress
	}
	if next.Status == domain.TaskStatusCompleted {
		next.Progress = 100
	}
	if next.Status != domain.TaskStatusError {
		next.ErrorMessage = ""
	}
	next.UpdatedAt = r.now()

	*e.task = next
	return nil
}

// RequestCancel sets the cancellation flag. Cancelling a finished task is a no-op.
func (r *TaskStorage) RequestCancel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, ok := r.lookup(id)
	if !ok {
		return errpkg.ErrTaskNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.task.Status.IsTerminal() {
		e.task.CancelRequested = true
	}
	return nil
}

// CancelRequested reports whether a cancellation was requested for id.
// Unknown ids report false.
func (r *TaskStorage) CancelRequested(id string) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task.CancelRequested
}

// EvictFinished drops terminal records last updated before olderThan and
// returns how many were removed. Running records are never evicted.
func (r *TaskStorage) EvictFinished(olderThan time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.tasks {
		e.mu.Lock()
		expired := e.task.Status.IsTerminal() && e.task.UpdatedAt.Before(olderThan)
		e.mu.Unlock()

		if expired {
			delete(r.tasks, id)
			evicted++
		}
	}

	if evicted > 0 {
		slog.Debug("finished tasks evicted", "count", evicted)
	}
	return evicted
}

// Len returns the number of registered records.
func (r *TaskStorage) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
