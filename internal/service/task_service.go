package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/metrics"
	repo "github.com/veranemoloko/media-downloader/internal/repository"
)

// Runner executes one task to a terminal state.
type Runner interface {
	Run(ctx context.Context, taskID string, req domain.SubmitRequest) domain.TaskStatus
}

// TaskService supervises submitted tasks: it registers them, starts a worker
// per task and routes cancellation requests into the registry.
type TaskService struct {
	tasks  repo.TaskRepo
	runner Runner
	slots  *semaphore.Weighted
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	waiting map[string]context.CancelFunc
}

// NewTaskService creates a supervisor. maxConcurrent bounds how many tasks drive
// the engine at once; tasks over the limit wait in pending state. Zero means no limit.
func NewTaskService(tasks repo.TaskRepo, runner Runner, maxConcurrent int, logger *slog.Logger) *TaskService {
	ctx, cancel := context.WithCancel(context.Background())

	s := &TaskService{
		tasks:   tasks,
		runner:  runner,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		waiting: make(map[string]context.CancelFunc),
	}
	if maxConcurrent > 0 {
		s.slots = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return s
}

// Submit registers a new task and starts it in the background. Only the
// presence of a URL is validated; everything else is the engine's business.
func (s *TaskService) Submit(ctx context.Context, req domain.SubmitRequest) (string, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return "", fmt.Errorf("%w: url is required", errpkg.ErrValidation)
	}
	req.Normalize()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", errpkg.ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.Unlock()

	id := uuid.NewString()
	if err := s.tasks.CreateTask(ctx, domain.NewTaskRecord(id, req.DownloadPlaylist, time.Now())); err != nil {
		s.wg.Done()
		return "", fmt.Errorf("create task: %w", err)
	}

	metrics.TasksSubmitted.Inc()
	s.logger.Info("task created", "task_id", id, "url", req.URL, "format", req.Kind, "quality", req.Quality)

	go s.run(id, req)
	return id, nil
}

func (s *TaskService) run(id string, req domain.SubmitRequest) {
	defer s.wg.Done()

	if s.slots != nil {
		if !s.acquire(id) {
			return
		}
		defer s.slots.Release(1)
	}

	status := s.runner.Run(s.ctx, id, req)
	s.logger.Debug("task finished", "task_id", id, "status", status)
}

// acquire blocks until a run slot frees up. A cancellation request or shutdown
// while waiting ends the task without ever reaching the engine.
func (s *TaskService) acquire(id string) bool {
	waitCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.mu.Lock()
	s.waiting[id] = cancel
	s.mu.Unlock()

	if s.tasks.CancelRequested(id) {
		cancel()
	}

	err := s.slots.Acquire(waitCtx, 1)

	s.mu.Lock()
	delete(s.waiting, id)
	s.mu.Unlock()

	if err == nil {
		return true
	}

	if uerr := s.tasks.UpdateTask(context.Background(), id, func(task *domain.TaskRecord) {
		task.Status = domain.TaskStatusCancelled
	}); uerr != nil {
		s.logger.Warn("failed to update task", "task_id", id, "error", uerr)
	}
	metrics.TasksCancelled.Inc()
	s.logger.Info("task cancelled while queued", "task_id", id)
	return false
}

// RequestCancel flags a task for cancellation. It is idempotent; flagging a
// finished task has no effect. Unknown ids report ErrTaskNotFound.
func (s *TaskService) RequestCancel(ctx context.Context, id string) error {
	if err := s.tasks.RequestCancel(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if cancel, ok := s.waiting[id]; ok {
		cancel()
	}
	s.mu.Unlock()

	s.logger.Info("cancellation requested", "task_id", id)
	return nil
}

// GetStatus returns a snapshot of the task record.
func (s *TaskService) GetStatus(ctx context.Context, id string) (domain.TaskRecord, error) {
	return s.tasks.GetTask(ctx, id)
}

// Shutdown stops accepting tasks, interrupts running ones and waits for their
// workers to record a final state or for ctx to expire.
func (s *TaskService) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down task service")

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("task service shutdown completed")
		return nil
	case <-ctx.Done():
		s.logger.Warn("task service shutdown timed out")
		return ctx.Err()
	}
}
