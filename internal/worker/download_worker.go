package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/engine"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/metrics"
	repo "github.com/veranemoloko/media-downloader/internal/repository"
)

const unknownValue = "N/A"

// DownloadWorker drives one engine call per task and is the only writer of the
// task's progress fields.
type DownloadWorker struct {
	engine    engine.Engine
	tasks     repo.TaskRepo
	outputDir string
	logger    *slog.Logger
}

// NewDownloadWorker creates a worker writing into outputDir.
func NewDownloadWorker(eng engine.Engine, tasks repo.TaskRepo, outputDir string, logger *slog.Logger) *DownloadWorker {
	return &DownloadWorker{
		engine:    eng,
		tasks:     tasks,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Run executes the job for taskID and records its terminal state. The engine is
// aborted at the first progress tick after a cancellation request or after ctx
// is done. Failures are recorded on the task, never retried.
func (w *DownloadWorker) Run(ctx context.Context, taskID string, req domain.SubmitRequest) domain.TaskStatus {
	logger := w.logger.With("task_id", taskID)

	w.update(taskID, func(task *domain.TaskRecord) {
		task.Status = domain.TaskStatusStarting
	})

	metrics.TasksRunning.Inc()
	defer metrics.TasksRunning.Dec()

	opts := BuildFetchOptions(w.outputDir, req)
	logger.Info("download started", "url", req.URL, "format", req.Kind, "quality", req.Quality, "playlist", req.DownloadPlaylist)

	start := time.Now()
	result, err := w.engine.Fetch(ctx, opts, w.progressHook(ctx, taskID))
	metrics.TaskDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, errpkg.ErrCancelled) || (err != nil && ctx.Err() != nil):
		return w.cancel(taskID, logger)
	case err != nil:
		return w.fail(taskID, err.Error(), logger)
	case w.tasks.CancelRequested(taskID):
		return w.cancel(taskID, logger)
	}

	var filename *string
	if !req.DownloadPlaylist {
		name, err := outputName(result, req.Kind)
		if err != nil {
			return w.fail(taskID, err.Error(), logger)
		}
		filename = &name
	}

	w.update(taskID, func(task *domain.TaskRecord) {
		task.Filename = filename
		task.Status = domain.TaskStatusCompleted
		task.Progress = 100
	})
	metrics.TasksCompleted.Inc()
	logger.Info("download completed", "duration", time.Since(start).String(), "filename", deref(filename))

	return domain.TaskStatusCompleted
}

func (w *DownloadWorker) progressHook(ctx context.Context, taskID string) engine.ProgressHook {
	return func(tick engine.Tick) error {
		if w.tasks.CancelRequested(taskID) || ctx.Err() != nil {
			return errpkg.ErrCancelled
		}

		switch tick.Status {
		case engine.TickDownloading:
			w.update(taskID, func(task *domain.TaskRecord) {
				task.Status = domain.TaskStatusDownloading
				task.Progress = tick.Percent
				task.Speed = orUnknown(tick.Speed)
				task.ETA = orUnknown(tick.ETA)
				if tick.PlaylistIndex != nil && tick.PlaylistCount != nil {
					task.PlaylistIndex = tick.PlaylistIndex
					task.PlaylistCount = tick.PlaylistCount
				}
			})
		case engine.TickFinished:
			w.update(taskID, func(task *domain.TaskRecord) {
				task.Status = domain.TaskStatusProcessing
				task.Progress = 100
			})
		}
		return nil
	}
}

func (w *DownloadWorker) cancel(taskID string, logger *slog.Logger) domain.TaskStatus {
	w.update(taskID, func(task *domain.TaskRecord) {
		task.Status = domain.TaskStatusCancelled
	})
	metrics.TasksCancelled.Inc()
	logger.Info("download cancelled by user")
	return domain.TaskStatusCancelled
}

func (w *DownloadWorker) fail(taskID, message string, logger *slog.Logger) domain.TaskStatus {
	w.update(taskID, func(task *domain.TaskRecord) {
		task.Status = domain.TaskStatusError
		task.ErrorMessage = message
	})
	metrics.TasksFailed.Inc()
	logger.Error("download failed", "error", message)
	return domain.TaskStatusError
}

func (w *DownloadWorker) update(taskID string, mutate func(task *domain.TaskRecord)) {
	if err := w.tasks.UpdateTask(context.Background(), taskID, mutate); err != nil {
		w.logger.Warn("failed to update task", "task_id", taskID, "error", err)
	}
}

// outputName derives the served file name from the engine's output path. Post
// processing changes the container, so the extension follows the job kind.
func outputName(result *engine.FetchResult, kind domain.Kind) (string, error) {
	if result == nil || len(result.Files) == 0 {
		return "", fmt.Errorf("engine reported no output file")
	}
	base := filepath.Base(result.Files[0])
	return strings.TrimSuffix(base, filepath.Ext(base)) + kind.Extension(), nil
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
