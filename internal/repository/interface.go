package repository

import (
	"context"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
)

// TaskRepo defines the registry operations shared by the supervisor, the worker
// and the retention sweeper.
type TaskRepo interface {
	CreateTask(ctx context.Context, task *domain.TaskRecord) error
	GetTask(ctx context.Context, id string) (domain.TaskRecord, error)
	UpdateTask(ctx context.Context, id string, mutate func(task *domain.TaskRecord)) error
	RequestCancel(ctx context.Context, id string) error
	CancelRequested(id string) bool
	EvictFinished(olderThan time.Time) int
}
