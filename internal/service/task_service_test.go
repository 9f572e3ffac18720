package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/engine"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	repo "github.com/veranemoloko/media-downloader/internal/repository"
	"github.com/veranemoloko/media-downloader/internal/worker"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting condition")
}

func waitStatus(t *testing.T, svc *TaskService, id string, want domain.TaskStatus) domain.TaskRecord {
	t.Helper()
	var got domain.TaskRecord
	waitFor(t, 3*time.Second, func() bool {
		var err error
		got, err = svc.GetStatus(context.Background(), id)
		return err == nil && got.Status == want
	})
	return got
}

// gatedEngine blocks every fetch until release is closed, then emits ticks.
type gatedEngine struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
	ticks   []engine.Tick
	file    string
}

func newGatedEngine(file string, ticks ...engine.Tick) *gatedEngine {
	return &gatedEngine{
		release: make(chan struct{}),
		started: make(chan struct{}, 16),
		ticks:   ticks,
		file:    file,
	}
}

func (e *gatedEngine) Probe(ctx context.Context, url string) (*engine.Metadata, error) {
	return nil, errors.New("not implemented")
}

func (e *gatedEngine) Fetch(ctx context.Context, opts engine.FetchOptions, hook engine.ProgressHook) (*engine.FetchResult, error) {
	e.started <- struct{}{}
	select {
	case <-e.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	for _, tick := range e.ticks {
		if err := hook(tick); err != nil {
			return nil, err
		}
	}
	return &engine.FetchResult{Files: []string{e.file}}, nil
}

func (e *gatedEngine) open() {
	e.once.Do(func() { close(e.release) })
}

func newService(t *testing.T, eng engine.Engine, maxConcurrent int) *TaskService {
	t.Helper()
	tasks := repo.NewTaskStorage()
	logger := newTestLogger()
	wrk := worker.NewDownloadWorker(eng, tasks, t.TempDir(), logger)
	svc := NewTaskService(tasks, wrk, maxConcurrent, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})
	return svc
}

func TestTaskService_SubmitAudioCompletes(t *testing.T) {
	eng := newGatedEngine("/downloads/Track_Title.webm",
		engine.Tick{Status: engine.TickDownloading, Percent: 20},
		engine.Tick{Status: engine.TickDownloading, Percent: 90},
		engine.Tick{Status: engine.TickFinished},
	)
	svc := newService(t, eng, 0)

	id, err := svc.Submit(context.Background(), domain.SubmitRequest{
		URL:     "https://example.com/v1",
		Kind:    domain.KindAudio,
		Quality: "default",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := svc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Status)

	eng.open()
	final := waitStatus(t, svc, id, domain.TaskStatusCompleted)
	assert.Equal(t, 100.0, final.Progress)
	require.NotNil(t, final.Filename)
	assert.Equal(t, "Track_Title.mp3", *final.Filename)
}

func TestTaskService_SubmitRequiresURL(t *testing.T) {
	svc := newService(t, newGatedEngine("x"), 0)

	_, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "   "})
	assert.ErrorIs(t, err, errpkg.ErrValidation)
}

func TestTaskService_UniqueIDs(t *testing.T) {
	eng := newGatedEngine("/downloads/a.webm")
	svc := newService(t, eng, 0)
	defer eng.open()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/v"})
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true

		_, err = svc.GetStatus(context.Background(), id)
		assert.NoError(t, err)
	}
}

func TestTaskService_CancelBeforeFirstTick(t *testing.T) {
	eng := newGatedEngine("/downloads/a.webm",
		engine.Tick{Status: engine.TickDownloading, Percent: 10},
		engine.Tick{Status: engine.TickFinished},
	)
	svc := newService(t, eng, 0)

	id, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/v"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestCancel(context.Background(), id))
	require.NoError(t, svc.RequestCancel(context.Background(), id))
	eng.open()

	final := waitStatus(t, svc, id, domain.TaskStatusCancelled)
	assert.True(t, final.CancelRequested)
	assert.Nil(t, final.Filename)

	time.Sleep(50 * time.Millisecond)
	again, _ := svc.GetStatus(context.Background(), id)
	assert.Equal(t, domain.TaskStatusCancelled, again.Status)
}

func TestTaskService_CancelUnknown(t *testing.T) {
	svc := newService(t, newGatedEngine("x"), 0)

	err := svc.RequestCancel(context.Background(), "nope")
	assert.ErrorIs(t, err, errpkg.ErrTaskNotFound)

	_, err = svc.GetStatus(context.Background(), "nope")
	assert.ErrorIs(t, err, errpkg.ErrTaskNotFound)
}

func TestTaskService_CancelFinishedIsNoop(t *testing.T) {
	eng := newGatedEngine("/downloads/a.webm")
	eng.open()
	svc := newService(t, eng, 0)

	id, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/v"})
	require.NoError(t, err)
	waitStatus(t, svc, id, domain.TaskStatusCompleted)

	require.NoError(t, svc.RequestCancel(context.Background(), id))
	got, _ := svc.GetStatus(context.Background(), id)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
}

func TestTaskService_AdmissionLimit(t *testing.T) {
	eng := newGatedEngine("/downloads/a.webm")
	svc := newService(t, eng, 1)

	first, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/1"})
	require.NoError(t, err)
	<-eng.started

	second, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/2"})
	require.NoError(t, err)
	third, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/3"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	snap, _ := svc.GetStatus(context.Background(), second)
	assert.Equal(t, domain.TaskStatusPending, snap.Status)

	require.NoError(t, svc.RequestCancel(context.Background(), second))
	waitStatus(t, svc, second, domain.TaskStatusCancelled)

	eng.open()
	waitStatus(t, svc, first, domain.TaskStatusCompleted)
	waitStatus(t, svc, third, domain.TaskStatusCompleted)
	assert.Len(t, eng.started, 1)
}

func TestTaskService_ShutdownCancelsRunning(t *testing.T) {
	eng := newGatedEngine("/downloads/a.webm")
	tasks := repo.NewTaskStorage()
	logger := newTestLogger()
	svc := NewTaskService(tasks, worker.NewDownloadWorker(eng, tasks, t.TempDir(), logger), 0, logger)

	id, err := svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/v"})
	require.NoError(t, err)
	<-eng.started

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	got, _ := svc.GetStatus(context.Background(), id)
	assert.Equal(t, domain.TaskStatusCancelled, got.Status)

	_, err = svc.Submit(context.Background(), domain.SubmitRequest{URL: "https://example.com/v"})
	assert.ErrorIs(t, err, errpkg.ErrShuttingDown)
}
