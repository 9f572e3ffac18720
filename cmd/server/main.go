package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	h "github.com/veranemoloko/media-downloader/internal/api/http"
	cfgpkg "github.com/veranemoloko/media-downloader/internal/config"
	"github.com/veranemoloko/media-downloader/internal/engine"
	repo "github.com/veranemoloko/media-downloader/internal/repository"
	"github.com/veranemoloko/media-downloader/internal/retention"
	"github.com/veranemoloko/media-downloader/internal/storage"
	svc "github.com/veranemoloko/media-downloader/internal/service"
	"github.com/veranemoloko/media-downloader/internal/worker"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfgpkg.SetupLogger(cfg)
	logger.Info("configuration loaded successfully", "env", cfg.Environment, "download_dir", cfg.DownloadDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.InstallEngine {
		if err := engine.Install(ctx); err != nil {
			logger.Error("failed to install media engine", "error", err)
			os.Exit(1)
		}
		logger.Info("media engine ready")
	}

	taskStorage := repo.NewTaskStorage()
	eng := engine.NewYtdlp(logger)

	downloadWorker := worker.NewDownloadWorker(eng, taskStorage, cfg.DownloadDir, logger)
	taskService := svc.NewTaskService(taskStorage, downloadWorker, cfg.MaxConcurrentTasks, logger)
	infoService := svc.NewInfoService(eng, logger)

	fileStorage := storage.NewFileStorage(cfg.DownloadDir)
	retentionManager := retention.NewManager(fileStorage, taskStorage, retention.Options{
		TTL:           cfg.RetentionTTL,
		Interval:      cfg.SweepInterval,
		TaskRetention: cfg.TaskRetention,
	}, logger)

	router := h.NewRouter(taskService, infoService, retentionManager, fileStorage, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPTimeout,
		ReadHeaderTimeout: cfg.HTTPTimeout,
		IdleTimeout:       cfg.HTTPTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return retentionManager.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		} else {
			logger.Info("server stopped gracefully")
		}

		return taskService.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("service stopped")
}
