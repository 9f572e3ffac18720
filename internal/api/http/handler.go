package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/validation"
)

// TaskServiceI defines the task supervisor operations used by the handlers.
type TaskServiceI interface {
	Submit(ctx context.Context, req domain.SubmitRequest) (string, error)
	RequestCancel(ctx context.Context, id string) error
	GetStatus(ctx context.Context, id string) (domain.TaskRecord, error)
}

// InfoServiceI defines the metadata lookup used by the handlers.
type InfoServiceI interface {
	Info(ctx context.Context, url string) (*domain.MediaInfo, error)
}

// TaskHandler handles HTTP requests for tasks and metadata lookups.
type TaskHandler struct {
	taskService TaskServiceI
	infoService InfoServiceI
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the provided services and logger.
func NewTaskHandler(taskService TaskServiceI, infoService InfoServiceI, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		infoService: infoService,
		validator:   validation.New(),
		logger:      logger,
	}
}

// Info handles POST /api/info.
func (h *TaskHandler) Info(w http.ResponseWriter, r *http.Request) {
	var req domain.InfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, "invalid URL")
		return
	}

	info, err := h.infoService.Info(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, errpkg.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Download handles POST /api/download. It returns as soon as the task is registered.
func (h *TaskHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.taskService.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errpkg.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, errpkg.ErrShuttingDown):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.logger.Error("failed to submit task", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"task_id": id,
	})
}

// Cancel handles POST /api/cancel.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	if err := h.taskService.RequestCancel(r.Context(), req.TaskID); err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.logger.Error("failed to cancel task", "task_id", req.TaskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Cancellation requested",
	})
}

// Status handles GET /api/status/{taskID}.
func (h *TaskHandler) Status(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, err := h.taskService.GetStatus(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		h.logger.Error("failed to get task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
