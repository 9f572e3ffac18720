package http

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/validation"
)

// RetentionI defines the retained files operations used by the handlers.
type RetentionI interface {
	History() ([]domain.HistoryItem, error)
	Touch(name string) error
	Delete(name string) error
}

// FileOpener opens a retained file for streaming.
type FileOpener interface {
	Open(name string) (*os.File, os.FileInfo, error)
}

// FileHandler serves, lists and deletes retained files.
type FileHandler struct {
	retention RetentionI
	files     FileOpener
	logger    *slog.Logger
}

func NewFileHandler(retention RetentionI, files FileOpener, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		retention: retention,
		files:     files,
		logger:    logger,
	}
}

// History handles GET /api/history.
func (h *FileHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.retention.History()
	if err != nil {
		h.logger.Error("failed to list files", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Delete handles DELETE /api/files/{name}. Deleting a missing entry succeeds.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	if err := h.retention.Delete(name); err != nil {
		if errors.Is(err, errpkg.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, "invalid file name")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Deleted",
	})
}

// View handles GET /view/{name}: the file is streamed for inline playback.
func (h *FileHandler) View(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "inline")
}

// Download handles GET /downloads/{name}: the file is streamed as an attachment.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "attachment")
}

// serve extends the retention of the entry before streaming it.
func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, disposition string) {
	name, err := nameParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	_ = h.retention.Touch(name)

	f, info, err := h.files.Open(name)
	if err != nil {
		if errors.Is(err, errpkg.ErrFileNotFound) || errors.Is(err, errpkg.ErrInvalidName) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("failed to open file", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func nameParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return "", err
	}
	if err := validation.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
