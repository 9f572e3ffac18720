package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new HTTP router with configured routes, middleware, and handlers.
// It sets up the task API, file serving, health check, and Prometheus metrics endpoint.
func NewRouter(tasks TaskServiceI, info InfoServiceI, retention RetentionI, files FileOpener, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	taskHandler := NewTaskHandler(tasks, info, logger)
	fileHandler := NewFileHandler(retention, files, logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/info", taskHandler.Info)
		r.Post("/download", taskHandler.Download)
		r.Post("/cancel", taskHandler.Cancel)
		r.Get("/status/{taskID}", taskHandler.Status)
		r.Get("/history", fileHandler.History)
		r.Delete("/files/{name}", fileHandler.Delete)
	})

	r.Get("/view/{name}", fileHandler.View)
	r.Get("/downloads/{name}", fileHandler.Download)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
