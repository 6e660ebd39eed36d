package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sjsage522/filmwaiver/internal/store"
	"sjsage522/filmwaiver/logger"
)

// Snapshots is the read side of the record store
type Snapshots interface {
	Get(ctx context.Context) (store.Result, error)
	Age() (time.Duration, bool)
	Len() int
}

// NewRouter builds the HTTP router serving discount records from snapshots
func NewRouter(snapshots Snapshots, pageSize int) http.Handler {
	log := logger.ForServer()
	h := NewHandler(snapshots, pageSize)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer(log))
	r.Use(cors)

	r.Get("/health", h.Health)
	r.Get("/waivers", h.List)
	r.Get("/search", h.Search)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Route("/discounts", func(r chi.Router) {
			r.Get("/realtime", h.List)
			r.Get("/search", h.Search)
		})
		r.Post("/v1/lookup", h.Lookup)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
