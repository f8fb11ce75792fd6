// Package server exposes the scheduler service over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/scheduler"
)

// Server is the iqrah HTTP API server.
type Server struct {
	sched   *scheduler.Scheduler
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server over a scheduler service.
func New(sched *scheduler.Scheduler, version string) *Server {
	s := &Server{
		sched:   sched,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/users/{userID}/goals/{goalID}/session", s.handleNextSession)
		r.Get("/users/{userID}/goals/{goalID}/stats", s.handleStats)
		r.Post("/users/{userID}/reviews", s.handleSubmitReview)
		r.Get("/users/{userID}/nodes/{uid}/memory", s.handleMemoryProbe)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}
