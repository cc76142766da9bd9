// Package server serves the status of a running benchmark over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/copyleftdev/hopbench/internal/errors"
	"github.com/copyleftdev/hopbench/internal/logging"
	"github.com/copyleftdev/hopbench/internal/metrics"
	"github.com/copyleftdev/hopbench/internal/orchestrator"
)

// Store keeps the latest status of every job. It is the orchestrator's
// status sink and is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]orchestrator.JobStatus
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]orchestrator.JobStatus)}
}

// Publish implements orchestrator.StatusSink.
func (s *Store) Publish(status orchestrator.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[status.Key] = status
}

// List returns every job status ordered by key.
func (s *Store) List() []orchestrator.JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orchestrator.JobStatus, 0, len(s.jobs))
	for _, st := range s.jobs {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Get returns the status of the job with key.
func (s *Store) Get(key string) (orchestrator.JobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.jobs[key]
	return st, ok
}

// Server exposes the store, health and metrics endpoints.
type Server struct {
	logger  *logging.Logger
	store   *Store
	metrics *metrics.Metrics
}

// NewServer creates a status server over store. m may be nil, in which case
// /metrics is not served.
func NewServer(logger *logging.Logger, store *Store, m *metrics.Metrics) *Server {
	return &Server{
		logger:  logger,
		store:   store,
		metrics: m,
	}
}

// Router returns the handler with the request middleware stack installed.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(errors.RecoveryMiddleware(s.logger))
	r.Use(errors.ErrorHandler(s.logger))
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the endpoints on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/jobs", s.handleJobs)
		// Job keys are "problem/optimizer/benchmark" and may hold further
		// slashes, e.g. the "n/a" benchmark.
		r.Get("/jobs/*", s.handleJob)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).Debug("health check")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleJobs handles GET /api/v1/jobs, optionally filtered by ?state=.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.store.List()
	if state := r.URL.Query().Get("state"); state != "" {
		filtered := jobs[:0]
		for _, j := range jobs {
			if string(j.State) == state {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}
	s.respond(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleJob handles GET /api/v1/jobs/{key}.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		s.respondWithError(w, http.StatusBadRequest, "missing job key")
		return
	}

	st, ok := s.store.Get(key)
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "job not found: "+key)
		return
	}
	s.respond(w, http.StatusOK, st)
}

func (s *Server) respond(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

// respondWithError sends a JSON error body.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]interface{}{
		"error": message,
	})
}
