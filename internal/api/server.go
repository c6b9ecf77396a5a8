// Package api exposes the HTTP interface of the inventory service. Notable
// routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/inventories/latest for the newest inventory snapshot.
//   - GET /v1/inventories/latest/sitemap.xml for the rendered sitemap.
//   - GET /v1/changes/latest for the diff between the two newest snapshots.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/inventory"
	"github.com/siteatlas/siteatlas/internal/report"
	"github.com/siteatlas/siteatlas/internal/storage"
)

const storeTimeout = 3 * time.Second

// Server wires HTTP handlers to the inventory store.
type Server struct {
	router chi.Router
	store  storage.InventoryStore
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store storage.InventoryStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/inventories", func(r chi.Router) {
			r.Get("/latest", s.latestInventory)
			r.Get("/latest/sitemap.xml", s.latestSitemap)
		})
		r.Get("/changes/latest", s.latestChanges)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if _, err := s.store.Latest(ctx); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusServiceUnavailable, "inventory store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) latestInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	inv, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "no inventory yet")
			return
		}
		s.logger.Error("load latest inventory", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"inventory": inv})
}

func (s *Server) latestSitemap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	inv, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "no inventory yet")
			return
		}
		s.logger.Error("load latest inventory", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}
	data, err := report.Sitemap(inv)
	if err != nil {
		s.logger.Error("render sitemap", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to render sitemap")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write sitemap response", zap.Error(err))
	}
}

func (s *Server) latestChanges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	current, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "no inventory yet")
			return
		}
		s.logger.Error("load latest inventory", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}
	previous, err := s.store.Previous(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("load previous inventory", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"changes": inventory.Diff(previous, current)})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
