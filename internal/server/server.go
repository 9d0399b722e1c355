// Package server exposes the seat view service over HTTP.
//
// Routes:
//
//	GET  /healthz                   liveness probe
//	GET  /api/venues                venue IDs
//	GET  /api/venues/{id}           venue detail
//	POST /api/venues/{id}/pose      click -> camera pose (no render)
//	POST /api/venues/{id}/view      click -> rendered frame
//	GET  /api/cache/stats           cache counters
//	DELETE /api/cache               clear the in-memory cache
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
	"github.com/seatlens/seatlens/pkg/rendercache"
	"github.com/seatlens/seatlens/pkg/seatview"
)

// Server wraps the seat view service with an HTTP API.
type Server struct {
	service *seatview.Service
	cache   *rendercache.Cache
	logger  *log.Logger
	router  chi.Router
}

// New builds the router. cache may be nil when running mapping-only.
func New(service *seatview.Service, cache *rendercache.Cache, logger *log.Logger) *Server {
	s := &Server{
		service: service,
		cache:   cache,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/venues", s.handleVenueList)
		r.Get("/venues/{id}", s.handleVenueDetail)
		r.Post("/venues/{id}/pose", s.handlePose)
		r.Post("/venues/{id}/view", s.handleView)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests for up to 10 seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
			"request_id", r.Context().Value(requestIDKey))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// clickRequest is the body of pose and view requests.
type clickRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Quality string  `json:"quality,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVenueList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"venues": s.service.Venues()})
}

func (s *Server) handleVenueDetail(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.Venue(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       v.ID,
		"name":     v.Name,
		"type":     v.Type,
		"sections": v.SectionIDs(),
	})
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidClick, err, "decode click"))
		return
	}

	pose, res, err := s.service.Pose(chi.URLParam(r, "id"), geometry.Point{X: req.X, Y: req.Y})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pose":       pose,
		"rotation":   pose.Rotation(),
		"resolution": res,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidClick, err, "decode click"))
		return
	}
	quality, err := seatview.ParseQuality(req.Quality)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, info, err := s.service.View(r.Context(), chi.URLParam(r, "id"), geometry.Point{X: req.X, Y: req.Y}, quality)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Cache", cacheHeader(info.CacheHit))
	w.Header().Set("X-Section", info.Resolution.SectionID)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInternal, "no cache configured"))
		return
	}
	stats := s.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"evictions":   stats.Evictions,
		"expirations": stats.Expirations,
		"entries":     s.cache.Len(),
		"size_bytes":  s.cache.SizeBytes(),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInternal, "no cache configured"))
		return
	}
	s.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errs.GetCode(err) {
	case errs.ErrCodeVenueNotFound:
		status = http.StatusNotFound
	case errs.ErrCodeInvalidClick, errs.ErrCodeSectionResolution:
		status = http.StatusBadRequest
	case errs.ErrCodeRenderTimeout:
		status = http.StatusGatewayTimeout
	case errs.ErrCodeRenderTransient:
		status = http.StatusBadGateway
	case errs.ErrCodeRenderFatal:
		status = http.StatusBadGateway
	}
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful to send.
		status = 499
	}

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err,
			"request_id", r.Context().Value(requestIDKey))
	}
	writeJSON(w, status, map[string]string{
		"error": errs.UserMessage(err),
		"code":  string(errs.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
