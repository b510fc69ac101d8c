// Package api exposes the layout engine over HTTP for a browser rendering
// layer: topology snapshots, gestures and selection come in as events, and
// the positioned graph state goes out as JSON.
//
// The engine is single-threaded by contract, so the server serializes all
// engine access behind one mutex; each request is one complete state
// transition.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/narayan-iyengar/scope/pkg/engine"
	"github.com/narayan-iyengar/scope/pkg/session"
)

// Server wires the engine and session store into an HTTP handler.
type Server struct {
	mu         sync.Mutex
	engine     *engine.Engine
	sessions   session.Store
	sessionTTL time.Duration
	logger     *log.Logger
}

// NewServer creates a server around an engine. A nil session store disables
// the session endpoints with 404s; a nil logger means log.Default().
func NewServer(eng *engine.Engine, sessions session.Store, sessionTTL time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &Server{
		engine:     eng,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGetGraph)
		r.Post("/topology", s.handlePostTopology)
		r.Post("/gesture", s.handlePostGesture)
		r.Post("/selection", s.handlePostSelection)
		r.Post("/topology/switch", s.handleSwitchTopology)

		r.Get("/export/dot", s.handleExportDOT)
		r.Get("/export/svg", s.handleExportSVG)

		if s.sessions != nil {
			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Post("/sessions/{id}/restore", s.handleRestoreSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
		}
	})

	return r
}

// logRequests logs method, path, status and duration per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
