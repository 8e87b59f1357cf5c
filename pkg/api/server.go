// Package api exposes a diagram store over HTTP.
//
// Every store operation has a route; reads return the store's read model
// as JSON. The API is the transport between the engine and an external
// canvas renderer, so mutations answer with the post-mutation
// [store.Snapshot] and the renderer can redraw from a single response.
//
// Errors are JSON objects carrying an [errors.Code]:
//
//	{"code": "REJECTED", "message": "connection rejected: self-loop or unknown node"}
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowlane/pkg/buildinfo"
	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/history"
	"github.com/matzehuels/flowlane/pkg/store"
)

// maxBodyBytes bounds request bodies, including whole documents.
const maxBodyBytes = 8 << 20

// Server serves one store.
type Server struct {
	store   *store.Store
	history *history.History
	logger  *log.Logger
	renders cache.Cache
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the undo and redo routes.
func WithHistory(h *history.History) Option {
	return func(s *Server) { s.history = h }
}

// WithRenderCache serves GET /api/render?format=svg through c.
func WithRenderCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.renders = c
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a server for st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{store: st, logger: log.Default(), renders: cache.NewNullCache()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Get().Version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.getSnapshot)
		r.Get("/guardrails", s.getGuardrails)
		r.Get("/schema", s.getSchema)
		r.Get("/render", s.getRender)

		r.Route("/document", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Put("/", s.putDocument)
			r.Post("/reset", s.resetDocument)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", s.addNode)
			r.Patch("/{id}", s.updateNode)
			r.Post("/{id}/reset", s.resetNode)
			r.Put("/{id}/position", s.moveNode)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", s.addEdge)
			r.Patch("/{id}", s.updateEdge)
			r.Post("/{id}/reset", s.resetEdge)
		})

		r.Route("/selection", func(r chi.Router) {
			r.Put("/", s.putSelection)
			r.Delete("/", s.deleteSelection)
			r.Post("/duplicate", s.duplicateSelection)
		})

		r.Route("/lanes", func(r chi.Router) {
			r.Post("/", s.addLane)
			r.Get("/bands", s.getBands)
			r.Put("/order", s.reorderLanes)
			r.Put("/orientation", s.setOrientation)
			r.Patch("/{id}", s.updateLane)
			r.Delete("/{id}", s.removeLane)
		})

		r.Patch("/ui", s.updateUI)
		r.Post("/undo", s.undo)
		r.Post("/redo", s.redo)
	})

	return r
}

// requestLogger logs one line per request at info level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
