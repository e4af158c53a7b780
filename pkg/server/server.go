// Package server exposes the manifest pipeline and operation registry over
// HTTP. Routing is chi; request logging goes through charmbracelet/log.
//
// The server is a thin layer: every behavior lives in pkg/store and pkg/ops,
// and handlers only translate between HTTP and those services. Error codes
// map to status codes in writeError, so clients can branch on the code field
// without parsing message text.
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/packhub/packhub/pkg/ops"
	"github.com/packhub/packhub/pkg/store"
)

// Server wires the manifest store and operation registry into an HTTP API.
type Server struct {
	store    *store.Store
	registry *ops.Registry
	logger   *log.Logger
	syncer   *Syncer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server on top of the given store and registry.
func New(st *store.Store, registry *ops.Registry, opts ...Option) *Server {
	s := &Server{
		store:    st,
		registry: registry,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.syncer = NewSyncer(st, registry, s.logger)
	return s
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/repos/{owner}/{name}", func(r chi.Router) {
			r.Get("/manifest", s.handleManifest)
			r.Get("/graph", s.handleGraph)
			r.Get("/hierarchy", s.handleHierarchy)
			r.Post("/sync", s.handleSync)
		})
		r.Get("/operations", s.handleListOperations)
		r.Get("/operations/{id}", s.handleGetOperation)
	})

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// logRequests emits one structured line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
