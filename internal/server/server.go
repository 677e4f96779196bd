// Package server exposes the network designer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Vladislav-Dmitriev/well-net/internal/config"
	"github.com/Vladislav-Dmitriev/well-net/internal/metrics"
	"github.com/Vladislav-Dmitriev/well-net/internal/store"
)

// Server serves design runs for an optional project directory.
type Server struct {
	projectPath string
	cfg         config.Config
	log         *zap.Logger
	metrics     *metrics.Metrics
	store       *store.Store
	router      chi.Router
}

// Options wires the server's collaborators. Store may be nil, in which
// case runs are not persisted and the run endpoints answer 503.
type Options struct {
	ProjectPath string
	Config      config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Store       *store.Store
}

// New creates a server.
func New(opts Options) *Server {
	s := &Server{
		projectPath: opts.ProjectPath,
		cfg:         opts.Config,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		store:       opts.Store,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New(false)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/project", s.handleProject)
		r.Get("/validation", s.handleValidation)
		r.Get("/scene", s.handleScene)
		r.Post("/design", s.handleDesign)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
		r.Get("/wells/{name}/history", s.handleWellHistory)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.log.Info("wellnet server starting",
		zap.String("addr", "http://localhost"+addr),
		zap.String("project", s.projectPath),
		zap.Bool("store", s.store != nil))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.log.Info("wellnet server shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// observe logs each request and feeds the HTTP metrics, labelled by route
// pattern rather than raw path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.ObserveRequest(route, status, d)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", d),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
