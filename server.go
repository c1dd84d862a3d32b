// server.go
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server serves the upload, display and calculate pages and the JSON API.
type Server struct {
	cfg    *Config
	store  *WorkbookStore
	eval   *Evaluator
	logger *zap.Logger
	router *chi.Mux
}

func NewServer(cfg *Config, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  NewWorkbookStore(cfg.MaxWorkbooks),
		eval:   NewEvaluator(cfg.Mode(), logger),
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.uploadHandler)
	s.router.Post("/display", s.displayHandler)
	s.router.Get("/sheets/{id}", s.sheetHandler)
	s.router.Post("/sheets/{id}/calculate", s.calculateHandler)

	s.router.Get("/health", healthHandler)
	s.router.Post("/api/validate", s.validateFileHandler)
	s.router.Post("/api/evaluate", s.evaluateHandler)
	s.router.Get("/api/sheets/{id}", s.sheetJSONHandler)
	s.router.Post("/api/sheets/{id}/evaluate", s.sheetEvaluateHandler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Run serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
