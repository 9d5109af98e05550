// Package server implements the GraphyPad HTTP API.
//
// The server keeps uploaded datasets in an upload.Store and renders charts
// through a shared pipeline.Runner, so the browser front end and the CLI
// produce identical images and code for the same input.
//
// # Routes
//
//	GET  /                                    embedded front end
//	GET  /healthz                             liveness probe
//	GET  /sample.csv                          sample data
//	POST /upload                              multipart "file" → dataset id
//	POST /generate                            chart request → image and code
//	POST /calculate                           derived column → updated dataset
//	GET  /files/{id}/preview                  paginated table
//	GET  /files/{id}/columns/{column}/sparkline.png
//
// Errors are JSON objects {error_kind, code, message}.
package server

import (
	"context"
	"embed"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphypad/pkg/pipeline"
	"github.com/matzehuels/graphypad/pkg/upload"
)

//go:embed static/index.html
var static embed.FS

const (
	// DefaultRequestTimeout bounds one request, rendering included.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultMaxUploadBytes bounds request bodies.
	DefaultMaxUploadBytes = pipeline.MaxUploadSize

	shutdownTimeout = 10 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithRequestTimeout sets the per-request timeout. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithMaxUploadBytes sets the request body limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	uploads *upload.Store
	logger  *log.Logger
	router  chi.Router

	timeout time.Duration
	maxBody int64
}

// New creates a server around runner and uploads.
func New(runner *pipeline.Runner, uploads *upload.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		uploads: uploads,
		logger:  logger,
		timeout: DefaultRequestTimeout,
		maxBody: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}
	r.Use(limitBody(s.maxBody))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/sample.csv", s.handleSample)
	r.Post("/upload", s.handleUpload)
	r.Post("/generate", s.handleGenerate)
	r.Post("/calculate", s.handleCalculate)
	r.Route("/files/{id}", func(r chi.Router) {
		r.Get("/preview", s.handlePreview)
		r.Get("/columns/{column}/sparkline.png", s.handleSparkline)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, errMethod(r.Method))
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
