// Package web serves the upload form and the JSON summarization API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ryosukesatoh/doc-digest/internal/metrics"
	"github.com/ryosukesatoh/doc-digest/internal/runner"
)

//go:embed templates/*.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Pipeline is the part of the runner the handlers depend on.
type Pipeline interface {
	Run(ctx context.Context, filename string, data []byte, topK int) (*runner.Result, error)
}

// Server is the HTTP front end.
type Server struct {
	addr      string
	server    *http.Server
	pipeline  Pipeline
	defaultK  int
	maxUpload int64
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func New(addr string, p Pipeline, defaultK int, maxUpload int64, m *metrics.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		addr:      addr,
		pipeline:  p,
		defaultK:  defaultK,
		maxUpload: maxUpload,
		metrics:   m,
		log:       log,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleUpload)
	mux.HandleFunc("POST /api/summaries", s.handleAPISummarize)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return requestIDMiddleware(s.metricsMiddleware(mux))
}

// Start begins serving HTTP in the background. Call Shutdown to stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", s.addr, err)
	}
	go func() {
		s.log.Info("Web server is listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Web server failed", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
