// Package server implements the visual helper: a local HTTP service that
// captures the screen or the design tool window, receives exports from the
// design tool and keeps a history of both.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/figaid/internal/analysis"
	"github.com/jmylchreest/figaid/internal/capture"
	"github.com/jmylchreest/figaid/internal/history"
	imageutil "github.com/jmylchreest/figaid/internal/image"
	"github.com/jmylchreest/figaid/internal/placement"
	"github.com/jmylchreest/figaid/internal/security"
)

//go:embed dashboard.html
var dashboard []byte

const (
	// MaxBodySize bounds JSON request bodies.
	MaxBodySize = 50 * 1024 * 1024

	// CapturesPath is the URL prefix under which captures are served.
	CapturesPath = "/captures/"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 5 * time.Second

	// DefaultMonitorInterval is the /monitor capture period.
	DefaultMonitorInterval = 5 * time.Second
)

// Capturer takes screenshots.
type Capturer interface {
	Capture(ctx context.Context, target capture.Target) (*capture.Result, error)
}

// Analyzer describes a captured image.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*analysis.Result, error)
}

// Options configures a Server.
type Options struct {
	Addr        string
	CapturesDir string

	Capturer Capturer
	Analyzer Analyzer
	History  *history.Store
	Finder   *placement.Finder
	Loader   imageutil.Loader

	// HistoryLimit is how many entries /history returns.
	HistoryLimit int

	// MonitorInterval is the /monitor capture period.
	MonitorInterval time.Duration

	Now    func() time.Time
	Logger hclog.Logger
}

// Server is the visual helper HTTP service.
type Server struct {
	opts    Options
	router  chi.Router
	logger  hclog.Logger
	started time.Time
}

// New creates a Server. Capturer and CapturesDir are required; the other
// collaborators fall back to their package defaults.
func New(opts Options) (*Server, error) {
	if opts.Capturer == nil {
		return nil, fmt.Errorf("capturer is required")
	}
	if opts.CapturesDir == "" {
		return nil, fmt.Errorf("captures directory is required")
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.New(analysis.Options{Logger: opts.Logger.Named("analysis")})
	}
	if opts.History == nil {
		opts.History = history.NewStore(0)
	}
	if opts.Finder == nil {
		popts := placement.DefaultOptions()
		popts.Logger = opts.Logger.Named("placement")
		opts.Finder = placement.NewFinder(popts)
	}
	if opts.Loader == nil {
		opts.Loader = imageutil.NewSmartLoader()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = history.DefaultRecent
	}
	if opts.MonitorInterval <= 0 {
		opts.MonitorInterval = DefaultMonitorInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:    opts,
		logger:  opts.Logger,
		started: opts.Now(),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.handleDashboard)
	r.Handle(CapturesPath+"*", http.StripPrefix(CapturesPath, http.FileServer(http.Dir(s.opts.CapturesDir))))

	r.Post("/capture", s.handleCapture)
	r.Post("/visual-feedback", s.handleVisualFeedback)
	r.Get("/history", s.handleHistory)
	r.Get("/history/archive", s.handleArchive)
	r.Get("/history/{id}", s.handleHistoryEntry)
	r.Get("/monitor", s.handleMonitor)
	r.Post("/compare", s.handleCompare)
	r.Post("/place", s.handlePlace)
	r.Get("/health", s.handleHealth)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully. Request contexts derive from ctx so open monitor streams end
// with it.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("visual helper listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down visual helper")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger hclog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "duration", time.Since(start))
		})
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}

// decodeJSON reads a bounded JSON body into v and reports the status to use
// on failure. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) (int, error) {
	dec := json.NewDecoder(security.NewLimitedReader(r.Body, MaxBodySize))
	if err := dec.Decode(v); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return 0, nil
		case errors.Is(err, security.ErrSizeLimit):
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", MaxBodySize)
		default:
			return http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
		}
	}
	return 0, nil
}

func captureURL(filename string) string {
	return CapturesPath + filename
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(dashboard)
}
