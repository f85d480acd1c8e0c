// ABOUTME: Local HTTP server exposing the backend operations to the desktop shell
// ABOUTME: Owns route registration, request logging, and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/waymark-app/waymark/internal/provision"
	"github.com/waymark-app/waymark/internal/store"
	"github.com/waymark-app/waymark/internal/workflowy"
)

// Server is the local API surface the desktop shell calls. It binds to a
// loopback address; there is no auth layer because the boundary never
// leaves the machine.
type Server struct {
	store      *store.BookmarkStore
	workflowy  *workflowy.Client
	dataDir    string
	logger     *slog.Logger
	httpServer *http.Server
}

// Config collects the dependencies for a Server.
type Config struct {
	Addr      string
	Store     *store.BookmarkStore
	Workflowy *workflowy.Client
	// DataDir is the per-user application data directory; the server path
	// endpoint derives from it.
	DataDir string
	Logger  *slog.Logger
}

// New creates a Server. No listener is opened until Run.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:     cfg.Store,
		workflowy: cfg.Workflowy,
		dataDir:   cfg.DataDir,
		logger:    logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// RegisterRoutes attaches all API routes to mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/bookmarks", s.handleBookmarks)
	mux.HandleFunc("/api/bookmarks/", s.handleBookmarkRoutes)
	mux.HandleFunc("/api/validate-key", s.handleValidateKey)
	mux.HandleFunc("/api/server-path", s.handleServerPath)
}

// ServerPath returns the MCP helper script location under the data dir.
// Pure derivation; the file may not exist.
func (s *Server) ServerPath() string {
	return provision.ServerPath(s.dataDir)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

// statusWriter captures the response status for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// loggerKey carries the request-scoped logger through the request context.
type loggerKey struct{}

// logRequests assigns each request an id and a logger carrying it. The same
// id appears on the completion log and on anything handlers log, so a
// handler error can be matched to its request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := s.logger.With("request_id", uuid.NewString())
		r = r.WithContext(context.WithValue(r.Context(), loggerKey{}, reqLogger))
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		reqLogger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

// requestLogger returns the request-scoped logger, falling back to the
// server logger when the middleware did not run.
func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	if l, ok := r.Context().Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return s.logger
}
