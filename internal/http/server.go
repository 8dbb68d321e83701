// Package http is the sidecar HTTP surface a gateway uses to reach the
// memory plugin: tool invocation, hook dispatch, tool listing and liveness.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/hooks"
	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

const maxBodyBytes = 1 << 20

// Backend is what the sidecar serves. plugin.Host implements it; Registry
// is looked up per request so a config reload takes effect immediately.
type Backend interface {
	Registry() *tools.Registry
	Dispatch(ctx context.Context, event string, payload interface{}) (*hooks.Outcome, error)
}

// Server is the sidecar HTTP server.
type Server struct {
	backend     Backend
	cfg         config.ServerConfig
	rateLimiter *RateLimiter
	router      chi.Router
}

func NewServer(backend Backend, cfg config.ServerConfig) *Server {
	s := &Server{
		backend:     backend,
		cfg:         cfg,
		rateLimiter: NewRateLimiter(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(requireToken(s.cfg.Token))
		if s.rateLimiter.Enabled() {
			r.Use(s.rateLimiter.Middleware)
		}
		r.Use(chimiddleware.RequestSize(maxBodyBytes))
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Get("/v1/tools", s.handleToolsList)
		r.Post("/v1/tools/invoke", s.handleToolsInvoke)
		r.Post("/v1/hooks/{event}", s.handleHook)
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// handleHealth reports 503 until a plugin has registered its tools.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.backend.Registry().Count() == 0 {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrUnavailable, "no memory plugin loaded")
		return
	}
	writeJSON(w, http.StatusOK, protocol.HealthResponse{Status: "ok", Protocol: protocol.ProtocolVersion})
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.rateLimiter.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("sidecar listening", "addr", ln.Addr().String(), "auth", s.cfg.Token != "")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("sidecar shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// recoverer turns a handler panic into a 500 with the INTERNAL error code.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("sidecar handler panic",
				"path", r.URL.Path,
				"panic", rec,
				"request_id", chimiddleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
