package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/memodesk/memodesk/internal/config"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/memo"
	"github.com/memodesk/memodesk/internal/telemetry"
)

// Server is the memodesk HTTP API server.
type Server struct {
	cfg      *config.Config
	svc      *memo.Service
	eventBus *event.Bus
	broker   *Broker
	logger   *telemetry.Logger
}

// New creates a new server instance.
func New(cfg *config.Config, svc *memo.Service, eventBus *event.Bus, logger *telemetry.Logger) *Server {
	broker := NewBroker(logger)
	// Memo events fan out to SSE clients through the bus.
	eventBus.Register(broker)

	return &Server{
		cfg:      cfg,
		svc:      svc,
		eventBus: eventBus,
		broker:   broker,
		logger:   logger,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.traceMiddleware(s.setupRoutes()))
}

// Start listens on addr and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. Request contexts derive from a
// base context that is cancelled before shutdown, so open event streams end
// instead of holding Shutdown until its timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting memodesk API", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server...")
		s.eventBus.Unregister(s.broker.Name())
		cancelBase()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Memos
	mux.HandleFunc("GET /api/memos", s.handleListMemos)
	mux.HandleFunc("POST /api/memos", s.handleCreateMemo)
	mux.HandleFunc("GET /api/memos/search", s.handleSearchMemos)
	mux.HandleFunc("GET /api/memos/{id}", s.handleGetMemo)
	mux.HandleFunc("PUT /api/memos/{id}", s.handleUpdateMemo)
	mux.HandleFunc("DELETE /api/memos/{id}", s.handleDeleteMemo)

	// Store
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	// SSE events
	mux.HandleFunc("GET /api/events", s.handleSSEEvents)
	mux.HandleFunc("GET /api/events/{memoID}", s.handleSSEEventsFiltered)

	return mux
}

// traceMiddleware tags each request with a TraceContext and echoes its id.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := telemetry.NewTraceContext("http").WithOperation(r.Method + " " + r.URL.Path)
		w.Header().Set("X-Request-ID", tc.RequestID)

		ctx := telemetry.ContextWithTrace(r.Context(), tc)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.WithTrace(ctx).Debug("Request served", "duration_ms", time.Since(start).Milliseconds())
	})
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
