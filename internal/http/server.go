// Package http exposes the spend ledger over a JSON API: entries with their
// undo windows, history and summary views, payment methods, the day start
// setting and the widget payload.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mochi/internal/log"
	"mochi/internal/services"
	"mochi/internal/widget"
)

// Pinger reports backend reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	svc         *services.LedgerService
	rateLimiter *rateLimiter

	weekStart  time.Weekday
	windowDays int
	appearance widget.Appearance
	pinger     Pinger

	// Summary responses are cached briefly; every mutation purges.
	summaryCache *lruCache[summaryResponse]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options configures a Server.
type Options struct {
	Addr       string
	Service    *services.LedgerService
	WeekStart  time.Weekday
	WindowDays int
	Appearance widget.Appearance
	// Pinger is optional; without one /readyz only checks the process.
	Pinger Pinger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: log.Middleware(log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP))(mux),
		},
		svc:              opts.Service,
		rateLimiter:      newRateLimiter(),
		weekStart:        opts.WeekStart,
		windowDays:       opts.WindowDays,
		appearance:       opts.Appearance,
		pinger:           opts.Pinger,
		summaryCache:     newLRUCache[summaryResponse](16, 30*time.Second),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /entries", s.mutation(s.handleCreateEntry))
	mux.HandleFunc("GET /entries/{id}", s.withMiddleware(s.handleGetEntry))
	mux.HandleFunc("DELETE /entries/{id}", s.mutation(s.handleDeleteEntry))
	mux.HandleFunc("POST /entries/{id}/undo", s.mutation(s.handleUndoEntry))
	mux.HandleFunc("POST /entries/{id}/commit", s.mutation(s.handleCommitEntry))
	mux.HandleFunc("PATCH /entries/{id}/note", s.mutation(s.handleUpdateNote))
	mux.HandleFunc("POST /entries/bulk-delete", s.mutation(s.handleBulkDelete))
	mux.HandleFunc("POST /entries/bulk-delete/undo", s.mutation(s.handleBulkUndo))
	mux.HandleFunc("POST /entries/undo-last-add", s.mutation(s.handleUndoLastAdd))

	mux.HandleFunc("GET /history", s.withMiddleware(s.handleHistory))
	mux.HandleFunc("GET /summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("POST /summaries/{type}/trigger", s.withMiddleware(s.handleTriggerSummary))
	mux.HandleFunc("GET /widget", s.withMiddleware(s.handleWidget))

	mux.HandleFunc("GET /methods", s.withMiddleware(s.handleListMethods))
	mux.HandleFunc("POST /methods", s.mutation(s.handleCreateMethod))
	mux.HandleFunc("PUT /methods/{id}", s.mutation(s.handleUpdateMethod))
	mux.HandleFunc("DELETE /methods/{id}", s.mutation(s.handleDeleteMethod))
	mux.HandleFunc("GET /methods/selected", s.withMiddleware(s.handleGetSelectedMethod))
	mux.HandleFunc("PUT /methods/selected", s.mutation(s.handleSelectMethod))

	mux.HandleFunc("GET /settings/day-start", s.withMiddleware(s.handleGetDayStart))
	mux.HandleFunc("PUT /settings/day-start", s.mutation(s.handleSetDayStart))

	return s
}

// withMiddleware adds security headers, a request id and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.wrap(next, false)
}

// mutation additionally rate-limits per client IP and purges the summary
// cache once the handler ran.
func (s *Server) mutation(next http.HandlerFunc) http.HandlerFunc {
	return s.wrap(func(w http.ResponseWriter, r *http.Request) {
		next(w, r)
		s.summaryCache.Purge()
	}, true)
}

func (s *Server) wrap(next http.HandlerFunc, rateLimited bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.DebugContext(ctx, "Request started",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if rateLimited && !s.rateLimiter.allow(ip) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, ip)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Summary cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "backend not reachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
