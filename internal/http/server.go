// Package http exposes the tracker as a JSON API. All data routes require an
// owner identity; responses share the success/message/data envelope.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"spendwise/internal/identity"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

type Server struct {
	http.Server
	transactions *services.TransactionService
	categories   *services.CategoryService
	reports      *services.ReportService
	resolver     identity.Resolver
	limiter      *mutationLimiter
	httpLog      *log.StructuredLogger
	metrics      securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, transactions *services.TransactionService, categories *services.CategoryService, reports *services.ReportService, resolver identity.Resolver) *Server {
	mux := http.NewServeMux()
	logger := log.New(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(logger)(mux),
		},
		transactions: transactions,
		categories:   categories,
		reports:      reports,
		resolver:     resolver,
		limiter:      newMutationLimiter(),
		httpLog:      log.NewStructuredLogger(logger),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.secured(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.secured(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions", s.secured(s.handleResetTransactions))
	mux.HandleFunc("GET /api/transactions/stats/summary", s.secured(s.handleSummary))
	mux.HandleFunc("GET /api/transactions/{id}", s.secured(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.secured(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.secured(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.secured(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.secured(s.handleCreateCategory))
	mux.HandleFunc("POST /api/categories/seed", s.secured(s.handleSeedCategories))
	mux.HandleFunc("GET /api/categories/stats/usage", s.secured(s.handleCategoryUsage))
	mux.HandleFunc("GET /api/categories/{id}", s.secured(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.secured(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.secured(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/reports/monthly", s.secured(s.handleMonthlySeries))
	mux.HandleFunc("GET /api/reports/breakdown", s.secured(s.handleBreakdown))
	mux.HandleFunc("GET /api/reports/progress", s.secured(s.handleProgress))

	return s
}

// ownerHandler is a data-route handler with the resolved owner identity.
type ownerHandler func(w http.ResponseWriter, r *http.Request, ownerID string)

// secured adds security headers, rate limiting, request logging, and owner
// resolution to a data route.
func (s *Server) secured(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, log.FromContext(ctx).With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.httpLog.LogHTTPStart(ctx, r, clientIP)

		// Mutations are rate limited per client.
		if r.Method != http.MethodGet && !s.limiter.allow(clientIP) {
			atomic.AddInt64(&s.metrics.rateLimitHits, 1)
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later", nil)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		ownerID, err := s.resolver.Resolve(r)
		if err != nil {
			writeError(rw, r, err)
		} else {
			next(rw, r, ownerID)
		}

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
