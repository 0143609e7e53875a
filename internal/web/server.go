// Package web exposes the stock matching service as a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/stockmatch/internal/config"
	"github.com/JonMunkholm/stockmatch/internal/core"
	"github.com/JonMunkholm/stockmatch/internal/metrics"
	mw "github.com/JonMunkholm/stockmatch/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 10 << 20

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the stock matching API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	db      Pinger
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer builds the router. db may be nil, in which case /healthz does
// not check the database.
func NewServer(service *core.Service, cfg *config.Config, db Pinger) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		db:      db,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Trace)
	s.router.Use(withClient)
	s.router.Use(mw.Logger)
	s.router.Use(mw.Metrics)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.cfg.Metrics.Path != "" {
		s.router.Handle(s.cfg.Metrics.Path, metrics.Handler())
	}

	// Matching
	s.router.Post("/match-products", s.handleMatchProducts)
	s.router.Post("/save-mapping", s.handleSaveMapping)

	// Stock
	s.router.Post("/add-stock", s.handleAddStock)
	s.router.Get("/invoices", s.handleListInvoices)
	s.router.Get("/products", s.handleListProducts)

	// Document extraction
	s.router.Post("/extract-invoice", s.handleExtractInvoice)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found", Message: "not found", Code: "HTTP404"})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Message: "method not allowed", Code: "HTTP405"})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses. The API serves
// no HTML, so the CSP forbids everything.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
