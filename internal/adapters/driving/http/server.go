package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	exposeToken bool

	users   driving.UserProvider
	cookies *CookieQueue
	session *SessionMiddleware

	// Infrastructure
	metrics http.Handler
	cache   Pinger // token cache backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// AllowedOrigins enables CORS for the listed origins ("*" for any)
	AllowedOrigins []string

	// ExposeToken mounts GET /api/v1/auth/token, which hands the cached
	// identity service token to the session holder. Off unless a same-origin
	// client needs to call the identity service directly.
	ExposeToken bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// Deps holds what the server drives and reports on
type Deps struct {
	Users   driving.UserProvider
	Cookies *CookieQueue
	Metrics http.Handler // served at /metrics when set
	Cache   Pinger       // checked by /ready when set
	Logger  *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:  http.NewServeMux(),
		version: cfg.Version,
		logger:  logger,

		exposeToken: cfg.ExposeToken,
		users:   deps.Users,
		cookies: deps.Cookies,
		session: NewSessionMiddleware(deps.Users, deps.Cookies, logger),
		metrics: deps.Metrics,
		cache:   deps.Cache,
	}

	s.setupRoutes()

	// Outermost first: request id, recovery, logging, CORS, cookie queue
	var h http.Handler = s.router
	h = s.cookies.Handler(h)
	if len(cfg.AllowedOrigins) > 0 {
		h = NewCORSMiddleware(cfg.AllowedOrigins).Handler(h)
	}
	h = NewLoggingMiddleware(logger).Handler(h)
	h = NewRecoveryMiddleware(logger).Handler(h)
	h = NewRequestIDMiddleware().Handler(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics)
	}

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/login/email", s.handleEmailLogin)
	s.router.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	// Session endpoints
	s.router.Handle("GET /api/v1/me",
		s.session.Authenticate(http.HandlerFunc(s.handleGetMe)))
	if s.exposeToken {
		s.router.Handle("GET /api/v1/auth/token",
			s.session.Authenticate(http.HandlerFunc(s.handleGetToken)))
	}
	s.router.Handle("POST /api/v1/auth/validate",
		s.session.Authenticate(http.HandlerFunc(s.handleValidate)))
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
