package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Route is a single method and path served by a [Handler].
//
// Middleware listed on the route runs inside the router's global stack.
type Route struct {
	Method     string
	Path       string
	Handler    http.HandlerFunc
	Middleware []Middleware
}

// Pattern returns the [http.ServeMux] pattern for the route, e.g. "GET /exercises/{id}".
func (r Route) Pattern() string {
	if r.Method == "" {
		return r.Path
	}
	return r.Method + " " + r.Path
}

// Handler groups related routes so a resource can register all of its endpoints at once.
type Handler interface {
	Routes() []Route // Routes returns the endpoints this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options carries the server's dependencies.
type Options struct {
	Config   *shared.Config
	Services *services.Services
	Store    *assets.FileStore
	DB       Pinger
	Logger   *log.Logger
}

// Server is the JSON API over the FretMastery services.
type Server struct {
	addr   string
	router *BasicRouter
	logger *log.Logger
}

// New builds the router with every handler and the global middleware stack.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	cfg := opts.Config
	api := &API{svc: opts.Services, store: opts.Store, db: opts.DB, logger: opts.Logger}

	router := NewBasicRouter()
	router.Use(
		RequestID(),
		Recover(opts.Logger),
		AccessLog(opts.Logger),
		Authenticate(opts.Services.Tokens),
	)

	limiter := NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst)
	router.Handler(&AuthHandler{api: api, limit: limiter.Middleware()})
	router.Handler(&ExerciseHandler{api: api})
	router.Handler(&SessionHandler{api: api})
	router.Handler(&FretboardHandler{api: api})

	return &Server{addr: cfg.Server.Addr(), router: router, logger: opts.Logger}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.addr }

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(listener)
	}()
	s.logger.Info("server listening", "addr", listener.Addr().String())

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
