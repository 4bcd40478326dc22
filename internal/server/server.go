// Package server is the composition root: it opens the store, builds the
// services and handlers, mounts the routes and runs the HTTP server with
// graceful shutdown.
//
// Dependency flow:
//
//	sqlite.DB (repositories) -> UserService / HikeService / ChatService -> handlers
//	assistant.Assistant      -> ChatService
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sakif/hike-planner/internal/assistant"
	"github.com/sakif/hike-planner/internal/handler"
	"github.com/sakif/hike-planner/internal/middleware"
	sqliteRepo "github.com/sakif/hike-planner/internal/repository/sqlite"
	"github.com/sakif/hike-planner/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port            int
	DBPath          string
	CORSOrigins     []string
	ChatRateLimit   int // per client IP per minute; 0 disables
	ShutdownTimeout time.Duration
}

// Server owns the router and the database connection, which it closes on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every route. ai answers chat messages.
func New(cfg Config, logger *slog.Logger, ai assistant.Assistant) (*Server, error) {
	if ai == nil {
		return nil, errors.New("server: assistant is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(ai)

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// GET    /                          -> status banner
// GET    /healthz                   -> store ping
// POST   /api/users/sync            -> create-or-return profile
// GET    /api/users/{clerk_id}      -> profile (default if unknown)
// PUT    /api/users/{clerk_id}      -> partial profile update
// POST   /api/hikes                 -> log a hike
// GET    /api/hikes/user/{user_id}  -> a user's hikes
// GET    /api/hikes/{id}            -> one hike
// DELETE /api/hikes/{id}            -> delete a hike
// POST   /api/chat                  -> ask the assistant (rate limited)
// GET    /api/chat/history          -> recent exchanges
//
// Middleware runs in the order added.
func (s *Server) setupRoutes(ai assistant.Assistant) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	userHandler := handler.NewUserHandler(service.NewUserService(s.db, s.logger), s.logger)
	hikeHandler := handler.NewHikeHandler(service.NewHikeService(s.db, s.logger), s.logger)
	chatHandler := handler.NewChatHandler(service.NewChatService(s.db, ai, s.logger), s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Get("/", healthHandler.HandleRoot)
	s.router.Get("/healthz", healthHandler.HandleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/sync", userHandler.HandleSync)
			r.Get("/id/{id}", userHandler.HandleGetByID)
			r.Get("/{clerk_id}", userHandler.HandleGet)
			r.Put("/{clerk_id}", userHandler.HandleUpdate)
		})

		r.Route("/hikes", func(r chi.Router) {
			r.Post("/", hikeHandler.HandleCreate)
			r.Get("/user/{user_id}", hikeHandler.HandleListByUser)
			r.Get("/{id}", hikeHandler.HandleGetByID)
			r.Delete("/{id}", hikeHandler.HandleDelete)
		})

		r.Route("/chat", func(r chi.Router) {
			r.With(s.chatRateLimit()).Post("/", chatHandler.HandleChat)
			r.Get("/history", chatHandler.HandleHistory)
		})
	})
}

// chatRateLimit bounds assistant calls per client IP. RealIP has already
// rewritten RemoteAddr, so KeyByIP sees the proxied client.
func (s *Server) chatRateLimit() func(http.Handler) http.Handler {
	if s.config.ChatRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.config.ChatRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(handler.RateLimited),
	)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to ShutdownTimeout and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	// WriteTimeout must outlast the assistant call on /api/chat.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
