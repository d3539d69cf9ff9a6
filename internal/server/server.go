package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Idahel/js-project-api/config"
	"github.com/Idahel/js-project-api/internal/events"
	"github.com/Idahel/js-project-api/internal/handlers"
	"github.com/Idahel/js-project-api/internal/logging"
	"github.com/Idahel/js-project-api/internal/seed"
	"github.com/Idahel/js-project-api/internal/services"
	"github.com/Idahel/js-project-api/internal/storage"
)

// requestTimeout bounds handler work. The connection write deadline sits
// a little beyond it so the timeout response can still be written.
const requestTimeout = 10 * time.Second

// Server wraps the HTTP server and the connections it owns.
type Server struct {
	httpServer *http.Server
	backend    *Backend
	bus        *events.Bus
	logger     *slog.Logger
}

// Deps are the collaborators the router is assembled from.
type Deps struct {
	Users          *services.UserService
	Thoughts       *services.ThoughtService
	Ping           func(ctx context.Context) error
	Logger         *slog.Logger
	AllowedOrigins []string
}

// New connects the configured store and broker, optionally reseeds the
// thought collection, and builds the HTTP server.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		publisher services.EventPublisher = events.Nop{}
		bus       *events.Bus
	)
	if cfg.Events.Backend != "" {
		bus, err = events.Open(ctx, cfg.Events)
		if err != nil {
			_ = backend.Close(context.Background())
			return nil, err
		}
		publisher = bus
		logger.Info("publishing thought events", "backend", cfg.Events.Backend, "channel", bus.Channel())
	}

	if cfg.ResetDB {
		if err := resetThoughts(ctx, cfg, backend, logger); err != nil {
			closeAll(backend, bus)
			return nil, err
		}
	}

	router := NewRouter(Deps{
		Users:          services.NewUserService(backend.Users),
		Thoughts:       services.NewThoughtService(backend.Thoughts, publisher, logger),
		Ping:           backend.Ping,
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	return &Server{
		httpServer: newHTTPServer(cfg.ServerPort, router),
		backend:    backend,
		bus:        bus,
		logger:     logger,
	}, nil
}

func newHTTPServer(port int, handler http.Handler) *http.Server {
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter registers every route with the shared middleware chain.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	authMiddleware := handlers.RequireAuth(deps.Users, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.Recoverer(logger),
		logging.RequestLogger(logger),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		middleware.Timeout(requestTimeout),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)
	router.Get("/", handlers.Index(router))
	if deps.Ping != nil {
		router.Get("/healthz", handlers.Healthz(deps.Ping, logger))
	}
	router.Group(func(r chi.Router) {
		handlers.UserRouter(r, deps.Users, authMiddleware, logger)
	})
	router.Route("/thoughts", func(r chi.Router) {
		handlers.ThoughtRouter(r, deps.Thoughts, authMiddleware, logger)
	})
	return router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then closes the broker and store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	closeAll(s.backend, s.bus)
	return err
}

func closeAll(backend *Backend, bus *events.Bus) {
	if bus != nil {
		_ = bus.Close()
	}
	if backend != nil {
		_ = backend.Close(context.Background())
	}
}

func resetThoughts(ctx context.Context, cfg config.Config, backend *Backend, logger *slog.Logger) error {
	var objects seed.ObjectStore
	if cfg.Seed.ObjectKey != "" {
		s, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("open seed storage: %w", err)
		}
		defer s.Close()
		objects = s
	}
	seeder := seed.NewSeeder(backend.Thoughts, objects, logger)
	if _, err := seeder.Reset(ctx, cfg.Seed.ObjectKey); err != nil {
		return fmt.Errorf("reset thoughts: %w", err)
	}
	return nil
}
