package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/pdfcsv/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/pdfcsv/internal/api/middlewares"
	"github.com/markdave123-py/pdfcsv/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// RouteDeps holds the handlers the router mounts. Nil handlers leave their
// routes out.
type RouteDeps struct {
	Sessions    *handlers.SessionHandler
	Conversions *handlers.ConversionHandler
	Auth        *handlers.AuthHandler
	JWTSecret   string
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, deps RouteDeps, logger *slog.Logger) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, deps, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv, logger: logger}
}

func NewRouter(cfg *config.Config, deps RouteDeps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", handlers.Health)

	if cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		if deps.Auth != nil {
			api.Post("/signup", deps.Auth.Signup)
			api.Post("/login", deps.Auth.Login)
		}

		api.Group(func(protected chi.Router) {
			if deps.JWTSecret != "" {
				protected.Use(appMiddleware.JWTMiddleware(deps.JWTSecret))
			}

			if s := deps.Sessions; s != nil {
				protected.Post("/sessions", s.CreateSession)
				protected.Get("/sessions/{id}", s.GetSession)
				protected.Delete("/sessions/{id}", s.DeleteSession)
				protected.Post("/sessions/{id}/file", s.UploadFile)
				protected.Post("/sessions/{id}/reset", s.ResetSession)
				protected.Get("/sessions/{id}/download", s.DownloadCSV)
				protected.Get("/sessions/{id}/download.xlsx", s.DownloadXLSX)
			}

			if c := deps.Conversions; c != nil {
				protected.Get("/conversions", c.ListConversions)
				protected.Get("/conversions/{id}/download", c.DownloadConversion)
			}
		})
	})

	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http.listen", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http.shutdown")
	return s.httpServer.Shutdown(ctx)
}
