package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/markdave123-py/pdfcsv/internal/api/handlers"
	"github.com/markdave123-py/pdfcsv/internal/config"
	"github.com/markdave123-py/pdfcsv/internal/core"
	"github.com/markdave123-py/pdfcsv/internal/core/conversion_engine"
	db "github.com/markdave123-py/pdfcsv/internal/core/database"
	"github.com/markdave123-py/pdfcsv/internal/core/llm"
	objectclient "github.com/markdave123-py/pdfcsv/internal/core/object-client"
	"github.com/markdave123-py/pdfcsv/internal/services"
)

type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	DBClient  core.DbClient
	Extractor *llm.GeminiExtractor
	Converter *conversion_engine.Converter
	Sessions  *conversion_engine.SessionStore
	Server    *Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	var objClient core.ObjectClient
	if cfg.HistoryEnabled() {
		dbClient, err := db.NewDatabaseClient(appCtx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.DBClient = dbClient
		logger.Info("app.history.enabled")
	}

	if cfg.ArchiveEnabled() {
		c, err := objectclient.NewS3Client(appCtx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		objClient = c
		logger.Info("app.archive.enabled", "bucket", cfg.BucketName)
	}

	extractor, err := llm.NewGeminiExtractor(appCtx, cfg.AIAPIKey, cfg.GenModel, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the extractor, %w", err)
	}
	a.Extractor = extractor

	reader := conversion_engine.NewPDFReader(cfg.MaxUploadBytes(), logger)
	engineCfg := conversion_engine.EngineConfig{
		Workers:        cfg.Workers,
		QueueSize:      cfg.QueueSize,
		ExtractTimeout: cfg.ExtractTimeout,
	}
	if objClient != nil {
		engineCfg.Bucket = cfg.BucketName
	}
	a.Converter = conversion_engine.NewConverter(reader, extractor, a.DBClient, objClient, engineCfg, logger)
	a.Sessions = conversion_engine.NewSessionStore(logger)

	deps := RouteDeps{
		Sessions: handlers.NewSessionHandler(a.Sessions, a.Converter, cfg.MaxUploadBytes(), logger),
	}
	if a.DBClient != nil {
		deps.Conversions = handlers.NewConversionHandler(services.NewConversionService(a.DBClient, objClient, cfg.BucketName), logger)
	}
	if cfg.AuthEnabled() {
		deps.Auth = handlers.NewAuthHandler(services.NewUserService(a.DBClient), cfg.JWTSecret, logger)
		deps.JWTSecret = cfg.JWTSecret
	}
	a.Server = NewServer(cfg, deps, logger)

	return a, nil
}

// Run starts the workers, the session sweeper and the HTTP server, and
// blocks until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.Converter.Start(ctx, 0)
	go a.Sessions.RunSweeper(ctx, a.cfg.SessionTTL)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Server.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.Extractor != nil {
		_ = a.Extractor.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
