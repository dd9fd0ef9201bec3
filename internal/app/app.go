// Package app assembles the cellar services from configuration. The HTTP
// server and the CLI share it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/config"
	"github.com/mamadbah2/cellar/internal/repository"
	"github.com/mamadbah2/cellar/internal/repository/mongodb"
	"github.com/mamadbah2/cellar/internal/repository/sheets"
	"github.com/mamadbah2/cellar/internal/repository/sqlite"
	"github.com/mamadbah2/cellar/internal/service/export"
	"github.com/mamadbah2/cellar/internal/service/imagery"
	"github.com/mamadbah2/cellar/internal/service/inventory"
	"github.com/mamadbah2/cellar/internal/service/scanner"
	"github.com/mamadbah2/cellar/pkg/clients/anthropic"
)

// Backend is a key-value store that owns a connection.
type Backend interface {
	repository.KeyValue
	Close(ctx context.Context) error
}

// App holds the wired services.
type App struct {
	Config  *config.Config
	Store   *inventory.Store
	Export  *export.Service
	Images  *imagery.Renderer
	Scanner *scanner.Manager
	backend Backend
	logger  *zap.Logger
}

// New opens the configured backend, loads the cellar and wires every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := inventory.NewStore(backend, logger.Named("svc.inventory"))
	store.Load(ctx)

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		if err != nil {
			_ = backend.Close(ctx)
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		sheetsRepo = repo
	}

	var analyzer scanner.Analyzer
	if cfg.AI.AnthropicKey != "" {
		analyzer = anthropic.NewClient(cfg.AI.AnthropicKey,
			anthropic.WithModel(cfg.AI.Model),
			anthropic.WithTimeout(cfg.AI.Timeout))
		logger.Info("label analysis enabled", zap.String("model", cfg.AI.Model))
	} else {
		logger.Warn("anthropic api key missing, label analysis will fail until it is set")
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Export:  export.NewService(store, sheetsRepo, cfg.Export.Dir, cfg.Location(), logger.Named("svc.export")),
		Images:  imagery.NewRenderer(imagery.NewSession(), imagery.NewHTTPFetcher(cfg.Images.FetchTimeout), logger.Named("svc.imagery")),
		Scanner: scanner.NewManager(analyzer, store, scanner.DefaultTTL, logger.Named("svc.scanner")),
		backend: backend,
		logger:  logger,
	}, nil
}

// OpenBackend connects the persistence backend selected by cfg.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Store.Kind {
	case config.StoreMongo:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, fmt.Errorf("init mongodb repository: %w", err)
		}
		return repo, nil
	case config.StoreSQLite, "":
		repo, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite repository: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Store.Kind)
	}
}

// Close releases the persistence backend.
func (a *App) Close(ctx context.Context) error {
	if err := a.backend.Close(ctx); err != nil {
		a.logger.Error("failed to close store backend", zap.Error(err))
		return err
	}
	return nil
}
