// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, database, storage, retrieval,
// generation, workers) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/medora/internal/config"
	"github.com/JaimeStill/medora/pkg/database"
	"github.com/JaimeStill/medora/pkg/generation"
	"github.com/JaimeStill/medora/pkg/lifecycle"
	"github.com/JaimeStill/medora/pkg/search"
	"github.com/JaimeStill/medora/pkg/storage"
	"github.com/JaimeStill/medora/pkg/worker"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Search    search.Searcher
	Generator generation.Generator
	Workers   *worker.Pool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	searcher, err := search.NewCache(search.New(&cfg.Search, logger), cfg.Search.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("search init failed: %w", err)
	}

	gen, err := generation.New(lc.Context(), &cfg.Generation, logger)
	if err != nil {
		return nil, fmt.Errorf("generation init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Search:    searcher,
		Generator: gen,
		Workers:   worker.New(&cfg.Workers, logger),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Workers.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("workers start failed: %w", err)
	}
	return nil
}
