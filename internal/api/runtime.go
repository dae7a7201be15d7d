package api

import (
	"github.com/JaimeStill/medora/internal/config"
	"github.com/JaimeStill/medora/internal/infrastructure"
	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// collaborators a pipeline run needs.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   *pipeline.Runtime
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Search:    infra.Search,
			Generator: infra.Generator,
			Workers:   infra.Workers,
		},
		Pagination: cfg.API.Pagination,
		Pipeline: &pipeline.Runtime{
			Storage:   infra.Storage,
			Search:    infra.Search,
			Generator: infra.Generator,
			Config:    cfg.Pipeline,
			Logger:    logger.With("system", "pipeline"),
		},
	}
}
