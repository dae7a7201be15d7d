package main

import (
	"github.com/JaimeStill/medora/internal/api"
	"github.com/JaimeStill/medora/internal/config"
	"github.com/JaimeStill/medora/internal/infrastructure"
	"github.com/JaimeStill/medora/pkg/middleware"
	"github.com/JaimeStill/medora/pkg/module"
	"github.com/JaimeStill/medora/web/docs"
)

type Modules struct {
	API     *module.Module
	Docs    *module.Module
	runtime *api.Runtime
	domain  *api.Domain
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	docsModule := docs.NewModule("/docs", cfg.API.OpenAPI.Title, cfg.API.BasePath+"/openapi.json")
	docsModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:     apiModule,
		Docs:    docsModule,
		runtime: runtime,
		domain:  domain,
	}, nil
}

func (m *Modules) Mount(router *module.Router, cfg *config.Config) {
	router.Mount(m.API)
	router.Mount(m.Docs)
	api.RegisterRoot(router, cfg, m.runtime, m.domain)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.Use(
		middleware.RequestID(),
		middleware.Recover(infra.Logger),
	)
	return router
}
