package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/medora/internal/config"
	"github.com/JaimeStill/medora/pkg/openapi"
	"github.com/JaimeStill/medora/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) error {
	groups := []routes.Group{
		domain.Consultations.Handler(cfg.API.MaxBodySizeBytes()).Routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups...)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

func buildSpec(cfg *config.Config, groups ...routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)

	server := cfg.API.OpenAPI.ServerURL
	if server == "" {
		server = cfg.API.BasePath
	} else {
		server += cfg.API.BasePath
	}
	spec.AddServer(server)

	routes.Describe(spec, "", groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
