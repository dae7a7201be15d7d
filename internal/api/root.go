package api

import (
	"net/http"

	"github.com/JaimeStill/medora/internal/config"
	"github.com/JaimeStill/medora/pkg/handlers"
	"github.com/JaimeStill/medora/pkg/middleware"
	"github.com/JaimeStill/medora/pkg/module"
)

const serviceName = "Medical LLM Wrapper"

// RegisterRoot adds the unprefixed routes: service info, liveness, readiness,
// and the legacy analysis endpoint that predates the /api module.
func RegisterRoot(router *module.Router, cfg *config.Config, runtime *Runtime, domain *Domain) {
	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{
			"message": serviceName + " API",
			"version": cfg.Version,
		})
	})

	router.HandleNative("GET /health", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !runtime.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		if err := runtime.Database.Ping(r.Context()); err != nil {
			runtime.Logger.Warn("readiness check failed", "error", err)
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	legacy := domain.Consultations.Handler(cfg.API.MaxBodySizeBytes())
	logged := middleware.Logger(runtime.Logger)(http.HandlerFunc(legacy.ProcessAnalysis))
	router.HandleNative("POST /process-medical-analysis", logged.ServeHTTP)
}
