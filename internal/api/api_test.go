package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/medora/internal/api"
	"github.com/JaimeStill/medora/internal/config"
	"github.com/JaimeStill/medora/internal/infrastructure"
	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/database"
	"github.com/JaimeStill/medora/pkg/generation"
	"github.com/JaimeStill/medora/pkg/middleware"
	"github.com/JaimeStill/medora/pkg/module"
	"github.com/JaimeStill/medora/pkg/openapi"
	"github.com/JaimeStill/medora/pkg/pagination"
	"github.com/JaimeStill/medora/pkg/search"
	"github.com/JaimeStill/medora/pkg/storage"
	"github.com/JaimeStill/medora/pkg/worker"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "medora",
			User:            "medora",
			Password:        "medora",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			Backend: storage.BackendS3,
			Bucket:  "medora",
			S3: storage.S3Config{
				Endpoint:   "localhost:9000",
				Region:     "us-east-1",
				AccessKey:  "minio",
				SecretKey:  "minio123",
				DisableSSL: true,
			},
		},
		API: config.APIConfig{
			BasePath:    "/api",
			MaxBodySize: "1MB",
			CORS:        middleware.CORSConfig{Enabled: false},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
			OpenAPI: openapi.Config{
				Title:       "Medora API",
				Description: "Consultation letters",
			},
		},
		Search: search.Config{
			BaseURL:   "http://127.0.0.1:8000",
			Timeout:   "30s",
			CacheSize: 8,
		},
		Generation: generation.Config{
			Provider: generation.ProviderOpenAI,
			Model:    "gpt-4o-mini",
			BaseURL:  "http://127.0.0.1:11434/v1",
			Timeout:  "2m",
		},
		Pipeline: pipeline.Config{
			SearchLimit: 3,
			SearchAlpha: 0.5,
		},
		Workers: worker.Config{
			Workers:   1,
			QueueSize: 4,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
		LogLevel:        "error",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(infra.Workers.Close)
	return infra
}

func setupRouter(t *testing.T) *module.Router {
	t.Helper()
	cfg := validConfig()
	runtime := api.NewRuntime(cfg, setupInfra(t))
	domain := api.NewDomain(runtime)

	m, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)
	api.RegisterRoot(router, cfg, runtime, domain)
	return router
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	runtime := api.NewRuntime(cfg, setupInfra(t))

	m, err := api.NewModule(cfg, runtime, api.NewDomain(runtime))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	runtime := api.NewRuntime(cfg, setupInfra(t))

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Pipeline == nil {
		t.Fatal("pipeline runtime is nil")
	}
	if runtime.Pipeline.Config.SearchLimit != 3 {
		t.Errorf("pipeline search limit: got %d, want 3", runtime.Pipeline.Config.SearchLimit)
	}
	if runtime.Pipeline.Storage == nil || runtime.Pipeline.Search == nil || runtime.Pipeline.Generator == nil {
		t.Error("pipeline collaborators must be wired")
	}
}

func TestNewDomain(t *testing.T) {
	runtime := api.NewRuntime(validConfig(), setupInfra(t))

	domain := api.NewDomain(runtime)
	if domain == nil || domain.Consultations == nil {
		t.Fatal("NewDomain() returned no consultations system")
	}
}

func TestOpenAPISpec(t *testing.T) {
	router := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/openapi.json", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var spec openapi.Spec
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if spec.Info.Title != "Medora API" || spec.Info.Version != "0.1.0" {
		t.Errorf("info = %+v", spec.Info)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v", spec.Servers)
	}

	paths := []string{
		"/consultations",
		"/consultations/async",
		"/consultations/search",
		"/consultations/{id}",
		"/consultations/{id}/letter",
	}
	for _, p := range paths {
		if _, ok := spec.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}

	item := spec.Paths["/consultations/{id}"]
	if item == nil || item.Get == nil || item.Delete == nil {
		t.Fatal("/consultations/{id} should describe GET and DELETE")
	}
	if len(item.Get.Tags) != 1 || item.Get.Tags[0] != "Consultations" {
		t.Errorf("tags = %v", item.Get.Tags)
	}
	if _, ok := spec.Components.Schemas["AnalysisRequest"]; !ok {
		t.Error("AnalysisRequest schema not registered")
	}
}

func TestRootRoutes(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name   string
		path   string
		status int
		key    string
		want   string
	}{
		{"service info", "/", http.StatusOK, "message", "Medical LLM Wrapper API"},
		{"legacy health", "/health", http.StatusOK, "status", "healthy"},
		{"liveness", "/healthz", http.StatusOK, "status", "ok"},
		{"readiness before startup", "/readyz", http.StatusServiceUnavailable, "status", "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body[tt.key] != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, body[tt.key], tt.want)
			}
		})
	}
}

func TestLegacyAnalysisRejectsBadBody(t *testing.T) {
	router := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/process-medical-analysis", strings.NewReader("not json"))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConsultationRoutesMounted(t *testing.T) {
	router := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/consultations/not-a-uuid", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAsyncSubmitQueues(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	m, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	router := module.NewRouter()
	router.Mount(m)

	body := `{"cnn_response_url":"s3://medora/user_data/42/scan.json","chat_id":"chat-1"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/consultations/async", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if infra.Workers.Pending() != 1 {
		t.Errorf("pending = %d, want 1", infra.Workers.Pending())
	}
}
