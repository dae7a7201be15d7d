package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/medora/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}
}

func TestSpecMutators(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddServer("http://localhost:8080")
	spec.SetDescription("A test API")
	spec.AddTag("Consultations", "first")
	spec.AddTag("Consultations", "second")

	if len(spec.Servers) != 1 || spec.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("servers: got %+v", spec.Servers)
	}
	if spec.Info.Description != "A test API" {
		t.Errorf("description: got %s", spec.Info.Description)
	}
	if len(spec.Tags) != 1 || spec.Tags[0].Description != "first" {
		t.Errorf("tags should dedupe: %+v", spec.Tags)
	}
}

func TestRefs(t *testing.T) {
	if got := openapi.SchemaRef("Consultation").Ref; got != "#/components/schemas/Consultation" {
		t.Errorf("schema ref: got %s", got)
	}
	if got := openapi.ResponseRef("NotFound").Ref; got != "#/components/responses/NotFound" {
		t.Errorf("response ref: got %s", got)
	}
}

func TestRequestBodyJSON(t *testing.T) {
	rb := openapi.RequestBodyJSON("AnalysisRequest", true)

	if !rb.Required {
		t.Error("required should be true")
	}
	ct, ok := rb.Content["application/json"]
	if !ok {
		t.Fatal("missing application/json content type")
	}
	if ct.Schema.Ref != "#/components/schemas/AnalysisRequest" {
		t.Errorf("schema ref: got %s", ct.Schema.Ref)
	}
}

func TestResponseJSON(t *testing.T) {
	resp := openapi.ResponseJSON("Success", "Consultation")

	if resp.Description != "Success" {
		t.Errorf("description: got %s", resp.Description)
	}
	if resp.Content["application/json"].Schema.Ref != "#/components/schemas/Consultation" {
		t.Errorf("schema ref: got %s", resp.Content["application/json"].Schema.Ref)
	}
}

func TestParams(t *testing.T) {
	p := openapi.PathParam("id", "Consultation ID")
	if p.In != "path" || !p.Required || p.Schema.Format != "uuid" {
		t.Errorf("path param: got %+v", p)
	}

	q := openapi.QueryParam("search", "string", "Search query", false)
	if q.In != "query" || q.Required || q.Schema.Type != "string" {
		t.Errorf("query param: got %+v", q)
	}
}

func TestPathItemSet(t *testing.T) {
	var item openapi.PathItem
	op := &openapi.Operation{Summary: "x"}

	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "PATCH"} {
		item.Set(m, op)
	}

	if item.Get != op || item.Post != op || item.Put != op || item.Delete != op {
		t.Errorf("methods not assigned: %+v", item)
	}
}

func TestNewComponentsDefaults(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"Error", "PageRequest"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing default schema: %s", name)
		}
	}

	for _, name := range []string{"BadRequest", "NotFound", "Conflict", "BadGateway", "ServiceUnavailable", "InternalError"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response: %s", name)
		}
	}
}

func TestAddComponents(t *testing.T) {
	c := openapi.NewComponents()
	c.AddSchemas(map[string]*openapi.Schema{"Consultation": {Type: "object"}})
	c.AddResponses(map[string]*openapi.Response{"Accepted": {Description: "Queued"}})

	if _, ok := c.Schemas["Consultation"]; !ok {
		t.Error("Consultation schema not added")
	}
	if _, ok := c.Schemas["PageRequest"]; !ok {
		t.Error("default PageRequest schema should still exist")
	}
	if _, ok := c.Responses["Accepted"]; !ok {
		t.Error("Accepted response not added")
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.Paths["/x"] = &openapi.PathItem{Get: &openapi.Operation{
		Responses: map[int]*openapi.Response{200: {Description: "OK"}},
	}}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed struct {
		OpenAPI string `json:"openapi"`
		Paths   map[string]struct {
			Get struct {
				Responses map[string]any `json:"responses"`
			} `json:"get"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body unmarshal failed: %v", err)
	}
	if parsed.OpenAPI != "3.1.0" {
		t.Errorf("openapi: got %s", parsed.OpenAPI)
	}
	if _, ok := parsed.Paths["/x"].Get.Responses["200"]; !ok {
		t.Error("status code keys should serialize as strings")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := openapi.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Title != "Medora API" {
			t.Errorf("title: got %s, want Medora API", cfg.Title)
		}
		if cfg.Description == "" {
			t.Error("description should default")
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_TITLE", "Custom API")
		t.Setenv("TEST_SERVER", "https://medora.example.com")

		cfg := openapi.Config{}
		env := &openapi.ConfigEnv{Title: "TEST_TITLE", ServerURL: "TEST_SERVER"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Title != "Custom API" {
			t.Errorf("title: got %s", cfg.Title)
		}
		if cfg.ServerURL != "https://medora.example.com" {
			t.Errorf("server_url: got %s", cfg.ServerURL)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := openapi.Config{Title: "Base", Description: "keep"}
	overlay := openapi.Config{Title: "Overlay"}
	base.Merge(&overlay)

	if base.Title != "Overlay" || base.Description != "keep" {
		t.Errorf("merge: got %+v", base)
	}
}
