package consultations

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/handlers"
	"github.com/JaimeStill/medora/pkg/pagination"
	"github.com/JaimeStill/medora/pkg/routes"
)

// Handler provides HTTP endpoints for consultation operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxBodySize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config,
// and request body limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodySize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "consultations"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for consultation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/consultations",
		Tags:        []string{"Consultations"},
		Description: "Generate, list, and retrieve consultation letters",
		Schemas:     schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
			{Method: "POST", Pattern: "", Handler: h.Process, OpenAPI: spec.Process},
			{Method: "POST", Pattern: "/async", Handler: h.Submit, OpenAPI: spec.Submit},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: spec.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
			{Method: "GET", Pattern: "/{id}/letter", Handler: h.Letter, OpenAPI: spec.Letter},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: spec.Delete},
		},
	}
}

// Process runs the pipeline synchronously and responds with the completed result.
// The run is detached from the request context so a client disconnect does not
// abandon a run midway.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[pipeline.Request](w, r, h.maxBodySize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Process(context.WithoutCancel(r.Context()), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Submit queues the pipeline run and responds 202 with the assigned run id.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[pipeline.Request](w, r, h.maxBodySize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	ack, err := h.sys.Submit(req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, ack)
}

// List returns a paginated list of consultations with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching consultations.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SearchRequest](w, r, h.maxBodySize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single consultation by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Letter returns the persisted record for a consultation. With ?format=html
// only the rendered letter is written, as text/html.
func (h *Handler) Letter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.sys.Letter(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(rec.Letter))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Delete removes a consultation and its persisted record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

type analysisResponse struct {
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	RequestID     uuid.UUID `json:"request_id"`
	S3ResponseURL string    `json:"s3_response_url"`
	TopCondition  string    `json:"top_condition"`
	Probability   float64   `json:"probability"`
}

// ProcessAnalysis serves the legacy /process-medical-analysis contract:
// the same synchronous run as Process, answered in the historical response shape.
func (h *Handler) ProcessAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[pipeline.Request](w, r, h.maxBodySize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Process(context.WithoutCancel(r.Context()), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), fmt.Errorf("Medical analysis failed: %w", err))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, analysisResponse{
		Status:        result.Status,
		Message:       result.Message,
		RequestID:     result.RunID,
		S3ResponseURL: result.ResponseRef,
		TopCondition:  result.Condition,
		Probability:   result.Probability,
	})
}
