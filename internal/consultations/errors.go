package consultations

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/handlers"
	"github.com/JaimeStill/medora/pkg/storage"
)

// Domain errors for consultation operations.
var (
	ErrNotFound    = errors.New("consultation not found")
	ErrDuplicate   = errors.New("consultation already exists")
	ErrUnavailable = errors.New("consultation queue unavailable")
)

// MapHTTPStatus maps consultation and pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return pipeline.MapHTTPStatus(err)
	}
}
