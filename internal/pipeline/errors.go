package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/medora/pkg/storage"
)

// Failure kinds. Every error returned by Execute wraps exactly one of these.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")
	ErrRetrieval    = errors.New("retrieval failure")
	ErrGeneration   = errors.New("generation failure")
)

// StepError records the state a run was in when it failed.
type StepError struct {
	Step State
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorage) && errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStorage),
		errors.Is(err, ErrRetrieval),
		errors.Is(err, ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
