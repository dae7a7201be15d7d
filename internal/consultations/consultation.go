package consultations

import (
	"time"

	"github.com/google/uuid"
)

// Consultation indexes one completed pipeline run. The persisted record in
// object storage stays authoritative; this row exists for lookup and listing.
type Consultation struct {
	ID            uuid.UUID `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	UserID        string    `json:"user_id"`
	Condition     string    `json:"condition"`
	Probability   float64   `json:"probability"`
	SourceRef     string    `json:"source_ref"`
	ResponseRef   string    `json:"response_ref"`
	ResponseKey   string    `json:"-"`
	ModelName     string    `json:"model_name"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	StatusAccepted  = "accepted"
	acceptedMessage = "Medical analysis accepted for processing"
)

// Ack acknowledges a fire-and-forget submission. The run id is assigned before
// the run starts and appears in every log line the run emits.
type Ack struct {
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	RunID         uuid.UUID `json:"request_id"`
	CorrelationID string    `json:"correlation_id"`
}
