// Package consultations runs the letter pipeline in synchronous and
// fire-and-forget modes and indexes completed runs for retrieval.
package consultations

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/pagination"
)

// System defines the public contract for consultation domain operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	// Process runs the pipeline to completion and indexes the result.
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	// Submit validates req, queues it, and returns before the run starts.
	Submit(req pipeline.Request) (*Ack, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Consultation], error)

	Find(ctx context.Context, id uuid.UUID) (*Consultation, error)
	// Letter reads the persisted record for a consultation back from storage.
	Letter(ctx context.Context, id uuid.UUID) (*pipeline.Record, error)
	// Delete removes the persisted record and the index row.
	Delete(ctx context.Context, id uuid.UUID) error
}
