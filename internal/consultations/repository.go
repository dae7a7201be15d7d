package consultations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/pagination"
	"github.com/JaimeStill/medora/pkg/query"
	"github.com/JaimeStill/medora/pkg/repository"
	"github.com/JaimeStill/medora/pkg/storage"
	"github.com/JaimeStill/medora/pkg/worker"
)

const insertConsultation = `
INSERT INTO consultations (
	id, correlation_id, user_id, condition, probability,
	source_ref, response_ref, response_key, model_name, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const deleteConsultation = `DELETE FROM consultations WHERE id = $1`

type repo struct {
	db         *sql.DB
	rt         *pipeline.Runtime
	store      storage.System
	pool       *worker.Pool
	model      string
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a consultation repository implementing the System interface.
// model names the generator recorded alongside each indexed run.
func New(
	db *sql.DB,
	rt *pipeline.Runtime,
	store storage.System,
	pool *worker.Pool,
	model string,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		rt:         rt,
		store:      store,
		pool:       pool,
		model:      model,
		logger:     logger.With("system", "consultations"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBodySize)
}

func (r *repo) Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	result, err := pipeline.Execute(ctx, r.rt, req)
	if err != nil {
		return nil, err
	}

	if err := r.index(ctx, result); err != nil {
		r.logger.Error(
			"index consultation failed",
			"request_id", result.RunID,
			"response_ref", result.ResponseRef,
			"error", err,
		)
	}

	return result, nil
}

func (r *repo) Submit(req pipeline.Request) (*Ack, error) {
	req, err := pipeline.Prepare(req, r.rt.Config)
	if err != nil {
		return nil, err
	}

	job := func(ctx context.Context) {
		result, err := r.Process(ctx, req)
		if err != nil {
			r.logger.Error(
				"background consultation failed",
				"request_id", req.RunID,
				"correlation_id", req.CorrelationID,
				"error", err,
			)
			return
		}
		r.logger.Info(
			"background consultation completed",
			"request_id", result.RunID,
			"response_ref", result.ResponseRef,
		)
	}

	if err := r.pool.Submit(job); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	r.logger.Info("consultation queued", "request_id", req.RunID, "pending", r.pool.Pending())

	return &Ack{
		Status:        StatusAccepted,
		Message:       acceptedMessage,
		RunID:         req.RunID,
		CorrelationID: req.CorrelationID,
	}, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Consultation], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Condition", "CorrelationID", "UserID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count consultations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanConsultation)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	c, err := repository.QueryOne(ctx, r.db, q, args, scanConsultation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Letter(ctx context.Context, id uuid.UUID) (*pipeline.Record, error) {
	c, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := r.store.Exists(ctx, c.ResponseKey)
	if err != nil {
		return nil, fmt.Errorf("check letter: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("letter %s: %w", c.ResponseKey, storage.ErrNotFound)
	}

	body, err := r.store.Download(ctx, c.ResponseKey)
	if err != nil {
		return nil, fmt.Errorf("download letter: %w", err)
	}
	defer body.Close()

	return pipeline.DecodeRecord(body)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, c.ResponseKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete letter: %w", err)
	}

	if err := repository.ExecExpectOne(ctx, r.db, deleteConsultation, id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("consultation deleted", "id", id, "response_key", c.ResponseKey)
	return nil
}

func (r *repo) index(ctx context.Context, res *pipeline.Result) error {
	err := repository.ExecExpectOne(
		ctx, r.db, insertConsultation,
		res.RunID,
		res.CorrelationID,
		res.UserID,
		res.Condition,
		res.Probability,
		res.SourceRef,
		res.ResponseRef,
		res.ResponseKey,
		r.model,
		res.CompletedAt,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
