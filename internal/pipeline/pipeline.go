// Package pipeline turns a stored classification result into a persisted
// consultation letter.
//
// A run moves strictly through fetching, selecting, retrieving, composing,
// generating, rendering, and persisting. The first failure ends the run in
// the failed state; nothing is written to storage unless every earlier step
// succeeded.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/medora/internal/classification"
	"github.com/JaimeStill/medora/internal/prompts"
	"github.com/JaimeStill/medora/pkg/markup"
	"github.com/JaimeStill/medora/pkg/search"
)

const (
	StatusCompleted = "completed"
	completeMessage = "Medical analysis processing completed successfully"
	recordType      = "application/json"
)

// Storage is the object store the pipeline reads classifications from and writes records to.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	Ref(key string) string
	Key(ref string) (string, error)
}

// Generator produces the raw consultation text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Runtime holds the collaborators and settings shared by every run.
// A Runtime carries no per-run state and is safe for concurrent use when its
// collaborators are.
type Runtime struct {
	Storage   Storage
	Search    search.Searcher
	Generator Generator
	Config    Config
	Logger    *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
	// Observer, when set, is called on every state transition.
	Observer func(runID uuid.UUID, state State)
}

// Request is the input of a single run.
type Request struct {
	RunID             uuid.UUID              `json:"-"`
	Patient           prompts.PatientDetails `json:"user_details"`
	ClassificationRef string                 `json:"cnn_response_url"`
	CorrelationID     string                 `json:"chat_id"`
}

// Result describes a completed run.
type Result struct {
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	RunID         uuid.UUID `json:"request_id"`
	CorrelationID string    `json:"correlation_id"`
	ResponseRef   string    `json:"response_url"`
	Condition     string    `json:"top_condition"`
	Probability   float64   `json:"probability"`

	UserID      string    `json:"-"`
	SourceRef   string    `json:"-"`
	ResponseKey string    `json:"-"`
	CompletedAt time.Time `json:"-"`
}

// Prepare assigns a run id and normalizes the correlation id. The returned
// request always carries a run id, even when validation fails.
// An empty correlation id defaults to the run id unless cfg requires one.
func Prepare(req Request, cfg Config) (Request, error) {
	if req.RunID == uuid.Nil {
		req.RunID = uuid.New()
	}

	req.ClassificationRef = strings.TrimSpace(req.ClassificationRef)
	req.CorrelationID = strings.TrimSpace(req.CorrelationID)

	if req.ClassificationRef == "" {
		return req, fmt.Errorf("%w: cnn_response_url is required", ErrInvalidInput)
	}

	if req.CorrelationID == "" {
		if cfg.RequireCorrelationID {
			return req, fmt.Errorf("%w: chat_id is required", ErrInvalidInput)
		}
		req.CorrelationID = req.RunID.String()
	}

	if strings.ContainsAny(req.CorrelationID, `/\`) || strings.Contains(req.CorrelationID, "..") {
		return req, fmt.Errorf("%w: chat_id must not contain path separators", ErrInvalidInput)
	}

	return req, nil
}

// Execute performs one run to completion. Errors are *StepError values wrapping
// one of ErrInvalidInput, ErrStorage, ErrRetrieval, or ErrGeneration.
func Execute(ctx context.Context, rt *Runtime, req Request) (*Result, error) {
	req, prepErr := Prepare(req, rt.Config)

	r := &run{
		rt:     rt,
		id:     req.RunID,
		logger: rt.Logger.With("run_id", req.RunID, "correlation_id", req.CorrelationID),
	}

	r.enter(StateFetching)
	if prepErr != nil {
		return nil, r.fail(prepErr)
	}

	sourceKey, err := rt.Storage.Key(req.ClassificationRef)
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	userID, err := UserID(sourceKey)
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrStorage, err))
	}

	scores, err := r.fetch(ctx, sourceKey)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateSelecting)
	top, err := scores.Top()
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	r.logger.Info("condition selected", "condition", top.Label, "probability", top.Score)

	r.enter(StateRetrieving)
	found, err := rt.Search.Hybrid(ctx, search.Query{
		Query: top.Label,
		Limit: rt.Config.SearchLimit,
		Alpha: rt.Config.SearchAlpha,
	})
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrRetrieval, err))
	}

	r.enter(StateComposing)
	prompt := prompts.Compose(prompts.Input{
		Condition: top.Label,
		Score:     top.Score,
		Profile:   prompts.FormatProfile(req.Patient),
		Reference: found.Content(),
	})

	r.enter(StateGenerating)
	raw, err := rt.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrGeneration, err))
	}

	r.enter(StateRendering)
	letter := markup.Render(raw)

	r.enter(StatePersisting)
	now := r.now()
	record := Record{
		Timestamp:     now,
		Patient:       req.Patient,
		Letter:        letter,
		CorrelationID: req.CorrelationID,
		Approved:      false,
	}

	data, err := record.Encode()
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrStorage, err))
	}

	key := ResponseKey(userID, now, req.CorrelationID)
	if err := rt.Storage.Upload(ctx, key, bytes.NewReader(data), recordType); err != nil {
		return nil, r.fail(fmt.Errorf("%w: %w", ErrStorage, err))
	}

	r.enter(StateDone)

	return &Result{
		Status:        StatusCompleted,
		Message:       completeMessage,
		RunID:         req.RunID,
		CorrelationID: req.CorrelationID,
		ResponseRef:   rt.Storage.Ref(key),
		Condition:     top.Label,
		Probability:   top.Score,
		UserID:        userID,
		SourceRef:     req.ClassificationRef,
		ResponseKey:   key,
		CompletedAt:   now,
	}, nil
}

type run struct {
	rt     *Runtime
	id     uuid.UUID
	state  State
	logger *slog.Logger
}

// enter records a transition. A terminal state absorbs any later transition.
func (r *run) enter(state State) {
	if r.state.Terminal() {
		r.logger.Warn("transition after terminal state ignored", "state", r.state, "next", state)
		return
	}
	r.state = state
	r.logger.Debug("pipeline transition", "state", state)
	if r.rt.Observer != nil {
		r.rt.Observer(r.id, state)
	}
}

func (r *run) fail(err error) error {
	step := r.state
	r.enter(StateFailed)
	r.logger.Error("pipeline failed", "step", step, "error", err)
	return &StepError{Step: step, Err: err}
}

func (r *run) now() time.Time {
	if r.rt.Now != nil {
		return r.rt.Now()
	}
	return time.Now()
}

func (r *run) fetch(ctx context.Context, key string) (classification.Scores, error) {
	body, err := r.rt.Storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read classification: %w", ErrStorage, err)
	}

	scores, err := classification.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return scores, nil
}
