package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/internal/prompts"
	"github.com/JaimeStill/medora/pkg/markup"
	"github.com/JaimeStill/medora/pkg/search"
	"github.com/JaimeStill/medora/pkg/storage"
)

const (
	sourceKey = "user_data/u-42/uploads/cnn_result.json"
	sourceRef = "s3://medora/" + sourceKey
	document  = `{"psoriasis": 0.82, "eczema": 0.15, "image_url": "s3://medora/user_data/u-42/img.png"}`
)

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   []string
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{sourceKey: []byte(document)}}
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeStorage) Ref(key string) string {
	return storage.Ref{Scheme: storage.SchemeS3, Bucket: "medora", Key: key}.String()
}

func (f *fakeStorage) Key(ref string) (string, error) {
	r, err := storage.ParseRef(ref)
	if err != nil {
		return "", err
	}
	if r.Scheme != storage.SchemeS3 || r.Bucket != "medora" {
		return "", storage.ErrInvalidRef
	}
	return r.Key, nil
}

type fakeSearch struct {
	queries []search.Query
	docs    string
	err     error
}

func (f *fakeSearch) Hybrid(ctx context.Context, q search.Query) (*search.Response, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Documents: json.RawMessage(f.docs)}, nil
}

type fakeGenerator struct {
	prompts []string
	text    string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fixture struct {
	store  *fakeStorage
	search *fakeSearch
	gen    *fakeGenerator
	states []pipeline.State
	rt     *pipeline.Runtime
}

var fixedNow = time.Date(2025, time.March, 7, 14, 5, 9, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		store:  newFakeStorage(),
		search: &fakeSearch{docs: `[{"content":"Psoriasis is a chronic immune-mediated skin disease."}]`},
		gen:    &fakeGenerator{text: "Intro paragraph.\n\n- Apply emollients\n- Avoid triggers"},
	}

	cfg := pipeline.Config{}
	cfg.Finalize(nil)

	f.rt = &pipeline.Runtime{
		Storage:   f.store,
		Search:    f.search,
		Generator: f.gen,
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       func() time.Time { return fixedNow },
		Observer: func(_ uuid.UUID, s pipeline.State) {
			f.states = append(f.states, s)
		},
	}
	return f
}

func TestExecuteSuccess(t *testing.T) {
	f := newFixture()

	res, err := pipeline.Execute(context.Background(), f.rt, pipeline.Request{
		ClassificationRef: sourceRef,
		CorrelationID:     "chat-1",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	wantKey := "user_data/u-42/07.03.2025/results/llm_response_07:03:2025_14_05_09_chat-1.json"
	if res.ResponseKey != wantKey {
		t.Errorf("key: got %s, want %s", res.ResponseKey, wantKey)
	}
	if res.ResponseRef != "s3://medora/"+wantKey {
		t.Errorf("ref: got %s", res.ResponseRef)
	}
	if res.Status != pipeline.StatusCompleted {
		t.Errorf("status: got %s", res.Status)
	}
	if res.Condition != "psoriasis" || res.Probability != 0.82 {
		t.Errorf("selection: got %s %v", res.Condition, res.Probability)
	}
	if res.UserID != "u-42" || res.SourceRef != sourceRef || res.CorrelationID != "chat-1" {
		t.Errorf("result metadata: %+v", res)
	}

	if !slices.Equal(f.states, pipeline.States()) {
		t.Errorf("states: got %v, want %v", f.states, pipeline.States())
	}

	if len(f.search.queries) != 1 {
		t.Fatalf("search calls: got %d", len(f.search.queries))
	}
	q := f.search.queries[0]
	if q.Query != "psoriasis" || q.Limit != 3 || q.Alpha != 0.5 {
		t.Errorf("search query: got %+v", q)
	}

	if len(f.gen.prompts) != 1 {
		t.Fatalf("generate calls: got %d", len(f.gen.prompts))
	}
	prompt := f.gen.prompts[0]
	for _, want := range []string{
		"Re: Condition Consultation: psoriasis",
		"(0.820)",
		"Clinical Reference: Psoriasis is a chronic immune-mediated skin disease.",
		"was not provided: age, gender, blood_type, medical_history.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestExecuteRecordRoundTrip(t *testing.T) {
	f := newFixture()
	age := 34
	gender := "female"

	res, err := pipeline.Execute(context.Background(), f.rt, pipeline.Request{
		Patient:           prompts.PatientDetails{Age: &age, Gender: &gender},
		ClassificationRef: sourceRef,
		CorrelationID:     "chat-7",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	stored := f.store.objects[res.ResponseKey]
	rec, err := pipeline.DecodeRecord(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	wantLetter := markup.Render(f.gen.text)
	if rec.Letter != wantLetter {
		t.Errorf("letter not preserved byte-for-byte:\n got %q\nwant %q", rec.Letter, wantLetter)
	}
	if rec.CorrelationID != "chat-7" {
		t.Errorf("chat_id: got %s", rec.CorrelationID)
	}
	if rec.Approved {
		t.Error("approved must default to false")
	}
	if !rec.Timestamp.Equal(fixedNow) {
		t.Errorf("timestamp: got %v", rec.Timestamp)
	}
	if rec.Patient.Age == nil || *rec.Patient.Age != 34 || rec.Patient.BloodType != nil {
		t.Errorf("user_details: got %+v", rec.Patient)
	}

	if !bytes.Contains(stored, []byte("<p class=")) || bytes.Contains(stored, []byte(`\u003c`)) {
		t.Error("record should store markup without HTML escaping")
	}

	var raw map[string]any
	if err := json.Unmarshal(stored, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"timestamp", "user_details", "llm_response", "chat_id", "approved"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("record missing key %q", key)
		}
	}
}

func TestExecutePreformattedLetter(t *testing.T) {
	f := newFixture()
	f.gen.text = "<p>Already <b>formatted</b> & done.</p>"

	res, err := pipeline.Execute(context.Background(), f.rt, pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "c"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	rec, _ := pipeline.DecodeRecord(bytes.NewReader(f.store.objects[res.ResponseKey]))
	if rec.Letter != f.gen.text {
		t.Errorf("got %q, want passthrough", rec.Letter)
	}
}

func TestExecuteDefaultsCorrelationID(t *testing.T) {
	f := newFixture()

	res, err := pipeline.Execute(context.Background(), f.rt, pipeline.Request{ClassificationRef: sourceRef})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if res.CorrelationID != res.RunID.String() {
		t.Errorf("correlation id: got %s, want run id %s", res.CorrelationID, res.RunID)
	}
	if !strings.HasSuffix(res.ResponseKey, "_"+res.RunID.String()+".json") {
		t.Errorf("key does not end with run id: %s", res.ResponseKey)
	}
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture)
		req       pipeline.Request
		wantKind  error
		wantStep  pipeline.State
		wantHTTP  int
		generated bool
	}{
		{
			name:     "malformed reference",
			req:      pipeline.Request{ClassificationRef: "not-a-ref", CorrelationID: "c"},
			wantKind: pipeline.ErrInvalidInput,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "empty reference",
			req:      pipeline.Request{ClassificationRef: "  ", CorrelationID: "c"},
			wantKind: pipeline.ErrInvalidInput,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "foreign bucket",
			req:      pipeline.Request{ClassificationRef: "s3://elsewhere/" + sourceKey, CorrelationID: "c"},
			wantKind: pipeline.ErrInvalidInput,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name: "missing identity",
			setup: func(f *fixture) {
				f.store.objects["uploads/cnn.json"] = []byte(document)
			},
			req:      pipeline.Request{ClassificationRef: "s3://medora/uploads/cnn.json", CorrelationID: "c"},
			wantKind: pipeline.ErrStorage,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadGateway,
		},
		{
			name:     "missing object",
			req:      pipeline.Request{ClassificationRef: "s3://medora/user_data/u-1/none.json", CorrelationID: "c"},
			wantKind: pipeline.ErrStorage,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusNotFound,
		},
		{
			name: "malformed document",
			setup: func(f *fixture) {
				f.store.objects[sourceKey] = []byte(`[0.4, 0.6]`)
			},
			req:      pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "c"},
			wantKind: pipeline.ErrStorage,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadGateway,
		},
		{
			name: "no probabilities",
			setup: func(f *fixture) {
				f.store.objects[sourceKey] = []byte(`{"image_url": "x"}`)
			},
			req:      pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "c"},
			wantKind: pipeline.ErrInvalidInput,
			wantStep: pipeline.StateSelecting,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "search failure",
			setup:    func(f *fixture) { f.search.err = errors.New("connection refused") },
			req:      pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "c"},
			wantKind: pipeline.ErrRetrieval,
			wantStep: pipeline.StateRetrieving,
			wantHTTP: http.StatusBadGateway,
		},
		{
			name:      "generation failure",
			setup:     func(f *fixture) { f.gen.err = errors.New("model overloaded") },
			req:       pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "c"},
			wantKind:  pipeline.ErrGeneration,
			wantStep:  pipeline.StateGenerating,
			wantHTTP:  http.StatusBadGateway,
			generated: true,
		},
		{
			name:      "upload failure",
			setup:     func(f *fixture) { f.store.uploadErr = errors.New("access denied") },
			req:       pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "c"},
			wantKind:  pipeline.ErrStorage,
			wantStep:  pipeline.StatePersisting,
			wantHTTP:  http.StatusBadGateway,
			generated: true,
		},
		{
			name:     "path in correlation id",
			req:      pipeline.Request{ClassificationRef: sourceRef, CorrelationID: "../etc"},
			wantKind: pipeline.ErrInvalidInput,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "required correlation id",
			setup:    func(f *fixture) { f.rt.Config.RequireCorrelationID = true },
			req:      pipeline.Request{ClassificationRef: sourceRef},
			wantKind: pipeline.ErrInvalidInput,
			wantStep: pipeline.StateFetching,
			wantHTTP: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			res, err := pipeline.Execute(context.Background(), f.rt, tt.req)
			if res != nil {
				t.Errorf("result should be nil on failure: %+v", res)
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("got %v, want %v", err, tt.wantKind)
			}

			var stepErr *pipeline.StepError
			if !errors.As(err, &stepErr) {
				t.Fatalf("error is not a StepError: %T", err)
			}
			if stepErr.Step != tt.wantStep {
				t.Errorf("step: got %s, want %s", stepErr.Step, tt.wantStep)
			}

			if got := pipeline.MapHTTPStatus(err); got != tt.wantHTTP {
				t.Errorf("http status: got %d, want %d", got, tt.wantHTTP)
			}

			if len(f.store.uploads) != 0 {
				t.Errorf("nothing may be persisted on failure, got %v", f.store.uploads)
			}
			if called := len(f.gen.prompts) > 0; called != tt.generated {
				t.Errorf("generator called: got %v, want %v", called, tt.generated)
			}

			if last := f.states[len(f.states)-1]; last != pipeline.StateFailed {
				t.Errorf("final state: got %s, want failed", last)
			}
			for _, s := range f.states[:len(f.states)-1] {
				if s.Terminal() {
					t.Errorf("terminal state %s observed before the end: %v", s, f.states)
				}
			}
		})
	}
}

func TestStateTerminal(t *testing.T) {
	states := pipeline.States()
	for _, s := range states[:len(states)-1] {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !pipeline.StateDone.Terminal() {
		t.Error("done should be terminal")
	}
	if !pipeline.StateFailed.Terminal() {
		t.Error("failed should be terminal")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", pipeline.ErrInvalidInput, http.StatusBadRequest},
		{"storage", pipeline.ErrStorage, http.StatusBadGateway},
		{"storage not found", fmt.Errorf("%w: %w", pipeline.ErrStorage, storage.ErrNotFound), http.StatusNotFound},
		{"retrieval", pipeline.ErrRetrieval, http.StatusBadGateway},
		{"generation", pipeline.ErrGeneration, http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pipeline.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepErrorMessage(t *testing.T) {
	err := &pipeline.StepError{
		Step: pipeline.StateGenerating,
		Err:  fmt.Errorf("%w: model overloaded", pipeline.ErrGeneration),
	}
	if got := err.Error(); got != "generating: generation failure: model overloaded" {
		t.Errorf("got %q", got)
	}
}
