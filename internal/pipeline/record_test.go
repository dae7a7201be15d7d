package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/JaimeStill/medora/internal/pipeline"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "user_data/abc/cnn.json", want: "abc"},
		{key: "tenant/user_data/u-9/2025/result.json", want: "u-9"},
		{key: "uploads/cnn.json", wantErr: true},
		{key: "user_data", wantErr: true},
		{key: "user_data//x.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := pipeline.UserID(tt.key)
			if tt.wantErr {
				if !errors.Is(err, pipeline.ErrMissingIdentity) {
					t.Fatalf("got %v, want ErrMissingIdentity", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResponseKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2025, time.January, 1, 1, 2, 3, 0, loc)

	got := pipeline.ResponseKey("u-1", at, "chat")
	want := "user_data/u-1/31.12.2024/results/llm_response_31:12:2024_22_02_03_chat.json"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestPrepare(t *testing.T) {
	req, err := pipeline.Prepare(pipeline.Request{ClassificationRef: " s3://b/k ", CorrelationID: " c-1 "}, pipeline.Config{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if req.ClassificationRef != "s3://b/k" || req.CorrelationID != "c-1" {
		t.Errorf("not normalized: %+v", req)
	}

	failed, err := pipeline.Prepare(pipeline.Request{}, pipeline.Config{})
	if !errors.Is(err, pipeline.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
	if failed.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("run id must be assigned even on failure")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_ALPHA", "0.75")
	t.Setenv("TEST_REQUIRE", "true")

	cfg := pipeline.Config{}
	err := cfg.Finalize(&pipeline.Env{SearchAlpha: "TEST_ALPHA", RequireCorrelationID: "TEST_REQUIRE"})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.SearchLimit != 3 || cfg.SearchAlpha != 0.75 || !cfg.RequireCorrelationID {
		t.Errorf("got %+v", cfg)
	}

	bad := pipeline.Config{SearchAlpha: 2}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected alpha validation error")
	}
}
