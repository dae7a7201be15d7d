// Package generation provides text-generation clients behind a single Generator contract.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrEmptyResponse    = errors.New("model returned an empty response")
	ErrUnexpectedStatus = errors.New("unexpected model response status")
)

// Generator turns a prompt into unstructured text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider and model, e.g. "openai:gpt-4o-mini".
	Name() string
}

// New creates the Generator for the configured provider.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Generator, error) {
	logger = logger.With("system", "generation", "provider", cfg.Provider, "model", cfg.Model)

	switch cfg.Provider {
	case ProviderOpenAI, ProviderAzure:
		return newChat(cfg, logger)
	case ProviderGemini:
		return newGemini(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %q", cfg.Provider)
	}
}
