package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	"github.com/JaimeStill/go-agents/pkg/client"
)

type chat struct {
	agent  agent.Agent
	name   string
	logger *slog.Logger
}

// NewChat adapts a go-agents Agent to Generator. name identifies the
// provider and model in logs and in the consultation index.
func NewChat(a agent.Agent, name string, logger *slog.Logger) Generator {
	return &chat{agent: a, name: name, logger: logger}
}

func newChat(cfg *Config, logger *slog.Logger) (Generator, error) {
	a, err := agent.New(cfg.Agent())
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return NewChat(a, cfg.Provider+":"+cfg.Model, logger), nil
}

func (c *chat) Name() string {
	return c.name
}

func (c *chat) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.agent.Chat(ctx, prompt)
	if err != nil {
		var statusErr *client.HTTPStatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf(
				"%w: %d: %s",
				ErrUnexpectedStatus, statusErr.StatusCode, strings.TrimSpace(string(statusErr.Body)),
			)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text, _ := resp.Choices[0].Message.Content.(string)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("completion received", "agent", c.agent.ID(), "duration", time.Since(start))
	return text, nil
}
