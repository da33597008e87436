// Package generation provides the narrative text generation client backed by
// the Anthropic Messages API.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/dkessler/fableforge/internal/config"
)

// Error wraps a transport or timeout failure from the generation service.
// Callers treat it as recoverable: game state must never be corrupted by a
// failed generation.
type Error struct {
	Err error
}

// Error returns the wrapped failure description.
func (e *Error) Error() string {
	return fmt.Sprintf("narrative generation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// sampling temperature for narration; the structured stat calls reuse it
// because the JSON extraction downstream tolerates variance anyway.
const temperature = 0.8

// Client calls the Anthropic Messages API with a bounded per-request timeout.
type Client struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a generation client from configuration.
//
// Precondition: cfg must be validated; logger must be non-nil.
// Postcondition: Returns a Client ready for Generate calls.
func NewClient(cfg config.GenerationConfig, logger *zap.Logger) *Client {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &Client{
		client:  anthropic.NewClient(opts...),
		model:   anthropic.Model(cfg.Model),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Generate produces text for the given prompt within the configured timeout.
//
// Precondition: prompt must be non-empty; maxTokens >= 1.
// Postcondition: Returns non-empty generated text, or a *Error the caller
// must treat as a degraded-but-non-fatal outcome.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.Warn("generation request failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return "", &Error{Err: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &Error{Err: errors.New("response contained no text")}
	}

	c.logger.Debug("generation complete",
		zap.Int("max_tokens", maxTokens),
		zap.Int("chars", sb.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sb.String(), nil
}
