package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/config"
)

// OpenAICompleter talks to the OpenAI chat completions API, or any
// OpenAI-compatible endpoint when a base URL is configured.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

func NewOpenAICompleter(cfg config.ProviderConfig, log *zap.Logger) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    log,
	}
}

func (c *OpenAICompleter) Provider() string { return "openai" }
func (c *OpenAICompleter) Model() string    { return c.model }

func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (reply string, err error) {
	start := time.Now()
	defer func() { observeCompletion(c.Provider(), req.Purpose, start, err) }()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	})
	if err != nil {
		return "", parseOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	reply = strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyCompletion
	}

	c.log.Debug("openai completion",
		zap.String("purpose", req.Purpose),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("took", time.Since(start)))
	return reply, nil
}

// parseOpenAIError keeps the status code and message while preserving context
// errors for errors.Is.
func parseOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai request error %d: %w", reqErr.HTTPStatusCode, reqErr.Err)
	}

	return fmt.Errorf("openai request failed: %w", err)
}
