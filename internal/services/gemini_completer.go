package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/codyseavey/mtg-oracle/internal/config"
)

// GeminiCompleter talks to the Gemini API through the genai SDK.
type GeminiCompleter struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewGeminiCompleter(ctx context.Context, cfg config.ProviderConfig, log *zap.Logger) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiCompleter{
		client: client,
		model:  cfg.Model,
		log:    log,
	}, nil
}

func (c *GeminiCompleter) Provider() string { return "gemini" }
func (c *GeminiCompleter) Model() string    { return c.model }

func (c *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (reply string, err error) {
	start := time.Now()
	defer func() { observeCompletion(c.Provider(), req.Purpose, start, err) }()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	reply = strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", ErrEmptyCompletion
	}

	c.log.Debug("gemini completion",
		zap.String("purpose", req.Purpose),
		zap.Duration("took", time.Since(start)))
	return reply, nil
}
