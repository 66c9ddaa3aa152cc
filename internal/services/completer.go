package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/config"
	"github.com/codyseavey/mtg-oracle/internal/metrics"
)

var (
	// ErrTranslatorDisabled is returned when no language model is configured.
	ErrTranslatorDisabled = errors.New("no language model configured")
	// ErrEmptyCompletion is returned when the model replies with nothing usable.
	ErrEmptyCompletion = errors.New("language model returned an empty reply")
)

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	// Purpose labels metrics: "translate" or "deck".
	Purpose string
}

// Completer sends one system+user exchange to a language model and returns the
// reply text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
	Model() string
}

// NewCompleter builds the completer for the configured provider. It returns
// ErrTranslatorDisabled for provider "none".
func NewCompleter(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAICompleter(cfg.OpenAI, log), nil
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.Gemini, log)
	case "none", "":
		return nil, ErrTranslatorDisabled
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// observeCompletion records latency and error metrics for one call.
func observeCompletion(provider, purpose string, start time.Time, err error) {
	metrics.LLMRequestsTotal.WithLabelValues(provider, purpose).Inc()
	metrics.LLMLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}

	errType := "api"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errType = "timeout"
	case errors.Is(err, context.Canceled):
		errType = "canceled"
	case errors.Is(err, ErrEmptyCompletion):
		errType = "empty"
	}
	metrics.LLMErrorsTotal.WithLabelValues(provider, errType).Inc()
}
