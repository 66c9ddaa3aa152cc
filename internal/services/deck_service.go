package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-oracle/internal/metrics"
	"github.com/codyseavey/mtg-oracle/internal/models"
)

var (
	// ErrDeckNotFound is returned for an unknown deck id.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrEmptyPrompt is returned when a deck request has no description.
	ErrEmptyPrompt = errors.New("deck prompt is required")
	// ErrDeckGeneration wraps language model failures during deck generation.
	ErrDeckGeneration = errors.New("deck generation failed")
)

const deckTemperature = 0.7

// defaultDeckPrompt is used when no prompt file is configured.
const defaultDeckPrompt = `You are an expert Magic: The Gathering deck builder.
Build a complete, legal decklist for the requested format and theme.
List one card per line as "<count> <card name>", grouped by card type, with
lands last. Only use real cards.`

// DeckService generates deck lists with the language model and stores them.
type DeckService struct {
	db        *gorm.DB
	completer Completer
	prompt    string
	log       *zap.Logger
}

// NewDeckService loads the deck-builder instruction from promptFile, or uses
// the built-in one when promptFile is empty.
func NewDeckService(db *gorm.DB, completer Completer, promptFile string, log *zap.Logger) (*DeckService, error) {
	prompt := defaultDeckPrompt
	if promptFile != "" {
		data, err := os.ReadFile(filepath.Clean(promptFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read deck prompt: %w", err)
		}
		if p := strings.TrimSpace(string(data)); p != "" {
			prompt = p
		}
	}
	return &DeckService{db: db, completer: completer, prompt: prompt, log: log}, nil
}

// DeckUserMessage is the user turn for a deck request.
func DeckUserMessage(prompt string, commander bool) string {
	if commander {
		return "Build a 100-card Commander deck: " + prompt
	}
	return "Build a 60-card deck: " + prompt
}

// Generate asks the model for a deck and persists it.
func (s *DeckService) Generate(ctx context.Context, prompt string, commander bool) (*models.GeneratedDeck, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	format := models.DeckFormatStandard
	if commander {
		format = models.DeckFormatCommander
	}

	if s.completer == nil {
		metrics.DecksGenerated.WithLabelValues(format, "failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrDeckGeneration, ErrTranslatorDisabled)
	}

	content, err := s.completer.Complete(ctx, CompletionRequest{
		System:      s.prompt,
		User:        DeckUserMessage(prompt, commander),
		Temperature: deckTemperature,
		Purpose:     "deck",
	})
	if err != nil {
		metrics.DecksGenerated.WithLabelValues(format, "failed").Inc()
		s.log.Warn("deck generation failed", zap.String("format", format), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDeckGeneration, err)
	}

	deck := &models.GeneratedDeck{
		ID:       uuid.New().String(),
		Prompt:   prompt,
		Format:   format,
		Content:  content,
		Provider: s.completer.Provider(),
		Model:    s.completer.Model(),
	}
	if err := s.db.WithContext(ctx).Create(deck).Error; err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	metrics.DecksGenerated.WithLabelValues(format, "success").Inc()
	s.log.Info("deck generated", zap.String("id", deck.ID), zap.String("format", format))
	return deck, nil
}

// Get returns a stored deck.
func (s *DeckService) Get(ctx context.Context, id string) (*models.GeneratedDeck, error) {
	var deck models.GeneratedDeck
	err := s.db.WithContext(ctx).First(&deck, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeckNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}
