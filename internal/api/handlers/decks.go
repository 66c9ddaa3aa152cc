package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-oracle/internal/models"
	"github.com/codyseavey/mtg-oracle/internal/services"
)

type deckBuilder interface {
	Generate(ctx context.Context, prompt string, commander bool) (*models.GeneratedDeck, error)
	Get(ctx context.Context, id string) (*models.GeneratedDeck, error)
}

type DeckHandler struct {
	decks deckBuilder
}

func NewDeckHandler(decks deckBuilder) *DeckHandler {
	return &DeckHandler{decks: decks}
}

type GenerateDeckRequest struct {
	Prompt    string `json:"prompt"`
	Commander bool   `json:"commander"`
}

func (h *DeckHandler) GenerateDeck(c *gin.Context) {
	var req GenerateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deck, err := h.decks.Generate(c.Request.Context(), req.Prompt, req.Commander)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, deck)
	case errors.Is(err, services.ErrEmptyPrompt):
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
	case errors.Is(err, services.ErrDeckGeneration):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Deck generation failed. Try again in a moment!"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save deck"})
	}
}

func (h *DeckHandler) GetDeck(c *gin.Context) {
	deck, err := h.decks.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrDeckNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deck"})
		return
	}
	c.JSON(http.StatusOK, deck)
}
