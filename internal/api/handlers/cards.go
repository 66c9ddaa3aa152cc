package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/models"
	"github.com/codyseavey/mtg-oracle/internal/services"
	"github.com/codyseavey/mtg-oracle/internal/session"
)

// SessionHeader carries the browser's search session id. Requests sharing a
// session are ordered: only the newest one gets results.
const (
	SessionHeader = "X-Search-Session"
	RequestHeader = "X-Search-Request"
)

type searcher interface {
	Search(ctx context.Context, raw string, opts services.ResultOptions, ticket session.Ticket) (*services.SearchOutcome, error)
}

type cardLookup interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
	SearchPrintings(ctx context.Context, card *models.Card) (*models.CardSearchResult, error)
}

type CardHandler struct {
	search  searcher
	cards   cardLookup
	tracker *session.Tracker
	log     *zap.Logger
}

func NewCardHandler(search searcher, cards cardLookup, tracker *session.Tracker, log *zap.Logger) *CardHandler {
	return &CardHandler{
		search:  search,
		cards:   cards,
		tracker: tracker,
		log:     log,
	}
}

func (h *CardHandler) SearchCards(c *gin.Context) {
	raw := c.Query("q")
	if strings.TrimSpace(raw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	opts := services.ResultOptions{Sort: c.Query("sort"), Price: c.Query("price")}
	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket := beginTicket(c, h.tracker)

	outcome, err := h.search.Search(c.Request.Context(), raw, opts, ticket)
	if err != nil {
		writeSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetPrintings returns every printing of a card grouped by set, with the
// requested printing's set first.
func (h *CardHandler) GetPrintings(c *gin.Context) {
	card, ok := h.lookup(c)
	if !ok {
		return
	}

	result, err := h.cards.SearchPrintings(c.Request.Context(), card)
	if err != nil {
		h.log.Error("failed to load printings", zap.String("card_id", card.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": services.MessageUnavailable})
		return
	}

	c.JSON(http.StatusOK, services.GroupCardsBySet(result.Cards, card.SetCode, card.CardNumber))
}

func (h *CardHandler) lookup(c *gin.Context) (*models.Card, bool) {
	id := c.Param("id")

	card, err := h.cards.GetCard(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to get card", zap.String("card_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": services.MessageUnavailable})
		return nil, false
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return nil, false
	}
	return card, true
}

func beginTicket(c *gin.Context, tracker *session.Tracker) session.Ticket {
	ticket := tracker.Begin(strings.TrimSpace(c.GetHeader(SessionHeader)))
	if ticket.ID() > 0 {
		c.Header(RequestHeader, strconv.FormatUint(ticket.ID(), 10))
	}
	return ticket
}

func writeSearchError(c *gin.Context, err error) {
	switch {
	case services.IsSuperseded(err):
		c.JSON(http.StatusConflict, gin.H{"status": "superseded"})
	case errors.Is(err, services.ErrSearchUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": services.MessageUnavailable})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": services.MessageUnavailable})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.MessageUnavailable})
	}
}
