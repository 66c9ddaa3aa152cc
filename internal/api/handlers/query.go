package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-oracle/internal/services"
	"github.com/codyseavey/mtg-oracle/internal/session"
)

type resolver interface {
	Resolve(ctx context.Context, raw string, ticket session.Ticket) (services.Resolution, error)
}

// QueryHandler exposes the query pipeline on its own so the UI can show the
// structured query behind a search.
type QueryHandler struct {
	resolver resolver
	tracker  *session.Tracker
}

func NewQueryHandler(r resolver, tracker *session.Tracker) *QueryHandler {
	return &QueryHandler{resolver: r, tracker: tracker}
}

func (h *QueryHandler) Resolve(c *gin.Context) {
	raw := c.Query("q")
	if strings.TrimSpace(raw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), raw, beginTicket(c, h.tracker))
	if err != nil {
		writeSearchError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
