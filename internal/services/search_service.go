package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/metrics"
	"github.com/codyseavey/mtg-oracle/internal/models"
	"github.com/codyseavey/mtg-oracle/internal/session"
)

// ErrSearchUnavailable wraps transport failures talking to Scryfall.
var ErrSearchUnavailable = errors.New("card search is unavailable")

// User-facing messages.
const (
	MessageNoMatches     = "No cards matched that search. Try simplifying your phrase!"
	MessageNoneRemaining = "I couldn't find any cards for that search. Try rephrasing!"
	MessageUnavailable   = "Something went wrong. Try again in a moment!"
)

// Search outcome statuses.
const (
	StatusOK        = "ok"
	StatusNoResults = "no_results"
)

type cardSearcher interface {
	SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error)
}

// SearchOutcome is what the search endpoint returns.
type SearchOutcome struct {
	Status     string        `json:"status"`
	Message    string        `json:"message,omitempty"`
	Resolution Resolution    `json:"resolution"`
	Cards      []models.Card `json:"cards"`
	TotalCount int           `json:"total_count"`
	HasMore    bool          `json:"has_more"`
}

// SearchService resolves a raw phrase and runs it against Scryfall. Results
// of a superseded request are discarded.
type SearchService struct {
	resolver *QueryResolver
	cards    cardSearcher
	log      *zap.Logger
}

func NewSearchService(resolver *QueryResolver, cards cardSearcher, log *zap.Logger) *SearchService {
	return &SearchService{resolver: resolver, cards: cards, log: log}
}

// Search runs the full pipeline. Errors are session.ErrSuperseded,
// ErrSearchUnavailable, or the caller's context error.
func (s *SearchService) Search(ctx context.Context, raw string, opts ResultOptions, ticket session.Ticket) (*SearchOutcome, error) {
	res, err := s.resolver.Resolve(ctx, raw, ticket)
	if err != nil {
		return nil, s.superseded(err, ticket)
	}
	if !ticket.Latest() {
		return nil, s.superseded(session.ErrSuperseded, ticket)
	}

	result, err := s.cards.SearchCards(ctx, res.Query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Error("card search failed",
			zap.String("query", res.Query), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	if !ticket.Latest() {
		return nil, s.superseded(session.ErrSuperseded, ticket)
	}

	out := &SearchOutcome{
		Status:     StatusOK,
		Resolution: res,
		Cards:      ApplyResultOptions(result.Cards, opts),
		TotalCount: result.TotalCount,
		HasMore:    result.HasMore,
	}

	switch {
	case len(result.Cards) == 0:
		out.Status = StatusNoResults
		out.Message = MessageNoMatches
	case len(out.Cards) == 0:
		out.Status = StatusNoResults
		out.Message = MessageNoneRemaining
	}
	return out, nil
}

func (s *SearchService) superseded(err error, ticket session.Ticket) error {
	if IsSuperseded(err) {
		metrics.SupersededRequests.Inc()
		s.log.Debug("discarding superseded search",
			zap.String("session", ticket.Session()),
			zap.Uint64("request", ticket.ID()))
	}
	return err
}
