package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codyseavey/mtg-oracle/internal/metrics"
	"github.com/codyseavey/mtg-oracle/internal/models"
)

const (
	defaultScryfallBaseURL = "https://api.scryfall.com"
	scryfallUserAgent      = "mtg-oracle/1.0"
	scryfallCardPageURL    = "https://scryfall.com/card/"
)

type ScryfallService struct {
	client  *http.Client
	baseURL *url.URL
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewScryfallService creates a Scryfall client. Scryfall asks clients to stay
// around 10 requests per second, so calls wait on a shared limiter.
func NewScryfallService(baseURL string, timeout time.Duration, rps float64, log *zap.Logger) (*ScryfallService, error) {
	if baseURL == "" {
		baseURL = defaultScryfallBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid scryfall base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if rps <= 0 {
		rps = 10
	}
	return &ScryfallService{
		client:  &http.Client{Timeout: timeout},
		baseURL: u,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}, nil
}

type scryfallSearchResponse struct {
	Data       []scryfallCard `json:"data"`
	Object     string         `json:"object"`
	TotalCards int            `json:"total_cards"`
	HasMore    bool           `json:"has_more"`
}

type scryfallCard struct {
	ImageURIs       *models.ImageURIs `json:"image_uris"`
	CardFaces       []models.CardFace `json:"card_faces"`
	Prices          models.Prices     `json:"prices"`
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ManaCost        string            `json:"mana_cost"`
	TypeLine        string            `json:"type_line"`
	OracleText      string            `json:"oracle_text"`
	SetName         string            `json:"set_name"`
	Set             string            `json:"set"`
	CollectorNum    string            `json:"collector_number"`
	Rarity          string            `json:"rarity"`
	ReleasedAt      string            `json:"released_at"`
	PrintsSearchURI string            `json:"prints_search_uri"`
	ScryfallURI     string            `json:"scryfall_uri"`
}

// SearchCards runs a Scryfall search. A 404 means nothing matched and is
// returned as an empty result, not an error.
func (s *ScryfallService) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	reqURL := s.endpoint("/cards/search") + "?q=" + url.QueryEscape(query)
	return s.search(ctx, "search", reqURL)
}

// GetCard retrieves a card by Scryfall id. Returns nil, nil if the card is not
// found (404).
func (s *ScryfallService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	reqURL := s.endpoint("/cards/" + url.PathEscape(id))

	var sc scryfallCard
	found, err := s.getJSON(ctx, "card", reqURL, &sc)
	if err != nil {
		return nil, fmt.Errorf("failed to get card from scryfall: %w", err)
	}
	if !found {
		return nil, nil
	}

	card := convertToCard(sc)
	return &card, nil
}

// SearchPrintings lists every printing of card. The card's prints_search_uri
// is only followed when it points at the configured Scryfall host; otherwise
// an exact-name unique:prints search is used.
func (s *ScryfallService) SearchPrintings(ctx context.Context, card *models.Card) (*models.CardSearchResult, error) {
	if card.PrintsSearchURI != "" {
		if u, err := url.Parse(card.PrintsSearchURI); err == nil && u.Host == s.baseURL.Host && u.Scheme == s.baseURL.Scheme {
			return s.search(ctx, "printings", u.String())
		}
		s.log.Warn("ignoring prints_search_uri on unexpected host",
			zap.String("card_id", card.ID), zap.String("uri", card.PrintsSearchURI))
	}

	// Escape quotes for Scryfall query syntax.
	safeName := strings.ReplaceAll(card.Name, "\"", "\\\"")
	query := fmt.Sprintf(`!"%s" unique:prints`, safeName)
	reqURL := s.endpoint("/cards/search") + "?q=" + url.QueryEscape(query)
	return s.search(ctx, "printings", reqURL)
}

func (s *ScryfallService) search(ctx context.Context, endpoint, reqURL string) (*models.CardSearchResult, error) {
	var searchResp scryfallSearchResponse
	found, err := s.getJSON(ctx, endpoint, reqURL, &searchResp)
	if err != nil {
		return nil, fmt.Errorf("failed to search scryfall: %w", err)
	}
	if !found {
		return &models.CardSearchResult{
			Cards:      []models.Card{},
			TotalCount: 0,
			HasMore:    false,
		}, nil
	}

	cards := make([]models.Card, len(searchResp.Data))
	for i, sc := range searchResp.Data {
		cards[i] = convertToCard(sc)
	}

	return &models.CardSearchResult{
		Cards:      cards,
		TotalCount: searchResp.TotalCards,
		HasMore:    searchResp.HasMore,
	}, nil
}

// getJSON performs a rate-limited GET and decodes the body into out. found is
// false on 404.
func (s *ScryfallService) getJSON(ctx context.Context, endpoint, reqURL string, out any) (found bool, err error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		metrics.ScryfallLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", scryfallUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		outcome = "not_found"
		return false, nil
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	outcome = "ok"
	return true, nil
}

func (s *ScryfallService) endpoint(path string) string {
	return s.baseURL.String() + path
}

func convertToCard(sc scryfallCard) models.Card {
	priceUSD, hasPrice := models.ParsePrice(sc.Prices.USD)
	priceFoilUSD, _ := models.ParsePrice(sc.Prices.USDFoil)

	share := sc.ScryfallURI
	if share == "" && sc.ID != "" {
		share = scryfallCardPageURL + sc.ID
	}

	card := models.Card{
		ID:              sc.ID,
		Name:            sc.Name,
		ManaCost:        sc.ManaCost,
		TypeLine:        sc.TypeLine,
		OracleText:      sc.OracleText,
		Rarity:          sc.Rarity,
		SetName:         sc.SetName,
		SetCode:         sc.Set,
		CardNumber:      sc.CollectorNum,
		ReleasedAt:      sc.ReleasedAt,
		ImageURIs:       sc.ImageURIs,
		CardFaces:       sc.CardFaces,
		Prices:          sc.Prices,
		PriceUSD:        priceUSD,
		PriceFoilUSD:    priceFoilUSD,
		HasPrice:        hasPrice,
		PrintsSearchURI: sc.PrintsSearchURI,
		ScryfallURI:     sc.ScryfallURI,
		ShareURL:        share,
	}
	card.Image = card.ImageURL()
	return card
}

// GroupCardsBySet groups a flat list of printings by set.
// Sorting: best match first (by set code), then by release date (newest first).
// Collector number is a secondary signal used only when no set code is given.
func GroupCardsBySet(cards []models.Card, setCode, cardNumber string) *models.MTGGroupedResult {
	if len(cards) == 0 {
		return &models.MTGGroupedResult{
			CardName:  "",
			SetGroups: []models.MTGSetGroup{},
			TotalSets: 0,
		}
	}

	setMap := make(map[string]*models.MTGSetGroup)
	for _, card := range cards {
		group, exists := setMap[card.SetCode]
		if !exists {
			group = &models.MTGSetGroup{
				SetCode:    card.SetCode,
				SetName:    card.SetName,
				ReleasedAt: card.ReleasedAt,
				Variants:   []models.Card{},
			}
			setMap[card.SetCode] = group
		}
		group.Variants = append(group.Variants, card)
	}

	groups := make([]models.MTGSetGroup, 0, len(setMap))
	for _, g := range setMap {
		groups = append(groups, *g)
	}

	for i := range groups {
		if setCode != "" && strings.EqualFold(groups[i].SetCode, setCode) {
			groups[i].IsBestMatch = true
			continue
		}
		if setCode == "" && cardNumber != "" {
			for _, v := range groups[i].Variants {
				if v.CardNumber == cardNumber {
					groups[i].IsBestMatch = true
					break
				}
			}
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].IsBestMatch != groups[j].IsBestMatch {
			return groups[i].IsBestMatch
		}
		// Dates are "2022-02-18", so string order is date order.
		if groups[i].ReleasedAt != groups[j].ReleasedAt {
			return groups[i].ReleasedAt > groups[j].ReleasedAt
		}
		return groups[i].SetCode < groups[j].SetCode
	})

	return &models.MTGGroupedResult{
		CardName:  cards[0].Name,
		SetGroups: groups,
		TotalSets: len(groups),
	}
}

