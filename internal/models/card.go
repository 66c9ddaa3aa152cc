package models

import "strconv"

type ImageURIs struct {
	Small  string `json:"small,omitempty"`
	Normal string `json:"normal,omitempty"`
	Large  string `json:"large,omitempty"`
}

// CardFace is one side of a double-faced or split card.
type CardFace struct {
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost,omitempty"`
	TypeLine   string     `json:"type_line,omitempty"`
	OracleText string     `json:"oracle_text,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// Prices are the raw decimal strings reported by Scryfall. Any of them may be
// empty when no market price is known.
type Prices struct {
	USD       string `json:"usd,omitempty"`
	USDFoil   string `json:"usd_foil,omitempty"`
	USDEtched string `json:"usd_etched,omitempty"`
	EUR       string `json:"eur,omitempty"`
	EURFoil   string `json:"eur_foil,omitempty"`
	Tix       string `json:"tix,omitempty"`
}

type Card struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	ManaCost        string     `json:"mana_cost,omitempty"`
	TypeLine        string     `json:"type_line,omitempty"`
	OracleText      string     `json:"oracle_text,omitempty"`
	Rarity          string     `json:"rarity"`
	SetName         string     `json:"set_name"`
	SetCode         string     `json:"set_code"`
	CardNumber      string     `json:"card_number"`
	ReleasedAt      string     `json:"released_at,omitempty"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	Image           string     `json:"image_url,omitempty"`
	CardFaces       []CardFace `json:"card_faces,omitempty"`
	Prices          Prices     `json:"prices"`
	PriceUSD        float64    `json:"price_usd"`
	PriceFoilUSD    float64    `json:"price_foil_usd"`
	HasPrice        bool       `json:"has_price"`
	PrintsSearchURI string     `json:"prints_search_uri,omitempty"`
	ScryfallURI     string     `json:"scryfall_uri,omitempty"`
	ShareURL        string     `json:"share_url"`
}

// ImageURL returns the normal-size image, falling back to the front face.
func (c Card) ImageURL() string {
	if c.ImageURIs != nil && c.ImageURIs.Normal != "" {
		return c.ImageURIs.Normal
	}
	for _, f := range c.CardFaces {
		if f.ImageURIs != nil && f.ImageURIs.Normal != "" {
			return f.ImageURIs.Normal
		}
	}
	return ""
}

// ParsePrice converts a Scryfall price string. ok is false for empty or
// malformed values.
func ParsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}

// MTGSetGroup holds all printings of a card within one set.
type MTGSetGroup struct {
	SetCode     string `json:"set_code"`
	SetName     string `json:"set_name"`
	ReleasedAt  string `json:"released_at"`
	IsBestMatch bool   `json:"is_best_match"`
	Variants    []Card `json:"variants"`
}

type MTGGroupedResult struct {
	CardName  string        `json:"card_name"`
	SetGroups []MTGSetGroup `json:"set_groups"`
	TotalSets int           `json:"total_sets"`
}
