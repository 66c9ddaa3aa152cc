package services

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/codyseavey/mtg-oracle/internal/models"
)

// Sort orders accepted by the search endpoint.
const (
	SortNone      = ""
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRarity    = "rarity"
)

// Price bands, in USD.
const (
	PriceAll    = "all"
	PriceUnder5 = "under5"
	Price5To20  = "5to20"
	PriceOver20 = "over20"
)

var rarityRank = map[string]int{
	"common":   0,
	"uncommon": 1,
	"rare":     2,
	"mythic":   3,
}

// ResultOptions shapes a result set after the search returns.
type ResultOptions struct {
	Sort  string
	Price string
}

// Validate rejects unknown sort orders and price bands.
func (o ResultOptions) Validate() error {
	switch o.Sort {
	case SortNone, SortName, SortPriceLow, SortPriceHigh, SortRarity:
	default:
		return fmt.Errorf("unknown sort %q", o.Sort)
	}
	switch o.Price {
	case "", PriceAll, PriceUnder5, Price5To20, PriceOver20:
	default:
		return fmt.Errorf("unknown price filter %q", o.Price)
	}
	return nil
}

// ApplyResultOptions filters by price band, then sorts. Cards without a USD
// price count as 0. The input slice is not modified.
func ApplyResultOptions(cards []models.Card, opts ResultOptions) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if inPriceBand(c.PriceUSD, opts.Price) {
			out = append(out, c)
		}
	}

	switch opts.Sort {
	case SortName:
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceUSD < out[j].PriceUSD })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceUSD > out[j].PriceUSD })
	case SortRarity:
		// Unknown rarities (special, bonus) rank with common.
		sort.SliceStable(out, func(i, j int) bool { return rarityRank[out[i].Rarity] < rarityRank[out[j].Rarity] })
	}
	return out
}

func inPriceBand(price float64, band string) bool {
	switch band {
	case PriceUnder5:
		return price < 5
	case Price5To20:
		return price >= 5 && price <= 20
	case PriceOver20:
		return price > 20
	default:
		return true
	}
}
