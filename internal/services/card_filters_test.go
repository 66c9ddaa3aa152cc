package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codyseavey/mtg-oracle/internal/models"
)

func filterFixture() []models.Card {
	return []models.Card{
		{Name: "Sol Ring", PriceUSD: 1.5, Rarity: "uncommon"},
		{Name: "Ragavan, Nimble Pilferer", PriceUSD: 55, Rarity: "mythic"},
		{Name: "arcane signet", PriceUSD: 0.75, Rarity: "common"},
		{Name: "Smothering Tithe", PriceUSD: 20, Rarity: "rare"},
		{Name: "Aether Vial", PriceUSD: 5, Rarity: "special"},
		{Name: "Unpriced Token", Rarity: "common"},
	}
}

func names(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}

func TestApplyResultOptions_PriceBands(t *testing.T) {
	tests := []struct {
		band string
		want []string
	}{
		{PriceUnder5, []string{"Sol Ring", "arcane signet", "Unpriced Token"}},
		{Price5To20, []string{"Smothering Tithe", "Aether Vial"}},
		{PriceOver20, []string{"Ragavan, Nimble Pilferer"}},
		{PriceAll, names(filterFixture())},
		{"", names(filterFixture())},
	}

	for _, tt := range tests {
		t.Run("band "+tt.band, func(t *testing.T) {
			got := ApplyResultOptions(filterFixture(), ResultOptions{Price: tt.band})
			assert.ElementsMatch(t, tt.want, names(got))
		})
	}
}

func TestApplyResultOptions_Sort(t *testing.T) {
	tests := []struct {
		sort string
		want []string
	}{
		{SortPriceLow, []string{"Unpriced Token", "arcane signet", "Sol Ring", "Aether Vial", "Smothering Tithe", "Ragavan, Nimble Pilferer"}},
		{SortPriceHigh, []string{"Ragavan, Nimble Pilferer", "Smothering Tithe", "Aether Vial", "Sol Ring", "arcane signet", "Unpriced Token"}},
		{SortRarity, []string{"arcane signet", "Aether Vial", "Unpriced Token", "Sol Ring", "Smothering Tithe", "Ragavan, Nimble Pilferer"}},
		{SortNone, names(filterFixture())},
	}

	for _, tt := range tests {
		t.Run("sort "+tt.sort, func(t *testing.T) {
			got := ApplyResultOptions(filterFixture(), ResultOptions{Sort: tt.sort})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApplyResultOptions_NameIgnoresCase(t *testing.T) {
	cards := []models.Card{{Name: "zombie"}, {Name: "Angel"}, {Name: "bear"}}
	got := ApplyResultOptions(cards, ResultOptions{Sort: SortName})
	assert.Equal(t, []string{"Angel", "bear", "zombie"}, names(got))
}

func TestApplyResultOptions_DoesNotMutateInput(t *testing.T) {
	cards := filterFixture()
	_ = ApplyResultOptions(cards, ResultOptions{Sort: SortPriceHigh, Price: PriceUnder5})
	assert.Equal(t, names(filterFixture()), names(cards))
}

func TestResultOptions_Validate(t *testing.T) {
	assert.NoError(t, ResultOptions{}.Validate())
	assert.NoError(t, ResultOptions{Sort: SortRarity, Price: Price5To20}.Validate())
	assert.Error(t, ResultOptions{Sort: "newest"}.Validate())
	assert.Error(t, ResultOptions{Price: "cheap"}.Validate())
}
