package models

import "time"

// Deck formats accepted by deck generation.
const (
	DeckFormatCommander = "commander"
	DeckFormatStandard  = "sixty"
)

// GeneratedDeck is a deck list produced by the language model. Content is kept
// verbatim.
type GeneratedDeck struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Prompt    string    `json:"prompt" gorm:"not null"`
	Format    string    `json:"format" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"not null"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
