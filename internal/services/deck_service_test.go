package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-oracle/internal/database"
	"github.com/codyseavey/mtg-oracle/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "oracle.db"), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestDeckUserMessage(t *testing.T) {
	assert.Equal(t, "Build a 100-card Commander deck: vampire lifegain", DeckUserMessage("vampire lifegain", true))
	assert.Equal(t, "Build a 60-card deck: mono-blue control", DeckUserMessage("mono-blue control", false))
}

func TestDeckService_GenerateAndGet(t *testing.T) {
	db := openTestDB(t)
	c := &fakeCompleter{reply: "1 Sol Ring\n99 Island"}
	svc, err := NewDeckService(db, c, "", zap.NewNop())
	require.NoError(t, err)

	deck, err := svc.Generate(context.Background(), "  mono-blue control ", true)
	require.NoError(t, err)

	assert.NotEmpty(t, deck.ID)
	assert.Equal(t, "mono-blue control", deck.Prompt)
	assert.Equal(t, models.DeckFormatCommander, deck.Format)
	assert.Equal(t, "1 Sol Ring\n99 Island", deck.Content)
	assert.Equal(t, "fake", deck.Provider)

	c.mu.Lock()
	assert.Equal(t, "Build a 100-card Commander deck: mono-blue control", c.lastReq.User)
	assert.InDelta(t, 0.7, c.lastReq.Temperature, 0.0001)
	assert.Equal(t, defaultDeckPrompt, c.lastReq.System)
	c.mu.Unlock()

	got, err := svc.Get(context.Background(), deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.Content, got.Content)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestDeckService_Errors(t *testing.T) {
	db := openTestDB(t)

	svc, err := NewDeckService(db, &fakeCompleter{err: errors.New("boom")}, "", zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "   ", false)
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = svc.Generate(context.Background(), "elves", false)
	assert.ErrorIs(t, err, ErrDeckGeneration)

	disabled, err := NewDeckService(db, nil, "", zap.NewNop())
	require.NoError(t, err)
	_, err = disabled.Generate(context.Background(), "elves", false)
	assert.ErrorIs(t, err, ErrDeckGeneration)
	assert.ErrorIs(t, err, ErrTranslatorDisabled)
}

func TestNewDeckService_PromptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck_prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("\nBuild decks.\n"), 0o600))

	c := &fakeCompleter{reply: "4 Llanowar Elves"}
	svc, err := NewDeckService(openTestDB(t), c, path, zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "elves", false)
	require.NoError(t, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, "Build decks.", c.lastReq.System)

	_, err = NewDeckService(nil, c, filepath.Join(t.TempDir(), "missing.txt"), zap.NewNop())
	assert.Error(t, err)
}
