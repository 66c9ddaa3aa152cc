package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-oracle/internal/config"
	"github.com/codyseavey/mtg-oracle/internal/database"
	"github.com/codyseavey/mtg-oracle/internal/logger"
	"github.com/codyseavey/mtg-oracle/internal/query"
	"github.com/codyseavey/mtg-oracle/internal/services"
	"github.com/codyseavey/mtg-oracle/internal/session"
)

// app holds every long-lived dependency of the server.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	scryfall *services.ScryfallService
	resolver *services.QueryResolver
	search   *services.SearchService
	decks    *services.DeckService
	tracker  *session.Tracker
	janitor  *services.CacheJanitor
	closers  []func()
}

func newApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	db, err := database.Open(cfg.Database.Path, query.PromptVersion(), a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() { _ = database.Close(db) })

	completer, err := services.NewCompleter(ctx, cfg.LLM, a.log)
	switch {
	case errors.Is(err, services.ErrTranslatorDisabled):
		a.log.Warn("no LLM provider configured, descriptive queries are searched verbatim")
		completer = nil
	case err != nil:
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	default:
		a.log.Info("LLM provider ready",
			zap.String("provider", completer.Provider()),
			zap.String("model", completer.Model()))
	}

	cache, err := a.translationCache(ctx)
	if err != nil {
		return err
	}

	classifier := query.NewClassifier(query.DefaultRules(cfg.Classifier.ExtraKeywords...))
	a.resolver = services.NewQueryResolver(classifier, completer, cache, cfg.TranslationTimeout(), a.log)

	a.scryfall, err = services.NewScryfallService(
		cfg.Scryfall.BaseURL,
		time.Duration(cfg.Scryfall.TimeoutSec)*time.Second,
		cfg.Scryfall.RequestsPerSecond,
		a.log,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize scryfall client: %w", err)
	}
	a.search = services.NewSearchService(a.resolver, a.scryfall, a.log)

	a.decks, err = services.NewDeckService(db, completer, cfg.Deck.PromptFile, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize deck service: %w", err)
	}

	a.tracker = session.NewTracker(cfg.Session.MaxSessions, cfg.SessionIdle(), cfg.Debounce())
	return nil
}

// translationCache builds the two-tier cache. A nil cache disables caching.
func (a *app) translationCache(ctx context.Context) (*services.TranslationCache, error) {
	cfg := a.cfg
	if !cfg.Cache.Enabled {
		a.log.Info("translation cache disabled")
		return nil, nil
	}

	var store services.TranslationStore
	switch cfg.Cache.Driver {
	case "redis":
		rs, err := services.NewRedisTranslationStore(cfg.Cache.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			a.log.Warn("redis unreachable, cache will retry per request", zap.Error(err))
		}
		store = rs
	default:
		ss := services.NewSQLTranslationStore(a.db)
		a.janitor = services.NewCacheJanitor(ss, time.Duration(cfg.Cache.JanitorIntervalMin)*time.Minute, a.log)
		store = ss
	}

	cache, err := services.NewTranslationCache(store, cfg.Cache.LRUSize, cfg.CacheTTL(), query.PromptVersion(), a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translation cache: %w", err)
	}
	a.log.Info("translation cache ready",
		zap.String("driver", cfg.Cache.Driver),
		zap.Int("lru_size", cfg.Cache.LRUSize),
		zap.String("prompt_version", query.PromptVersion()))
	return cache, nil
}

// startBackground runs the cache janitor, restarting it after a panic.
func (a *app) startBackground(ctx context.Context) {
	if a.janitor == nil {
		return
	}
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						a.log.Error("panic in cache janitor, restarting in 30 seconds", zap.Any("panic", r))
					}
				}()
				a.janitor.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return
			case <-time.After(30 * time.Second):
				a.log.Info("cache janitor restarting after panic recovery")
			}
		}
	}()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.log.Sync()
}
