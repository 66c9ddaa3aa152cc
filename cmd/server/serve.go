package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/api"
	"github.com/codyseavey/mtg-oracle/internal/api/handlers"
)

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	a.startBackground(ctx)

	router := api.SetupRouter(a.cfg.HTTP, api.Handlers{
		Cards: handlers.NewCardHandler(a.search, a.scryfall, a.tracker, a.log),
		Query: handlers.NewQueryHandler(a.resolver, a.tracker),
		Decks: handlers.NewDeckHandler(a.decks),
	}, a.log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", zap.Int("port", a.cfg.HTTP.Port), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	a.log.Info("shutting down server")

	// Give outstanding requests a deadline to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("server forced to shutdown", zap.Error(err))
	}

	a.log.Info("server exited")
	return nil
}
