package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/codyseavey/mtg-oracle/internal/session"
)

// runResolve prints the resolution of the joined args without touching
// Scryfall. Handy for checking prompt changes against real phrases.
func runResolve(ctx context.Context, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.resolver.Resolve(ctx, strings.Join(args, " "), session.Ticket{})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
