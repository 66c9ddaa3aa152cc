package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/mtg-oracle/internal/metrics"
	"github.com/codyseavey/mtg-oracle/internal/query"
	"github.com/codyseavey/mtg-oracle/internal/session"
)

// Resolution paths.
const (
	PathLiteral     = "literal"
	PathDescriptive = "descriptive"
)

// Where the executed query came from.
const (
	SourceLiteral  = "literal"
	SourceCache    = "cache"
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Resolution is the outcome of turning a raw phrase into the query that is
// actually sent to Scryfall.
type Resolution struct {
	Raw           string `json:"raw"`
	Query         string `json:"query"`
	Path          string `json:"path"`
	ModelOutput   string `json:"model_output,omitempty"`
	Source        string `json:"source"`
	FallbackUsed  bool   `json:"fallback_used"`
	PromptVersion string `json:"prompt_version"`
}

// QueryResolver runs the classify, translate, canonicalize, validate pipeline.
// Translation problems never surface as errors; the raw input is used instead.
type QueryResolver struct {
	classifier *query.Classifier
	completer  Completer
	cache      *TranslationCache
	timeout    time.Duration
	version    string
	log        *zap.Logger
	group      singleflight.Group
}

// NewQueryResolver wires the pipeline. completer and cache may be nil: without
// a completer every descriptive query falls back to the raw input.
func NewQueryResolver(classifier *query.Classifier, completer Completer, cache *TranslationCache, timeout time.Duration, log *zap.Logger) *QueryResolver {
	if classifier == nil {
		classifier = query.NewClassifier(query.DefaultRules())
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &QueryResolver{
		classifier: classifier,
		completer:  completer,
		cache:      cache,
		timeout:    timeout,
		version:    query.PromptVersion(),
		log:        log,
	}
}

// Resolve produces the structured query for raw. The only errors are
// session.ErrSuperseded, when a newer search from the same session arrived
// during the debounce window, and the caller's own context errors.
func (r *QueryResolver) Resolve(ctx context.Context, raw string, ticket session.Ticket) (Resolution, error) {
	res := Resolution{Raw: raw, PromptVersion: r.version}

	if r.classifier.IsLikelyCardName(raw) {
		metrics.QueryClassifications.WithLabelValues(PathLiteral).Inc()
		res.Path = PathLiteral
		res.Query = raw
		res.Source = SourceLiteral
		r.record(res)
		return res, nil
	}

	metrics.QueryClassifications.WithLabelValues(PathDescriptive).Inc()
	res.Path = PathDescriptive

	if r.cache != nil {
		if out, ok := r.cache.Get(ctx, raw); ok {
			if candidate := query.Canonicalize(out); query.IsUsable(candidate) {
				res.ModelOutput = out
				res.Query = candidate
				res.Source = SourceCache
				r.record(res)
				return res, nil
			}
		}
	}

	if r.completer == nil {
		return r.fallback(res), nil
	}

	// Only descriptive phrases cost a model call, so only they wait out the
	// typing debounce.
	if err := ticket.Settle(ctx); err != nil {
		return res, err
	}

	out, err := r.translate(ctx, raw)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		r.log.Warn("translation failed, using raw query",
			zap.String("raw", raw), zap.Error(err))
		return r.fallback(res), nil
	}
	res.ModelOutput = out

	candidate := query.Canonicalize(out)
	if !query.IsUsable(candidate) {
		r.log.Info("translation unusable, using raw query",
			zap.String("raw", raw), zap.String("model_output", out))
		return r.fallback(res), nil
	}

	if r.cache != nil {
		r.cache.Put(ctx, raw, out)
	}
	res.Query = candidate
	res.Source = SourceModel
	r.record(res)
	return res, nil
}

// translate calls the model once per distinct phrase, no matter how many
// requests are waiting on it. The shared call outlives any single caller's
// cancellation but is bounded by the translation timeout.
func (r *QueryResolver) translate(ctx context.Context, raw string) (string, error) {
	key := query.Fold(raw)
	if r.cache != nil {
		key = r.cache.Key(raw)
	}

	ch := r.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.completer.Complete(callCtx, CompletionRequest{
			System:      query.TranslationPrompt,
			User:        query.TranslationUserMessage(raw),
			Temperature: query.TranslationTemperature,
			Purpose:     "translate",
		})
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return "", result.Err
		}
		out, _ := result.Val.(string)
		if out == "" {
			return "", ErrEmptyCompletion
		}
		return out, nil
	}
}

func (r *QueryResolver) fallback(res Resolution) Resolution {
	res.Query = res.Raw
	res.Source = SourceFallback
	res.FallbackUsed = true
	r.record(res)
	return res
}

func (r *QueryResolver) record(res Resolution) {
	metrics.TranslationDecisions.WithLabelValues(res.Source).Inc()
	r.log.Debug("query resolved",
		zap.String("raw", res.Raw),
		zap.String("query", res.Query),
		zap.String("path", res.Path),
		zap.String("source", res.Source))
}

// IsSuperseded reports whether err means a newer search replaced this one.
func IsSuperseded(err error) bool {
	return errors.Is(err, session.ErrSuperseded)
}
