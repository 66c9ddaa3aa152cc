// Package metrics provides Prometheus metrics for the oracle search backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Query Pipeline Metrics
	QueryClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_query_classifications_total",
			Help: "Raw queries by resolution path",
		},
		[]string{"path"}, // "literal", "descriptive"
	)

	TranslationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_translation_decisions_total",
			Help: "Where the executed query came from",
		},
		[]string{"source"}, // "literal", "cache", "model", "fallback"
	)

	SupersededRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_superseded_requests_total",
			Help: "Searches dropped because a newer search arrived for the same session",
		},
	)

	// LLM Metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_llm_requests_total",
			Help: "Total language model requests",
		},
		[]string{"provider", "purpose"}, // purpose: "translate", "deck"
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_llm_latency_seconds",
			Help:    "Language model call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	LLMErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_llm_errors_total",
			Help: "Language model errors by type",
		},
		[]string{"provider", "type"}, // "timeout", "api", "empty"
	)

	// Translation Cache Metrics
	TranslationCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_translation_cache_hits_total",
			Help: "Translation cache hit count",
		},
		[]string{"tier"}, // "memory", "store"
	)

	TranslationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_translation_cache_misses_total",
			Help: "Translation cache miss count",
		},
	)

	TranslationCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_translation_cache_errors_total",
			Help: "Translation cache store errors",
		},
		[]string{"op"}, // "get", "set", "prune"
	)

	TranslationCachePruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_translation_cache_pruned_total",
			Help: "Expired translation cache rows removed by the janitor",
		},
	)

	// Scryfall Metrics
	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_scryfall_requests_total",
			Help: "Scryfall API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "not_found", "error"
	)

	ScryfallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_scryfall_latency_seconds",
			Help:    "Scryfall API call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	// Deck Metrics
	DecksGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_decks_generated_total",
			Help: "Deck generation requests by format and result",
		},
		[]string{"format", "result"}, // result: "success", "failed"
	)
)
