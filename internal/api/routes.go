package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/api/handlers"
	"github.com/codyseavey/mtg-oracle/internal/config"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Cards *handlers.CardHandler
	Query *handlers.QueryHandler
	Decks *handlers.DeckHandler
}

func SetupRouter(cfg config.HTTPConfig, h Handlers, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", handlers.SessionHeader}
	corsConfig.ExposeHeaders = []string{handlers.RequestHeader}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("/search", h.Cards.SearchCards)
			cards.GET("/:id", h.Cards.GetCard)
			cards.GET("/:id/printings", h.Cards.GetPrintings)
		}

		api.GET("/query/resolve", h.Query.Resolve)

		decks := api.Group("/decks")
		{
			decks.POST("", h.Decks.GenerateDeck)
			decks.GET("/:id", h.Decks.GetDeck)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/vite.svg", filepath.Join(frontendPath, "vite.svg"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
