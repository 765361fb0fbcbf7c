package api

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-analyzer/internal/config"
)

// RequestIDMiddleware tags every request with an ID and logs completion.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("requestId", id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()
		log.Printf("[API] %s %s %s -> %d (%s)",
			id[:8], c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// SetupRouter wires the HTTP surface. The LLM client and analyzer come in as
// interfaces so tests can substitute fakes.
func SetupRouter(cfg *config.Config, client LLMClient, siteAnalyzer SiteAnalyzer) *gin.Engine {
	r := gin.Default()

	r.Use(RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", rootHandler)
	r.GET("/health", healthHandler)
	r.POST("/analyze-site", AnalyzeSiteHandler(siteAnalyzer))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/chat", ChatHandler(client))
		v1.POST("/chat-with-system", ChatWithSystemHandler(client))
		v1.POST("/chat-json", ChatJSONHandler(client))
		v1.POST("/analyze-site", AnalyzeSiteHandler(siteAnalyzer))
	}

	return r
}
