package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-analyzer/internal/analyzer"
)

// LLMClient is the gateway surface the pass-through endpoints use.
type LLMClient interface {
	Chat(ctx context.Context, prompt string) (string, error)
	ChatWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	ChatJSON(ctx context.Context, systemPrompt, userPrompt string) (map[string]interface{}, error)
}

// SiteAnalyzer is the analysis pipeline surface.
type SiteAnalyzer interface {
	Analyze(ctx context.Context, url string) (*analyzer.Result, error)
}

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "LLM API is running", "version": "1.0.0"})
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "LLM API"})
}

// ChatHandler forwards a single-prompt request to the LLM.
func ChatHandler(client LLMClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Prompt string `json:"prompt" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
			return
		}

		response, err := client.Chat(c.Request.Context(), req.Prompt)
		if err != nil {
			log.Printf("[API] ERROR: chat request failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("error while executing request: %v", err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": response})
	}
}

// ChatWithSystemHandler forwards a system+user prompt pair.
func ChatWithSystemHandler(client LLMClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SystemPrompt string `json:"system_prompt" binding:"required"`
			UserPrompt   string `json:"user_prompt" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
			return
		}

		response, err := client.ChatWithSystem(c.Request.Context(), req.SystemPrompt, req.UserPrompt)
		if err != nil {
			log.Printf("[API] ERROR: chat request with system prompt failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("error while executing request: %v", err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": response})
	}
}

// ChatJSONHandler forwards a JSON-structured chat call. A non-empty
// json_standard is appended to the system prompt before the call.
func ChatJSONHandler(client LLMClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SystemPrompt string `json:"system_prompt" binding:"required"`
			UserPrompt   string `json:"user_prompt" binding:"required"`
			JSONStandard string `json:"json_standard"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
			return
		}

		systemPrompt := req.SystemPrompt
		if req.JSONStandard != "" {
			systemPrompt = fmt.Sprintf("%s\n\nJSON standard: %s", systemPrompt, req.JSONStandard)
		}

		response, err := client.ChatJSON(c.Request.Context(), systemPrompt, req.UserPrompt)
		if err != nil {
			log.Printf("[API] ERROR: JSON chat request failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("error while executing JSON request: %v", err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": response})
	}
}

// AnalyzeSiteHandler runs the page-to-questions pipeline. Core failures map
// to 400; a generator fallback is invisible and still returns 200.
func AnalyzeSiteHandler(siteAnalyzer SiteAnalyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
			return
		}

		log.Printf("[API] Analyze request for %s", req.URL)
		result, err := siteAnalyzer.Analyze(c.Request.Context(), req.URL)
		if err != nil {
			log.Printf("[API] ERROR: analysis of %s failed: %v", req.URL, err)
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("error while analyzing site: %v", err)})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
