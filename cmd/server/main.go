package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"go-analyzer/internal/analyzer"
	"go-analyzer/internal/api"
	"go-analyzer/internal/config"
	"go-analyzer/internal/llm"
	"go-analyzer/internal/scraper"
)

func main() {
	cfg := config.Load()

	// The pass-through chat endpoints cannot run without a provider key.
	client, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("[Main] LLM client initialized (model %s)", cfg.OpenAI.Model)

	// The analyzer carries its own gateway so that question generation can
	// degrade to the fallback set instead of taking the whole service down.
	var gateway analyzer.Gateway
	if analyzerClient, err := llm.NewClient(cfg.OpenAI); err != nil {
		log.Printf("[Main] WARNING: LLM unavailable for site analysis, will serve fallback questions: %v", err)
	} else {
		gateway = analyzerClient
	}

	pageScraper := scraper.NewScraper(
		time.Duration(cfg.Scraper.TimeoutSeconds)*time.Second,
		cfg.Scraper.MaxRetries,
	)
	siteAnalyzer := analyzer.NewSiteAnalyzer(pageScraper, analyzer.NewGenerator(gateway))

	r := api.SetupRouter(cfg, client, siteAnalyzer)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s\n", addr)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
