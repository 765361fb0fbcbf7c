package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go-analyzer/internal/scraper"
)

// AnalysisError is the uniform failure for the analyze pipeline. Reason is
// the stable, human-readable stage message surfaced to the caller.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Result is the final output of one analysis.
type Result struct {
	URL       string   `json:"url"`
	Questions []string `json:"questions"`
}

// Fetcher downloads raw HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// QuestionGenerator turns page text into a question set.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string) []string
}

// SiteAnalyzer runs the fetch -> extract -> generate pipeline. Retries live
// inside the fetcher; each stage here fails fast.
type SiteAnalyzer struct {
	fetcher   Fetcher
	generator QuestionGenerator
}

func NewSiteAnalyzer(fetcher Fetcher, generator QuestionGenerator) *SiteAnalyzer {
	return &SiteAnalyzer{fetcher: fetcher, generator: generator}
}

// Analyze downloads the page, extracts its text and generates questions.
func (a *SiteAnalyzer) Analyze(ctx context.Context, url string) (*Result, error) {
	log.Printf("[Analyzer] Starting analysis of %s", url)

	html, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &AnalysisError{Reason: "failed to fetch site", Err: err}
	}

	text := scraper.ExtractText(html)
	if strings.TrimSpace(text) == "" {
		return nil, &AnalysisError{Reason: "could not extract text from site"}
	}
	log.Printf("[Analyzer] Extracted %d characters of text", len(text))

	// Oversize pages: prefer the readable main content over blind
	// truncation of boilerplate-heavy full text.
	if len(text) > maxPromptTextLength {
		if condensed, err := scraper.ExtractMainContent(html, url); err == nil && strings.TrimSpace(condensed) != "" {
			log.Printf("[Analyzer] Condensed %d -> %d characters via readability", len(text), len(condensed))
			text = condensed
		}
	}

	questions := a.generator.Generate(ctx, text)

	log.Printf("[Analyzer] Analysis of %s complete", url)
	return &Result{URL: url, Questions: questions}, nil
}
