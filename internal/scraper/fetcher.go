package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMaxSizeMB   = 10
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	initialBackoff     = 2 * time.Second
	maxBackoff         = 10 * time.Second
	minExtractedLength = 50
)

// FetchError describes a failed page download. Permanent failures (bad
// status, wrong content type, empty body) are not retried; transient ones
// (network errors, timeouts) are.
type FetchError struct {
	URL       string
	Permanent bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Scraper downloads web pages with bounded retries and extracts their text.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	maxRetries int
	maxSizeMB  int

	// backoff knobs, shrunk by tests
	backoffBase time.Duration
	backoffMax  time.Duration
}

// NewScraper creates a scraper with the given per-attempt timeout and total
// attempt count (3 attempts means 1 try + 2 retries).
func NewScraper(timeout time.Duration, maxRetries int) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &Scraper{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent:   defaultUserAgent,
		maxRetries:  maxRetries,
		maxSizeMB:   defaultMaxSizeMB,
		backoffBase: initialBackoff,
		backoffMax:  maxBackoff,
	}
}

// Fetch retrieves the raw HTML for a URL. Transient failures are retried
// with exponential backoff (2s doubling, capped at 10s) up to the configured
// attempt count; permanent failures surface immediately.
func (s *Scraper) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr *FetchError
	backoff := s.backoffBase

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		html, err := s.fetchOnce(ctx, url)
		if err == nil {
			log.Printf("[Fetcher] Downloaded %d characters of HTML from %s", len(html), url)
			return html, nil
		}

		lastErr = err
		if err.Permanent {
			return "", err
		}
		if attempt == s.maxRetries {
			break
		}

		log.Printf("[Fetcher] WARNING: attempt %d/%d for %s failed: %v, retrying in %s",
			attempt, s.maxRetries, url, err.Err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", &FetchError{URL: url, Err: ctx.Err()}
		}
		backoff *= 2
		if backoff > s.backoffMax {
			backoff = s.backoffMax
		}
	}

	return "", lastErr
}

// fetchOnce performs a single download attempt.
func (s *Scraper) fetchOnce(ctx context.Context, url string) (string, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Permanent: true, Err: err}
	}

	// Browser-like headers to reduce blocklisting by target servers
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are the retryable class
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, Permanent: true,
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", &FetchError{URL: url, Permanent: true,
			Err: fmt.Errorf("unsupported content type: %s", contentType)}
	}

	maxBytes := int64(s.maxSizeMB * 1024 * 1024)
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) >= maxBytes {
		return "", &FetchError{URL: url, Permanent: true,
			Err: fmt.Errorf("content exceeds size limit of %dMB", s.maxSizeMB)}
	}
	if len(body) == 0 {
		return "", &FetchError{URL: url, Permanent: true, Err: fmt.Errorf("empty HTML content")}
	}

	return string(body), nil
}

// ExtractText fetches a page and returns its normalized visible text,
// applying the strict minimum-length check. The analyze pipeline uses Fetch
// plus the pure extractor instead, with its weaker non-blank rule.
func (s *Scraper) ExtractText(ctx context.Context, url string) (string, error) {
	html, err := s.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	text := ExtractText(html)
	if len(strings.TrimSpace(text)) < minExtractedLength {
		return "", fmt.Errorf("could not extract enough text from %s", url)
	}
	return text, nil
}
