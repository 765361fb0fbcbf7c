package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestScraper returns a scraper with backoff shrunk so retry tests run fast.
func newTestScraper(timeout time.Duration, maxRetries int) *Scraper {
	s := NewScraper(timeout, maxRetries)
	s.backoffBase = 5 * time.Millisecond
	s.backoffMax = 20 * time.Millisecond
	return s
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("expected browser-like User-Agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>content</p></body></html>"))
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, 3)
	html, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(html, "<p>content</p>") {
		t.Errorf("unexpected body: %q", html)
	}
}

func TestFetch_NoRetryOn404(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, 3)
	_, err := s.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if !fe.Permanent {
		t.Errorf("404 should be permanent")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should mention status: %v", err)
	}
}

func TestFetch_RetriesTimeoutsThreeTimes(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	s := newTestScraper(20*time.Millisecond, 3)
	_, err := s.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Permanent {
		t.Errorf("timeout should be transient")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}

func TestFetch_NonHTMLContentTypeIsPermanent(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not": "html"}`))
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, 3)
	_, err := s.Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "unsupported content type") {
		t.Fatalf("expected content-type error, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("content-type mismatch should not be retried, got %d attempts", got)
	}
}

func TestFetch_EmptyBodyIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, 3)
	_, err := s.Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "empty HTML content") {
		t.Fatalf("expected empty-body error, got %v", err)
	}
	if fe, ok := err.(*FetchError); !ok || !fe.Permanent {
		t.Errorf("empty body should be a permanent failure")
	}
}

func TestFetch_ContextCancelStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	s := newTestScraper(20*time.Millisecond, 3)
	s.backoffBase = time.Minute // retries should never get this far

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Fetch(ctx, srv.URL)
	if err == nil {
		t.Fatalf("expected error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation did not interrupt backoff, took %s", elapsed)
	}
}

func TestExtractText_StrictMinimumLength(t *testing.T) {
	longText := strings.Repeat("This site sells tools. ", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>" + longText + "</p></body></html>"))
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, 3)
	text, err := s.ExtractText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "This site sells tools.") {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtractText_TooShortFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>tiny</p></body></html>"))
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, 3)
	_, err := s.ExtractText(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "could not extract enough text") {
		t.Fatalf("expected minimum-length error, got %v", err)
	}
}
