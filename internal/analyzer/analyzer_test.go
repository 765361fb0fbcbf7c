package analyzer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeFetcher struct {
	html string
	err  error
	url  string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.url = url
	return f.html, f.err
}

func TestAnalyze_FullPipeline(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html><body><script>x</script><p>Hello  world</p></body></html>"}
	gw := &fakeGateway{response: validResponse()}
	a := NewSiteAnalyzer(fetcher, NewGenerator(gw))

	result, err := a.Analyze(context.Background(), "http://example.com")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.URL != "http://example.com" {
		t.Errorf("unexpected URL: %q", result.URL)
	}
	want := []string{"A", "B", "C", "D", "E"}
	if !reflect.DeepEqual(result.Questions, want) {
		t.Errorf("expected %v, got %v", want, result.Questions)
	}
	if !strings.Contains(gw.systemPrompt, "Hello world") {
		t.Errorf("extracted text not passed to generator: %q", gw.systemPrompt)
	}
}

func TestAnalyze_LLMFailureStillSucceedsWithFallback(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html><body><p>Hello  world</p></body></html>"}
	gw := &fakeGateway{err: errors.New("provider down")}
	a := NewSiteAnalyzer(fetcher, NewGenerator(gw))

	result, err := a.Analyze(context.Background(), "http://example.com")
	if err != nil {
		t.Fatalf("fallback path must not fail the analysis: %v", err)
	}
	if !reflect.DeepEqual(result.Questions, FallbackQuestions()) {
		t.Errorf("expected fallback set, got %v", result.Questions)
	}
}

func TestAnalyze_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("HTTP 404: Not Found")}
	a := NewSiteAnalyzer(fetcher, NewGenerator(nil))

	_, err := a.Analyze(context.Background(), "http://example.com/missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	var ae *AnalysisError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AnalysisError, got %T", err)
	}
	if ae.Reason != "failed to fetch site" {
		t.Errorf("unexpected reason: %q", ae.Reason)
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("cause should be preserved: %v", err)
	}
}

func TestAnalyze_BlankTextFails(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html><body><script>var x = 1;</script></body></html>"}
	a := NewSiteAnalyzer(fetcher, NewGenerator(nil))

	_, err := a.Analyze(context.Background(), "http://example.com")
	if err == nil {
		t.Fatalf("expected error for script-only page")
	}
	if !strings.Contains(err.Error(), "could not extract text from site") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAnalyze_OversizePagePrefersMainContent(t *testing.T) {
	// Build a page whose full text blows the prompt budget but whose
	// article body is compact.
	var b strings.Builder
	b.WriteString("<html><body><nav>")
	// nav is stripped by ExtractText, so bulk the body itself
	b.WriteString("</nav><article><h1>Store policies</h1>")
	for i := 0; i < 40; i++ {
		b.WriteString("<p>Returns are accepted within thirty days of delivery with the original receipt.</p>")
	}
	b.WriteString("</article><div>")
	b.WriteString(strings.Repeat("filler text segment ", 600))
	b.WriteString("</div></body></html>")

	fetcher := &fakeFetcher{html: b.String()}
	gw := &fakeGateway{response: validResponse()}
	a := NewSiteAnalyzer(fetcher, NewGenerator(gw))

	if _, err := a.Analyze(context.Background(), "http://shop.example/policies"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(gw.systemPrompt, "Returns are accepted") {
		t.Errorf("main content missing from prompt")
	}
}
