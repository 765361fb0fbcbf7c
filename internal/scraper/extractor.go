package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ExtractText strips an HTML document down to normalized visible text. It is
// a pure function and never fails: if the document cannot be parsed at all,
// the raw input comes back unchanged rather than an error.
func ExtractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	// Remove non-content elements; comment nodes carry no text nodes and
	// never reach the output.
	doc.Find("script, style, nav, header, footer, aside").Remove()

	return normalizeWhitespace(doc.Text())
}

// normalizeWhitespace collapses the ragged text goquery produces: per-line
// trim, double-space fragment splitting, then a final single-space join.
func normalizeWhitespace(text string) string {
	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, fragment := range strings.Split(line, "  ") {
			if fragment = strings.TrimSpace(fragment); fragment != "" {
				fragments = append(fragments, fragment)
			}
		}
	}
	joined := strings.Join(fragments, " ")
	return strings.Join(strings.Fields(joined), " ")
}

// ExtractMainContent condenses a page to its readable article text. Used
// only when the full-page text would blow the prompt budget; any failure is
// the caller's cue to fall back to the full text.
func ExtractMainContent(html, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return "", err
	}
	return normalizeWhitespace(article.TextContent), nil
}
