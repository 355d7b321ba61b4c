package scraper

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]+content=["']([^"']*)["']|<meta[^>]+content=["']([^"']*)["'][^>]+name=["']description["']`)
	headingRe  = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	paraRe     = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	buttonRe   = regexp.MustCompile(`(?is)<button[^>]*>(.*?)</button>|<a[^>]+class=["'][^"']*(?:btn|button|cta)[^"']*["'][^>]*>(.*?)</a>`)
	imgRe      = regexp.MustCompile(`(?is)<img[^>]+src=["']([^"']+)["'][^>]*>`)
	imgAltRe   = regexp.MustCompile(`(?is)alt=["']([^"']*)["']`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptRe   = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// HTTPExtractor is the lightweight strategy: it fetches raw HTML with a
// descriptive User-Agent and extracts content via regular expressions.
// Used where spawning a browser is infeasible or disabled.
type HTTPExtractor struct {
	client        *http.Client
	userAgent     string
	maxBodyLength int
	logger        *slog.Logger
}

// NewHTTPExtractor creates the lightweight extractor. maxBodyLength caps
// the AllText field; values below 1 fall back to 10000.
func NewHTTPExtractor(timeout time.Duration, userAgent string, maxBodyLength int, logger *slog.Logger) *HTTPExtractor {
	if maxBodyLength < 1 {
		maxBodyLength = 10000
	}
	return &HTTPExtractor{
		client:        &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		maxBodyLength: maxBodyLength,
		logger:        logger.With("component", "scraper"),
	}
}

// Extract fetches the URL and builds a bounded ScrapedContent.
// Failures are reported as *FetchError.
func (e *HTTPExtractor) Extract(ctx context.Context, url string) (*ScrapedContent, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	const maxHTMLBytes = 5 << 20
	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLBytes))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	content := e.parse(url, string(rawBody))

	e.logger.InfoContext(ctx, "Page scraped",
		"url", url,
		"headings", len(content.Headings),
		"paragraphs", len(content.Paragraphs),
		"duration_ms", time.Since(start).Milliseconds())
	return content, nil
}

func (e *HTTPExtractor) parse(url, htmlBody string) *ScrapedContent {
	content := &ScrapedContent{URL: url}

	if m := titleRe.FindStringSubmatch(htmlBody); m != nil {
		content.Title = cleanText(m[1])
	}
	if m := metaDescRe.FindStringSubmatch(htmlBody); m != nil {
		desc := m[1]
		if desc == "" {
			desc = m[2]
		}
		content.MetaDescription = cleanText(desc)
	}

	for _, m := range headingRe.FindAllStringSubmatch(htmlBody, -1) {
		if h := cleanText(m[1]); h != "" {
			content.Headings = append(content.Headings, h)
		}
	}
	content.Headings = truncate(content.Headings, MaxHeadings)

	for _, m := range paraRe.FindAllStringSubmatch(htmlBody, -1) {
		if p := cleanText(m[1]); len(p) > MinParagraphLength {
			content.Paragraphs = append(content.Paragraphs, p)
		}
	}
	content.Paragraphs = truncate(content.Paragraphs, MaxParagraphs)

	for _, m := range buttonRe.FindAllStringSubmatch(htmlBody, -1) {
		label := m[1]
		if label == "" {
			label = m[2]
		}
		if b := cleanText(label); b != "" {
			content.Buttons = append(content.Buttons, b)
		}
	}
	content.Buttons = truncate(content.Buttons, MaxImages)

	for _, m := range imgRe.FindAllStringSubmatch(htmlBody, -1) {
		if len(content.Images) >= MaxImages {
			break
		}
		img := ImageInfo{URL: m[1]}
		if alt := imgAltRe.FindStringSubmatch(m[0]); alt != nil {
			img.Alt = cleanText(alt[1])
		}
		content.Images = append(content.Images, img)
	}

	stripped := scriptRe.ReplaceAllString(htmlBody, " ")
	allText := cleanText(stripped)
	if len(allText) > e.maxBodyLength {
		allText = allText[:e.maxBodyLength]
	}
	content.AllText = allText

	return content
}

// cleanText strips tags, decodes entities, and collapses whitespace.
func cleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
