package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// pageExtractJS collects the structured fields from the rendered DOM.
// The slice caps mirror the package-level truncation limits.
const pageExtractJS = `(() => {
	const text = el => (el && el.textContent || '').replace(/\s+/g, ' ').trim();
	const headings = [...document.querySelectorAll('h1, h2, h3')].map(text).filter(Boolean).slice(0, 10);
	const paragraphs = [...document.querySelectorAll('p')].map(text).filter(t => t.length > 20).slice(0, 20);
	const buttons = [...document.querySelectorAll('button, a.btn, a.button, [class*="cta"]')].map(text).filter(Boolean).slice(0, 10);
	const images = [...document.querySelectorAll('img[src]')].slice(0, 10).map(img => ({url: img.src, alt: img.alt || ''}));
	const meta = document.querySelector('meta[name="description"]');
	return {
		title: document.title || '',
		meta_description: meta ? (meta.getAttribute('content') || '') : '',
		headings, paragraphs, buttons, images,
		all_text: (document.body && document.body.innerText || '').replace(/\s+/g, ' ').trim().slice(0, 10000)
	};
})()`

// BrowserExtractor is the full-render strategy: it loads the URL in a
// headless browser, extracts DOM-computed content, and captures a full-page
// screenshot for visual analysis.
type BrowserExtractor struct {
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// NewBrowserExtractor creates the full-render extractor.
func NewBrowserExtractor(timeout time.Duration, userAgent string, logger *slog.Logger) *BrowserExtractor {
	return &BrowserExtractor{
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logger.With("component", "browser_scraper"),
	}
}

// Extract renders the URL and builds a ScrapedContent with a screenshot.
// The browser process is scoped to this call: the deferred cancels tear it
// down on every exit path. Failures are reported as *RenderError.
func (e *BrowserExtractor) Extract(ctx context.Context, url string) (*ScrapedContent, error) {
	start := time.Now()

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, e.timeout)
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(timeoutCtx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.UserAgent(e.userAgent),
			chromedp.WindowSize(1280, 1024),
		)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	content := &ScrapedContent{URL: url}
	var screenshot []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(pageExtractJS, content),
		chromedp.FullScreenshot(&screenshot, 80),
	)
	if err != nil {
		return nil, &RenderError{URL: url, Err: err}
	}

	content.URL = url
	content.Screenshot = screenshot

	e.logger.InfoContext(ctx, "Page rendered",
		"url", url,
		"headings", len(content.Headings),
		"paragraphs", len(content.Paragraphs),
		"screenshot_bytes", len(screenshot),
		"duration_ms", time.Since(start).Milliseconds())
	return content, nil
}
