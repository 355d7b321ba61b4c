// Package scraper turns a product URL into a bounded structured summary of
// the page content. Two interchangeable strategies are provided: a
// lightweight HTML fetch and a full browser render. Output is truncated to
// fixed caps to bound downstream prompt size.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Output caps. These bound the token budget of prompts built from the
// scraped content and must not be raised casually.
const (
	MaxHeadings        = 10
	MaxParagraphs      = 20
	MaxImages          = 10
	MinParagraphLength = 20
)

// ImageInfo describes one image found on the page.
type ImageInfo struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// ScrapedContent is the bounded structured summary of one page. It is
// ephemeral: built per analysis request and discarded once the prompt has
// been assembled.
type ScrapedContent struct {
	URL             string      `json:"url"`
	Title           string      `json:"title"`
	MetaDescription string      `json:"meta_description"`
	Headings        []string    `json:"headings"`
	Paragraphs      []string    `json:"paragraphs"`
	Buttons         []string    `json:"buttons"`
	Images          []ImageInfo `json:"images"`
	AllText         string      `json:"all_text"`

	// Screenshot is a full-page PNG capture, present only when the browser
	// strategy produced the content.
	Screenshot []byte `json:"-"`
}

// FetchError indicates the page could not be fetched over HTTP
// (network failure, timeout, or non-2xx status).
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError indicates the headless browser failed to navigate or render
// the page.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Extractor extracts bounded page content from a URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (*ScrapedContent, error)
}

// cachingExtractor memoizes successful extractions per URL for a short TTL,
// so a chat confirmation turn does not re-scrape the page it just offered
// to analyze.
type cachingExtractor struct {
	inner  Extractor
	cache  *gocache.Cache
	logger *slog.Logger
}

// WithCache wraps an extractor with a TTL cache keyed by URL.
// A non-positive TTL disables caching and returns the extractor unchanged.
func WithCache(inner Extractor, ttl time.Duration, logger *slog.Logger) Extractor {
	if ttl <= 0 {
		return inner
	}
	return &cachingExtractor{
		inner:  inner,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger.With("component", "scrape_cache"),
	}
}

func (c *cachingExtractor) Extract(ctx context.Context, url string) (*ScrapedContent, error) {
	if cached, ok := c.cache.Get(url); ok {
		c.logger.DebugContext(ctx, "Scrape cache hit", "url", url)
		return cached.(*ScrapedContent), nil
	}

	content, err := c.inner.Extract(ctx, url)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(url, content)
	return content, nil
}

// truncate clips a string slice to at most max entries.
func truncate(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
