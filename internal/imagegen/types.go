// Package imagegen drives the Gemini image-generation REST endpoint: one
// image per call, looped for multi-variant requests, with role-tagged
// reference images and tolerant response parsing.
package imagegen

import (
	"errors"
	"fmt"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/creative"
)

// ErrNoImages marks a call that succeeded at the HTTP level but produced no
// image content. Distinct from a transport or API failure.
var ErrNoImages = errors.New("backend returned success but no image content")

// GenerationError is returned when, after all attempts, zero images were
// produced.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation produced no images after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Request describes one multi-variant generation job.
type Request struct {
	Prompt         string
	NegativePrompt string
	References     []creative.Reference
	AspectRatio    creative.Ratio
	Count          int
	Language       analysis.Language
}

// Image is one produced image together with the exact prompt text that
// generated it (including any per-variant suffix), for reproducibility.
type Image struct {
	Data     []byte
	MimeType string
	Prompt   string
}

// Wire DTOs for the generateContent REST endpoint.

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
	NegativePrompt     string       `json:"negativePrompt,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}
