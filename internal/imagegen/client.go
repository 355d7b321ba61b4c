package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adcraft-ai/adcraft/internal/config"
	"github.com/adcraft-ai/adcraft/internal/creative"
)

// referenceOrder fixes the order reference images appear in the payload:
// template first, then logo, then person, each preceded by its role label,
// with the text prompt as the last part.
var referenceOrder = []creative.ReferenceRole{
	creative.RoleTemplate,
	creative.RoleLogo,
	creative.RolePerson,
}

// Backend issues one generation call producing at most one image.
// Implemented by Client; stubbed in tests and by the orchestrator's callers.
type Backend interface {
	GenerateOne(ctx context.Context, prompt, negativePrompt string, refs []creative.Reference, ratio creative.Ratio) (*Image, error)
}

// Client talks to the Gemini generateContent REST endpoint directly. The
// raw endpoint is used instead of the SDK because response shapes vary
// across API revisions and the extractor list needs the raw body.
type Client struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates the REST image client.
func NewClient(cfg config.GeminiConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger.With("component", "imagegen"),
	}
}

// buildParts assembles the multimodal payload: labeled reference images in
// fixed role order, then the text prompt last.
func buildParts(prompt string, refs []creative.Reference) []part {
	var parts []part
	for _, role := range referenceOrder {
		for _, ref := range refs {
			if ref.Role != role {
				continue
			}
			parts = append(parts,
				part{Text: creative.RoleLabel(ref.Role)},
				part{InlineData: &blob{
					Data:     base64.StdEncoding.EncodeToString(ref.Data),
					MimeType: ref.MimeType,
				}},
			)
		}
	}
	return append(parts, part{Text: prompt})
}

// GenerateOne issues a single generation call and returns the first image
// it produced. The request is authenticated fresh on every call; no
// credential state is cached across calls.
func (c *Client) GenerateOne(ctx context.Context, prompt, negativePrompt string, refs []creative.Reference, ratio creative.Ratio) (*Image, error) {
	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: buildParts(prompt, refs)}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &imageConfig{AspectRatio: string(ratio)},
			NegativePrompt:     negativePrompt,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.APIVersion, c.cfg.ImageModel)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image generation request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	images := extractImages(rawBody)
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	img := images[0]
	img.Prompt = prompt
	return &img, nil
}
