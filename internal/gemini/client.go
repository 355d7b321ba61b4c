// Package gemini implements the text-model integration used for website
// analysis and chat replies, on top of Google's genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/adcraft-ai/adcraft/internal/config"
)

// Turn is one prior conversation message passed as chat context.
type Turn struct {
	Role string // "user" or "assistant"
	Text string
}

// Client defines the text-model operations used throughout the application.
type Client interface {
	// AnalyzeContent sends an analysis prompt, optionally with a page
	// screenshot for visual analysis, and returns the raw model text.
	AnalyzeContent(ctx context.Context, prompt string, screenshot []byte) (string, error)

	// GenerateChatReply sends prior turns plus the current user message and
	// returns the assistant reply text.
	GenerateChatReply(ctx context.Context, history []Turn, message string) (string, error)
}

type sdkClient struct {
	genaiClient      *genai.Client
	log              *slog.Logger
	contentConfig    *genai.GenerateContentConfig
	defaultModelName string
	maxRetries       int
	retryDelay       time.Duration
}

// NewClient creates a new Gemini text client with the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", config.ErrConfiguration)
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	baseCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.TextModel)
	return &sdkClient{
		genaiClient:      gi,
		log:              logger,
		contentConfig:    baseCfg,
		defaultModelName: cfg.TextModel,
		maxRetries:       cfg.MaxRetries,
		retryDelay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.defaultModelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call", "delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

func (c *sdkClient) AnalyzeContent(ctx context.Context, prompt string, screenshot []byte) (string, error) {
	c.log.DebugContext(ctx, "Analyzing content", "prompt_len", len(prompt), "screenshot_bytes", len(screenshot))

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(screenshot) > 0 {
		parts = append(parts, genai.NewPartFromBytes(screenshot, "image/png"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini analysis failed", "error", err)
		return "", err
	}

	return c.extractTextFromResponse(ctx, resp, "analysis")
}

func (c *sdkClient) GenerateChatReply(ctx context.Context, history []Turn, message string) (string, error) {
	c.log.DebugContext(ctx, "Generating chat reply", "history_len", len(history))

	var contents []*genai.Content
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := c.generateContentWithRetries(ctx, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini chat reply failed", "error", err)
		return "", err
	}

	return c.extractTextFromResponse(ctx, resp, "chat_reply")
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse, op string) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "operation", op, "reason", reasonMsg)
		return "", fmt.Errorf("%s blocked by safety filter: %s", op, reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "operation", op, "finish_reason", finishReason)
		return "", fmt.Errorf("%s returned no content, finish reason: %s", op, finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s returned empty text", op)
	}
	return text, nil
}
