package imagegen

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/adcraft-ai/adcraft/internal/creative"
)

// Orchestrator turns one multi-variant Request into N sequential backend
// calls. The backend produces at most one image per call, so the fan-out
// loop here is the unit of batching; it stays sequential and rate-limited.
type Orchestrator struct {
	backend Backend
	delay   time.Duration
	logger  *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given backend. delay is
// the fixed pause inserted between consecutive calls (not after the last)
// to reduce upstream rate limiting.
func NewOrchestrator(backend Backend, delay time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		delay:   delay,
		logger:  logger.With("component", "image_orchestrator"),
	}
}

// Generate produces up to req.Count images. Failed calls are logged and
// skipped; the partial list is returned as long as at least one image was
// produced. Zero images after all attempts yields a *GenerationError
// wrapping the last per-call error (or ErrNoImages when calls succeeded
// without content).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]Image, error) {
	count := req.Count
	if count < 1 {
		count = 1
	}

	var limiter *rate.Limiter
	if o.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(o.delay), 1)
	}

	var images []Image
	var lastErr error = ErrNoImages

	for i := 1; i <= count; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		prompt := req.Prompt
		if count > 1 {
			prompt += creative.VariantSuffix(req.Language, i, count)
		}

		start := time.Now()
		img, err := o.backend.GenerateOne(ctx, prompt, req.NegativePrompt, req.References, req.AspectRatio)
		if err != nil {
			lastErr = err
			o.logger.WarnContext(ctx, "Image generation call failed",
				"variant", i, "total", count, "error", err)
			continue
		}

		img.Prompt = prompt
		images = append(images, *img)
		o.logger.InfoContext(ctx, "Image generated",
			"variant", i, "total", count,
			"bytes", len(img.Data),
			"duration_ms", time.Since(start).Milliseconds())
	}

	if len(images) == 0 {
		return nil, &GenerationError{Attempts: count, Err: lastErr}
	}
	return images, nil
}
