package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/creative"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/imagegen"
	"github.com/adcraft-ai/adcraft/internal/storage"
)

// GenerationService runs the prompt -> generate -> store -> persist
// pipeline for creatives.
type GenerationService struct {
	store   database.Store
	images  *imagegen.Orchestrator
	objects storage.ObjectStore
	logger  *slog.Logger
}

// NewGenerationService wires the creative generation pipeline.
func NewGenerationService(store database.Store, images *imagegen.Orchestrator, objects storage.ObjectStore, logger *slog.Logger) *GenerationService {
	return &GenerationService{
		store:   store,
		images:  images,
		objects: objects,
		logger:  logger.With("component", "generation_service"),
	}
}

// GenerateParams describes one structured generation request.
type GenerateParams struct {
	SessionID  string
	AudienceID string
	Format     string // empty for chat-triggered generation
	SizeID     string
	Quantity   int
	Language   analysis.Language
	StyleNotes string
	References []creative.Reference
}

// Generate builds the creative prompt for the chosen audience, produces up
// to Quantity images, stores each, and persists one creative row per image.
// A storage or database failure after a successful generation is logged but
// does not discard the produced image: the generation cost is already sunk,
// so the creative is still returned to the caller.
func (s *GenerationService) Generate(ctx context.Context, p GenerateParams) ([]*database.Creative, error) {
	segment, err := s.store.GetSegment(ctx, p.AudienceID)
	if err != nil {
		return nil, err
	}

	summary, features, voice, projectID, err := s.projectContext(ctx, segment)
	if err != nil {
		return nil, err
	}

	size := creative.Resolve(p.SizeID)
	prompt := creative.BuildPrompt(creative.PromptContext{
		Summary:     summary,
		KeyFeatures: features,
		BrandVoice:  voice,
		Audience: creative.AudienceInfo{
			Name:         segment.Name,
			Description:  segment.Description,
			PainPoints:   segment.PainPoints,
			Needs:        segment.Needs,
			Demographics: segment.Demographics,
		},
		Format:     p.Format,
		Size:       size,
		References: p.References,
		StyleNotes: p.StyleNotes,
		Language:   p.Language,
	})

	produced, err := s.images.Generate(ctx, imagegen.Request{
		Prompt:      prompt,
		References:  p.References,
		AspectRatio: size.Ratio,
		Count:       p.Quantity,
		Language:    p.Language,
	})
	if err != nil {
		return nil, err
	}

	hasRole := func(role creative.ReferenceRole) bool {
		for _, ref := range p.References {
			if ref.Role == role {
				return true
			}
		}
		return false
	}

	var creatives []*database.Creative
	for _, img := range produced {
		record := &database.Creative{
			ID:             uuid.NewString(),
			ProjectID:      nullString(projectID),
			SessionID:      p.SessionID,
			TargetAudience: segment.Name,
			Format:         p.Format,
			Size:           size.ID,
			PromptUsed:     img.Prompt,
			RefTemplate:    hasRole(creative.RoleTemplate),
			RefLogo:        hasRole(creative.RoleLogo),
			RefPerson:      hasRole(creative.RolePerson),
		}

		record.ImageURL = s.storeImage(ctx, record.ID, img)

		if err := s.store.SaveCreative(ctx, record); err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist creative, returning it anyway",
				"creative_id", record.ID, "error", err)
		}
		creatives = append(creatives, record)
	}

	s.logger.InfoContext(ctx, "Creatives generated",
		"requested", p.Quantity, "produced", len(creatives),
		"audience", segment.Name, "size", size.ID)
	return creatives, nil
}

// Resize re-lays-out an existing creative to the opposite aspect ratio
// (vertical becomes square, anything else becomes a story), passing the
// original image as the sole template reference.
func (s *GenerationService) Resize(ctx context.Context, creativeID string, lang analysis.Language) (*database.Creative, error) {
	orig, err := s.store.GetCreative(ctx, creativeID)
	if err != nil {
		return nil, err
	}

	data, mimeType, err := s.loadImage(orig.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load original creative image: %w", err)
	}

	target := creative.ResizeTarget(orig.Size)
	prompt := creative.ResizePrompt(lang, target)
	refs := []creative.Reference{{Role: creative.RoleTemplate, Data: data, MimeType: mimeType}}

	produced, err := s.images.Generate(ctx, imagegen.Request{
		Prompt:      prompt,
		References:  refs,
		AspectRatio: target.Ratio,
		Count:       1,
		Language:    lang,
	})
	if err != nil {
		return nil, err
	}

	img := produced[0]
	record := &database.Creative{
		ID:             uuid.NewString(),
		ProjectID:      orig.ProjectID,
		SessionID:      orig.SessionID,
		TargetAudience: orig.TargetAudience,
		Format:         orig.Format,
		Size:           target.ID,
		PromptUsed:     img.Prompt,
		RefTemplate:    true,
	}
	record.ImageURL = s.storeImage(ctx, record.ID, img)

	if err := s.store.SaveCreative(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist resized creative, returning it anyway",
			"creative_id", record.ID, "error", err)
	}
	return record, nil
}

// storeImage uploads the image bytes and returns the public URL. When the
// upload fails the image is kept as an inline data URL so it is never
// silently dropped.
func (s *GenerationService) storeImage(ctx context.Context, id string, img imagegen.Image) string {
	url, err := s.objects.Put(id, img.Data, img.MimeType)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upload image, falling back to data URL",
			"creative_id", id, "error", err)
		return dataURL(img.Data, img.MimeType)
	}
	return url
}

// loadImage resolves a creative's stored image back to raw bytes,
// supporting both data URLs and file-store URLs.
func (s *GenerationService) loadImage(imageURL string) ([]byte, string, error) {
	if strings.HasPrefix(imageURL, "data:") {
		rest := strings.TrimPrefix(imageURL, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("unsupported data URL encoding")
		}
		mimeType := rest[:semi]
		data, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode data URL: %w", err)
		}
		return data, mimeType, nil
	}

	fetcher, ok := s.objects.(storage.Fetcher)
	if !ok {
		return nil, "", fmt.Errorf("object store cannot fetch %s", imageURL)
	}
	return fetcher.Fetch(imageURL)
}

func dataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *GenerationService) projectContext(ctx context.Context, segment *database.AudienceSegment) (summary string, features []string, voice, projectID string, err error) {
	switch {
	case segment.ProjectID.Valid:
		project, getErr := s.store.GetProject(ctx, segment.ProjectID.String)
		if getErr != nil {
			return "", nil, "", "", getErr
		}
		return project.Summary, project.KeyFeatures, project.BrandVoice, project.ID, nil
	case segment.SubprojectID.Valid:
		sub, getErr := s.store.GetSubproject(ctx, segment.SubprojectID.String)
		if getErr != nil {
			return "", nil, "", "", getErr
		}
		return sub.Summary, sub.KeyFeatures, sub.BrandVoice, sub.ProjectID, nil
	default:
		return "", nil, "", "", fmt.Errorf("audience segment %s has no owner", segment.ID)
	}
}
