// Package service implements the application pipelines: website analysis
// and creative generation, on top of the scraper, model clients, store,
// and object storage.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/gemini"
	"github.com/adcraft-ai/adcraft/internal/scraper"
)

// AnalysisService runs the scrape -> prompt -> parse -> persist pipeline.
type AnalysisService struct {
	store     database.Store
	extractor scraper.Extractor
	ai        gemini.Client
	logger    *slog.Logger
}

// NewAnalysisService wires the analysis pipeline.
func NewAnalysisService(store database.Store, extractor scraper.Extractor, ai gemini.Client, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		store:     store,
		extractor: extractor,
		ai:        ai,
		logger:    logger.With("component", "analysis_service"),
	}
}

// AnalyzeProject analyzes a project's URL (or its free-text description
// when no URL is set), persists the result, and returns it together with
// the stored segments. Any prior analysis on the project is replaced.
func (s *AnalysisService) AnalyzeProject(ctx context.Context, projectID string, lang analysis.Language) (*analysis.Result, []*database.AudienceSegment, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.contentFor(ctx, project.URL, project.Name, project.Description)
	if err != nil {
		return nil, nil, err
	}

	prompt := analysis.BuildPrompt(analysis.PromptInput{Content: content, Language: lang})
	result, err := s.runAnalysis(ctx, prompt, content.Screenshot)
	if err != nil {
		return nil, nil, err
	}

	segments := segmentsFromResult(result)
	if err := s.store.SaveProjectAnalysis(ctx, projectID, result.Summary, result.KeyFeatures, result.BrandVoice, segments); err != nil {
		return nil, nil, fmt.Errorf("failed to persist analysis: %w", err)
	}

	s.logger.InfoContext(ctx, "Project analyzed",
		"project_id", projectID, "language", lang, "segments", len(segments))
	return result, segments, nil
}

// AnalyzeSubproject is AnalyzeProject for a narrow page nested under a
// project. The prompt states the page's declared type and name and narrows
// the segment-count bounds.
func (s *AnalysisService) AnalyzeSubproject(ctx context.Context, subprojectID string, lang analysis.Language) (*analysis.Result, []*database.AudienceSegment, error) {
	sub, err := s.store.GetSubproject(ctx, subprojectID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.contentFor(ctx, sub.URL, sub.Name, "")
	if err != nil {
		return nil, nil, err
	}

	prompt := analysis.BuildPrompt(analysis.PromptInput{
		Content:    content,
		Language:   lang,
		Subproject: &analysis.SubprojectInfo{Name: sub.Name, Type: sub.Type},
	})
	result, err := s.runAnalysis(ctx, prompt, content.Screenshot)
	if err != nil {
		return nil, nil, err
	}

	segments := segmentsFromResult(result)
	if err := s.store.SaveSubprojectAnalysis(ctx, subprojectID, result.Summary, result.KeyFeatures, result.BrandVoice, segments); err != nil {
		return nil, nil, fmt.Errorf("failed to persist analysis: %w", err)
	}

	s.logger.InfoContext(ctx, "Subproject analyzed",
		"subproject_id", subprojectID, "language", lang, "segments", len(segments))
	return result, segments, nil
}

// contentFor scrapes the URL when one is set; otherwise it builds a
// minimal content summary from the project's own name and description.
func (s *AnalysisService) contentFor(ctx context.Context, url, name, description string) (*scraper.ScrapedContent, error) {
	if url != "" {
		return s.extractor.Extract(ctx, url)
	}
	if description == "" {
		return nil, fmt.Errorf("nothing to analyze: project has neither a URL nor a description")
	}
	return &scraper.ScrapedContent{
		Title:      name,
		Paragraphs: []string{description},
		AllText:    description,
	}, nil
}

func (s *AnalysisService) runAnalysis(ctx context.Context, prompt string, screenshot []byte) (*analysis.Result, error) {
	raw, err := s.ai.AnalyzeContent(ctx, prompt, screenshot)
	if err != nil {
		return nil, err
	}
	return analysis.Parse(raw)
}

func segmentsFromResult(result *analysis.Result) []*database.AudienceSegment {
	segments := make([]*database.AudienceSegment, 0, len(result.TargetAudiences))
	for _, aud := range result.TargetAudiences {
		segments = append(segments, &database.AudienceSegment{
			ID:           uuid.NewString(),
			Name:         aud.Name,
			Description:  aud.Description,
			PainPoints:   aud.PainPoints,
			Needs:        aud.Needs,
			Demographics: aud.Demographics.Display,
		})
	}
	return segments
}
