package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/creative"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/service"

	"github.com/google/uuid"
)

// Response DTOs. Database models stay internal; the wire shapes are
// decoupled from column layout.

type projectDTO struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	KeyFeatures []string  `json:"key_features,omitempty"`
	BrandVoice  string    `json:"brand_voice,omitempty"`
}

type subprojectDTO struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	URL         string    `json:"url,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	KeyFeatures []string  `json:"key_features,omitempty"`
	BrandVoice  string    `json:"brand_voice,omitempty"`
}

type audienceDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	PainPoints   []string `json:"pain_points"`
	Needs        []string `json:"needs"`
	Demographics string   `json:"demographics,omitempty"`
}

type creativeDTO struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ProjectID      string    `json:"project_id,omitempty"`
	SessionID      string    `json:"session_id,omitempty"`
	TargetAudience string    `json:"target_audience"`
	Format         string    `json:"format,omitempty"`
	Size           string    `json:"size"`
	ImageURL       string    `json:"image_url"`
	RefTemplate    bool      `json:"ref_template"`
	RefLogo        bool      `json:"ref_logo"`
	RefPerson      bool      `json:"ref_person"`
}

func toProjectDTO(p *database.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Name:        p.Name,
		URL:         p.URL,
		Description: p.Description,
		Summary:     p.Summary,
		KeyFeatures: p.KeyFeatures,
		BrandVoice:  p.BrandVoice,
	}
}

func toSubprojectDTO(sub *database.Subproject) subprojectDTO {
	return subprojectDTO{
		ID:          sub.ID,
		CreatedAt:   sub.CreatedAt,
		ProjectID:   sub.ProjectID,
		Name:        sub.Name,
		Type:        sub.Type,
		URL:         sub.URL,
		Summary:     sub.Summary,
		KeyFeatures: sub.KeyFeatures,
		BrandVoice:  sub.BrandVoice,
	}
}

func toAudienceDTO(seg *database.AudienceSegment) audienceDTO {
	return audienceDTO{
		ID:           seg.ID,
		Name:         seg.Name,
		Description:  seg.Description,
		PainPoints:   seg.PainPoints,
		Needs:        seg.Needs,
		Demographics: seg.Demographics,
	}
}

func toCreativeDTO(c *database.Creative) creativeDTO {
	return creativeDTO{
		ID:             c.ID,
		CreatedAt:      c.CreatedAt,
		ProjectID:      c.ProjectID.String,
		SessionID:      c.SessionID,
		TargetAudience: c.TargetAudience,
		Format:         c.Format,
		Size:           c.Size,
		ImageURL:       c.ImageURL,
		RefTemplate:    c.RefTemplate,
		RefLogo:        c.RefLogo,
		RefPerson:      c.RefPerson,
	}
}

func toCreativeDTOs(creatives []*database.Creative) []creativeDTO {
	out := make([]creativeDTO, 0, len(creatives))
	for _, c := range creatives {
		out = append(out, toCreativeDTO(c))
	}
	return out
}

type analysisResponse struct {
	Summary     string        `json:"summary"`
	KeyFeatures []string      `json:"key_features"`
	BrandVoice  string        `json:"brand_voice,omitempty"`
	Audiences   []audienceDTO `json:"audiences"`
}

func toAnalysisResponse(result *analysis.Result, segments []*database.AudienceSegment) analysisResponse {
	resp := analysisResponse{
		Summary:     result.Summary,
		KeyFeatures: result.KeyFeatures,
		BrandVoice:  result.BrandVoice,
		Audiences:   make([]audienceDTO, 0, len(segments)),
	}
	for _, seg := range segments {
		resp.Audiences = append(resp.Audiences, toAudienceDTO(seg))
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		apiError(w, http.StatusServiceUnavailable, "database unavailable", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		apiError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Name == "" {
		apiError(w, http.StatusBadRequest, "name is required", "")
		return
	}

	project := &database.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
	}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		s.respondError(w, r, err)
		return
	}

	stored, err := s.store.GetProject(r.Context(), project.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(stored))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := make([]projectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

func (s *Server) handleCreateSubproject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
		URL  string `json:"url"`
	}
	if err := decodeBody(r, &req); err != nil {
		apiError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Name == "" || req.Type == "" {
		apiError(w, http.StatusBadRequest, "name and type are required", "")
		return
	}

	sub := &database.Subproject{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      req.Name,
		Type:      req.Type,
		URL:       req.URL,
	}
	if err := s.store.CreateSubproject(r.Context(), sub); err != nil {
		s.respondError(w, r, err)
		return
	}

	stored, err := s.store.GetSubproject(r.Context(), sub.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubprojectDTO(stored))
}

// languageFromRequest reads an optional language hint from the query
// string, defaulting to Ukrainian.
func languageFromRequest(r *http.Request, bodyLang string) analysis.Language {
	if bodyLang != "" {
		return analysis.NormalizeLanguage(bodyLang)
	}
	return analysis.NormalizeLanguage(r.URL.Query().Get("language"))
}

func (s *Server) handleAnalyzeProject(w http.ResponseWriter, r *http.Request) {
	lang := languageFromRequest(r, "")
	result, segments, err := s.analyzer.AnalyzeProject(r.Context(), r.PathValue("id"), lang)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(result, segments))
}

func (s *Server) handleAnalyzeSubproject(w http.ResponseWriter, r *http.Request) {
	lang := languageFromRequest(r, "")
	result, segments, err := s.analyzer.AnalyzeSubproject(r.Context(), r.PathValue("id"), lang)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(result, segments))
}

func (s *Server) handleListAudiences(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.respondError(w, r, err)
		return
	}
	segments, err := s.store.ListSegmentsByProject(r.Context(), projectID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := make([]audienceDTO, 0, len(segments))
	for _, seg := range segments {
		out = append(out, toAudienceDTO(seg))
	}
	writeJSON(w, http.StatusOK, out)
}

type referencePayload struct {
	Role       string `json:"role"`
	DataBase64 string `json:"data_base64"`
	MimeType   string `json:"mime_type"`
}

const maxQuantity = 8

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string             `json:"session_id"`
		AudienceID string             `json:"audience_id"`
		Format     string             `json:"format"`
		Size       string             `json:"size"`
		Quantity   int                `json:"quantity"`
		Language   string             `json:"language"`
		StyleNotes string             `json:"style_notes"`
		References []referencePayload `json:"references"`
	}
	if err := decodeBody(r, &req); err != nil {
		apiError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.AudienceID == "" {
		apiError(w, http.StatusBadRequest, "audience_id is required", "")
		return
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		apiError(w, http.StatusBadRequest, fmt.Sprintf("quantity must be between 0 and %d", maxQuantity), "")
		return
	}

	refs, err := decodeReferences(req.References)
	if err != nil {
		apiError(w, http.StatusBadRequest, "invalid reference image", err.Error())
		return
	}

	creatives, err := s.generator.Generate(r.Context(), service.GenerateParams{
		SessionID:  req.SessionID,
		AudienceID: req.AudienceID,
		Format:     req.Format,
		SizeID:     req.Size,
		Quantity:   req.Quantity,
		Language:   analysis.NormalizeLanguage(req.Language),
		StyleNotes: req.StyleNotes,
		References: refs,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"creatives": toCreativeDTOs(creatives)})
}

func decodeReferences(payloads []referencePayload) ([]creative.Reference, error) {
	refs := make([]creative.Reference, 0, len(payloads))
	for _, p := range payloads {
		role := creative.ReferenceRole(strings.ToLower(p.Role))
		switch role {
		case creative.RoleTemplate, creative.RoleLogo, creative.RolePerson:
		default:
			return nil, fmt.Errorf("unknown reference role %q", p.Role)
		}
		data, err := base64.StdEncoding.DecodeString(p.DataBase64)
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", p.Role, err)
		}
		mime := p.MimeType
		if mime == "" {
			mime = "image/png"
		}
		refs = append(refs, creative.Reference{Role: role, Data: data, MimeType: mime})
	}
	return refs, nil
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	lang := languageFromRequest(r, "")
	resized, err := s.generator.Resize(r.Context(), r.PathValue("id"), lang)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreativeDTO(resized))
}

func (s *Server) handleListCreatives(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	sessionID := r.URL.Query().Get("session_id")
	if projectID == "" && sessionID == "" {
		apiError(w, http.StatusBadRequest, "project_id or session_id is required", "")
		return
	}
	creatives, err := s.store.ListCreatives(r.Context(), projectID, sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreativeDTOs(creatives))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
		Language  string `json:"language"`
	}
	if err := decodeBody(r, &req); err != nil {
		apiError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.SessionID == "" || req.Message == "" {
		apiError(w, http.StatusBadRequest, "session_id and message are required", "")
		return
	}

	reply, err := s.chat.HandleMessage(r.Context(), req.SessionID, req.Message, analysis.NormalizeLanguage(req.Language))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reply":     reply.Text,
		"creatives": toCreativeDTOs(reply.Creatives),
	})
}
