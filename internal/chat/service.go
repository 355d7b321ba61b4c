// Package chat implements the conversational surface: free-form chat with
// the text model, a URL-confirmation flow that triggers analysis, and
// chat-triggered creative generation without an explicit format.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/gemini"
	"github.com/adcraft-ai/adcraft/internal/service"

	"github.com/google/uuid"
)

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

var affirmatives = map[string]bool{
	"так": true, "да": true, "yes": true, "y": true, "ok": true,
	"давай": true, "добре": true, "хорошо": true, "sure": true, "го": true,
}

var generateKeywords = []string{"генер", "generate", "креатив", "creative", "зображ"}

// Localized canned replies for the confirmation flow. Chosen per request
// language, never translated at runtime.
var (
	msgConfirmURL = map[analysis.Language]string{
		analysis.LangUK: "Проаналізувати сторінку %s і визначити цільові аудиторії? Напишіть «так», щоб почати.",
		analysis.LangRU: "Проанализировать страницу %s и определить целевые аудитории? Напишите «да», чтобы начать.",
		analysis.LangEN: "Analyze %s and derive its target audiences? Reply \"yes\" to start.",
	}
	msgAnalysisDone = map[analysis.Language]string{
		analysis.LangUK: "Готово! %s\n\nЗнайдено сегментів аудиторії: %d. Тепер можна генерувати креативи.",
		analysis.LangRU: "Готово! %s\n\nНайдено сегментов аудитории: %d. Теперь можно генерировать креативы.",
		analysis.LangEN: "Done! %s\n\nAudience segments found: %d. You can generate creatives now.",
	}
	msgGenerated = map[analysis.Language]string{
		analysis.LangUK: "Згенеровано креативів: %d для аудиторії «%s».",
		analysis.LangRU: "Сгенерировано креативов: %d для аудитории «%s».",
		analysis.LangEN: "Generated %d creative(s) for audience %q.",
	}
	msgNoProject = map[analysis.Language]string{
		analysis.LangUK: "Спершу надішліть посилання на сайт, щоб я проаналізував продукт і аудиторії.",
		analysis.LangRU: "Сначала пришлите ссылку на сайт, чтобы я проанализировал продукт и аудитории.",
		analysis.LangEN: "Send me a website link first so I can analyze the product and its audiences.",
	}
)

// Reply is the assistant's answer for one chat turn.
type Reply struct {
	Text      string
	Creatives []*database.Creative
}

// Service handles chat turns.
type Service struct {
	store     database.Store
	ai        gemini.Client
	analyzer  *service.AnalysisService
	generator *service.GenerationService
	logger    *slog.Logger
}

// NewService wires the chat surface.
func NewService(store database.Store, ai gemini.Client, analyzer *service.AnalysisService, generator *service.GenerationService, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		ai:        ai,
		analyzer:  analyzer,
		generator: generator,
		logger:    logger.With("component", "chat"),
	}
}

// HandleMessage processes one user turn and returns the assistant reply.
// Both turns are persisted; creatives generated during the turn are linked
// to the assistant message.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string, lang analysis.Language) (*Reply, error) {
	session, err := s.store.GetChatSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.store.GetRecentChatMessages(ctx, sessionID, 20)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveChatMessage(ctx, &database.ChatMessage{
		SessionID: sessionID,
		Role:      "user",
		Content:   message,
	}); err != nil {
		return nil, err
	}

	reply, err := s.respond(ctx, session, history, message, lang)
	if err != nil {
		return nil, err
	}

	assistantMsg := &database.ChatMessage{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   reply.Text,
	}
	for _, c := range reply.Creatives {
		assistantMsg.CreativeIDs = append(assistantMsg.CreativeIDs, c.ID)
	}
	if err := s.store.SaveChatMessage(ctx, assistantMsg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist assistant message", "error", err)
	}

	return reply, nil
}

func (s *Service) respond(ctx context.Context, session *database.ChatSession, history []*database.ChatMessage, message string, lang analysis.Language) (*Reply, error) {
	trimmed := strings.ToLower(strings.TrimSpace(strings.Trim(message, "!. ")))

	if session.AwaitingURL != "" {
		pending := session.AwaitingURL
		if err := s.store.SetAwaitingURL(ctx, session.SessionID, ""); err != nil {
			return nil, err
		}
		if affirmatives[trimmed] {
			return s.analyzePendingURL(ctx, session.SessionID, pending, lang)
		}
		// Anything but an affirmative drops the pending URL and falls
		// through to normal conversation.
	}

	if u := urlRe.FindString(message); u != "" {
		if err := s.store.SetAwaitingURL(ctx, session.SessionID, u); err != nil {
			return nil, err
		}
		return &Reply{Text: fmt.Sprintf(msgConfirmURL[lang], u)}, nil
	}

	if wantsGeneration(trimmed) {
		return s.generateFromChat(ctx, session, lang)
	}

	turns := make([]gemini.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, gemini.Turn{Role: m.Role, Text: m.Content})
	}
	text, err := s.ai.GenerateChatReply(ctx, turns, message)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: text}, nil
}

func (s *Service) analyzePendingURL(ctx context.Context, sessionID, pageURL string, lang analysis.Language) (*Reply, error) {
	project := &database.Project{
		ID:   uuid.NewString(),
		Name: projectNameFromURL(pageURL),
		URL:  pageURL,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	if err := s.store.SetSessionProject(ctx, sessionID, project.ID); err != nil {
		return nil, err
	}

	result, segments, err := s.analyzer.AnalyzeProject(ctx, project.ID, lang)
	if err != nil {
		return nil, err
	}

	return &Reply{Text: fmt.Sprintf(msgAnalysisDone[lang], result.Summary, len(segments))}, nil
}

// generateFromChat is the format-less generation call site: it uses the
// session's analyzed project, its first audience segment, and a square
// default size.
func (s *Service) generateFromChat(ctx context.Context, session *database.ChatSession, lang analysis.Language) (*Reply, error) {
	if session.ProjectID == "" {
		return &Reply{Text: msgNoProject[lang]}, nil
	}

	segments, err := s.store.ListSegmentsByProject(ctx, session.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return &Reply{Text: msgNoProject[lang]}, nil
	}

	creatives, err := s.generator.Generate(ctx, service.GenerateParams{
		SessionID:  session.SessionID,
		AudienceID: segments[0].ID,
		SizeID:     "instagram-post",
		Quantity:   1,
		Language:   lang,
	})
	if err != nil {
		return nil, err
	}

	return &Reply{
		Text:      fmt.Sprintf(msgGenerated[lang], len(creatives), segments[0].Name),
		Creatives: creatives,
	}, nil
}

func wantsGeneration(message string) bool {
	for _, kw := range generateKeywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

func projectNameFromURL(pageURL string) string {
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		return strings.TrimPrefix(parsed.Host, "www.")
	}
	return pageURL
}
