// Package chat_test exercises the conversational flow: URL confirmation,
// chat-triggered analysis and generation, and plain model replies.
package chat_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/chat"
	"github.com/adcraft-ai/adcraft/internal/creative"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/gemini"
	"github.com/adcraft-ai/adcraft/internal/imagegen"
	"github.com/adcraft-ai/adcraft/internal/scraper"
	"github.com/adcraft-ai/adcraft/internal/service"
	"github.com/adcraft-ai/adcraft/internal/storage"
)

const analysisReply = `{
  "summary": "Acme Widgets sells modular widgets.",
  "key_features": ["Modular design"],
  "target_audiences": [
    {"name": "Workshop owners", "pain_points": ["breakage"], "needs": ["durability"]}
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAI struct {
	analysisReply string
	chatReply     string
	chatHistory   []gemini.Turn
}

func (s *stubAI) AnalyzeContent(context.Context, string, []byte) (string, error) {
	return s.analysisReply, nil
}

func (s *stubAI) GenerateChatReply(_ context.Context, history []gemini.Turn, _ string) (string, error) {
	s.chatHistory = history
	return s.chatReply, nil
}

type stubExtractor struct{ urls []string }

func (s *stubExtractor) Extract(_ context.Context, url string) (*scraper.ScrapedContent, error) {
	s.urls = append(s.urls, url)
	return &scraper.ScrapedContent{URL: url, Title: "Acme Widgets"}, nil
}

type stubBackend struct{ calls int }

func (b *stubBackend) GenerateOne(_ context.Context, prompt, _ string, _ []creative.Reference, _ creative.Ratio) (*imagegen.Image, error) {
	b.calls++
	return &imagegen.Image{Data: []byte{1}, MimeType: "image/png", Prompt: prompt}, nil
}

type fixture struct {
	svc       *chat.Service
	store     database.Store
	ai        *stubAI
	extractor *stubExtractor
	backend   *stubBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, testLogger())

	ai := &stubAI{analysisReply: analysisReply, chatReply: "Hello!"}
	extractor := &stubExtractor{}
	backend := &stubBackend{}

	analyzer := service.NewAnalysisService(store, extractor, ai, testLogger())
	media, err := storage.NewFileStore(t.TempDir(), "/media", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	generator := service.NewGenerationService(store, imagegen.NewOrchestrator(backend, 0, testLogger()), media, testLogger())

	return &fixture{
		svc:       chat.NewService(store, ai, analyzer, generator, testLogger()),
		store:     store,
		ai:        ai,
		extractor: extractor,
		backend:   backend,
	}
}

func TestURLConfirmationFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// A message containing a URL asks for confirmation instead of
	// analyzing immediately.
	reply, err := f.svc.HandleMessage(ctx, "sess1", "check out https://acme.example please", analysis.LangEN)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply.Text, "https://acme.example") {
		t.Errorf("confirmation reply missing URL: %q", reply.Text)
	}
	if len(f.extractor.urls) != 0 {
		t.Error("analysis must not run before confirmation")
	}

	session, err := f.store.GetChatSession(ctx, "sess1")
	if err != nil {
		t.Fatal(err)
	}
	if session.AwaitingURL != "https://acme.example" {
		t.Errorf("awaiting url = %q", session.AwaitingURL)
	}

	// An affirmative answer runs the analysis and binds the session to
	// the new project.
	reply, err = f.svc.HandleMessage(ctx, "sess1", "yes", analysis.LangEN)
	if err != nil {
		t.Fatalf("confirmation: %v", err)
	}
	if !strings.Contains(reply.Text, "Acme Widgets sells modular widgets.") {
		t.Errorf("analysis summary missing from reply: %q", reply.Text)
	}
	if len(f.extractor.urls) != 1 {
		t.Errorf("expected 1 scrape, got %d", len(f.extractor.urls))
	}

	session, err = f.store.GetChatSession(ctx, "sess1")
	if err != nil {
		t.Fatal(err)
	}
	if session.AwaitingURL != "" {
		t.Error("awaiting state not cleared after confirmation")
	}
	if session.ProjectID == "" {
		t.Fatal("session not bound to the analyzed project")
	}

	project, err := f.store.GetProject(ctx, session.ProjectID)
	if err != nil {
		t.Fatal(err)
	}
	if project.URL != "https://acme.example" || project.Name != "acme.example" {
		t.Errorf("project from chat = %+v", project)
	}
}

func TestURLDeclined(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.HandleMessage(ctx, "sess1", "https://acme.example", analysis.LangEN); err != nil {
		t.Fatal(err)
	}

	reply, err := f.svc.HandleMessage(ctx, "sess1", "actually tell me a joke instead", analysis.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	// Declining falls through to a normal model reply.
	if reply.Text != "Hello!" {
		t.Errorf("reply = %q", reply.Text)
	}
	if len(f.extractor.urls) != 0 {
		t.Error("declined URL must not be analyzed")
	}

	session, err := f.store.GetChatSession(ctx, "sess1")
	if err != nil {
		t.Fatal(err)
	}
	if session.AwaitingURL != "" {
		t.Error("pending URL not dropped after decline")
	}
}

func TestAwaitingStateIsPerSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.HandleMessage(ctx, "sess1", "https://acme.example", analysis.LangEN); err != nil {
		t.Fatal(err)
	}

	// "yes" in an unrelated session is ordinary chat, not a confirmation.
	reply, err := f.svc.HandleMessage(ctx, "sess2", "yes", analysis.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "Hello!" {
		t.Errorf("cross-session confirmation leaked: %q", reply.Text)
	}
	if len(f.extractor.urls) != 0 {
		t.Error("analysis triggered from the wrong session")
	}
}

func TestChatTriggeredGeneration(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.HandleMessage(ctx, "sess1", "https://acme.example", analysis.LangEN); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.HandleMessage(ctx, "sess1", "yes", analysis.LangEN); err != nil {
		t.Fatal(err)
	}

	reply, err := f.svc.HandleMessage(ctx, "sess1", "please generate a creative", analysis.LangEN)
	if err != nil {
		t.Fatalf("generation turn: %v", err)
	}
	if f.backend.calls != 1 {
		t.Errorf("expected 1 image call, got %d", f.backend.calls)
	}
	if len(reply.Creatives) != 1 {
		t.Fatalf("expected 1 creative, got %d", len(reply.Creatives))
	}
	if reply.Creatives[0].Format != "" {
		t.Errorf("chat generation must not pick a format, got %q", reply.Creatives[0].Format)
	}
	if reply.Creatives[0].SessionID != "sess1" {
		t.Errorf("creative session = %q", reply.Creatives[0].SessionID)
	}

	// The assistant message records the creative IDs for the gallery.
	messages, err := f.store.GetRecentChatMessages(ctx, "sess1", 10)
	if err != nil {
		t.Fatal(err)
	}
	last := messages[len(messages)-1]
	if last.Role != "assistant" || len(last.CreativeIDs) != 1 {
		t.Errorf("assistant message = %+v", last)
	}
}

func TestGenerationWithoutProject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	reply, err := f.svc.HandleMessage(context.Background(), "sess1", "generate something", analysis.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if f.backend.calls != 0 {
		t.Error("generation must not run without an analyzed project")
	}
	if !strings.Contains(reply.Text, "link") {
		t.Errorf("expected a link-first hint, got %q", reply.Text)
	}
}

func TestPlainChatUsesHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.HandleMessage(ctx, "sess1", "hi there", analysis.LangEN); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.HandleMessage(ctx, "sess1", "how are you", analysis.LangEN); err != nil {
		t.Fatal(err)
	}

	// The second turn sees the first user message and the first reply.
	if len(f.ai.chatHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(f.ai.chatHistory))
	}
	if f.ai.chatHistory[0].Role != "user" || f.ai.chatHistory[0].Text != "hi there" {
		t.Errorf("history[0] = %+v", f.ai.chatHistory[0])
	}
	if f.ai.chatHistory[1].Role != "assistant" {
		t.Errorf("history[1] = %+v", f.ai.chatHistory[1])
	}
}
