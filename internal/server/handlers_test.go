// Package server_test drives the HTTP API end to end with stubbed model
// clients and an in-memory database.
package server_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adcraft-ai/adcraft/internal/chat"
	"github.com/adcraft-ai/adcraft/internal/config"
	"github.com/adcraft-ai/adcraft/internal/creative"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/gemini"
	"github.com/adcraft-ai/adcraft/internal/imagegen"
	"github.com/adcraft-ai/adcraft/internal/scraper"
	"github.com/adcraft-ai/adcraft/internal/server"
	"github.com/adcraft-ai/adcraft/internal/service"
	"github.com/adcraft-ai/adcraft/internal/storage"
)

const analysisReply = `{
  "summary": "Acme Widgets sells modular widgets.",
  "key_features": ["Modular design"],
  "brand_voice": "Practical",
  "target_audiences": [
    {"id": "s1", "name": "Workshop owners", "pain_points": ["breakage"], "needs": ["durability"], "demographics": "30-50"}
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAI struct{}

func (stubAI) AnalyzeContent(context.Context, string, []byte) (string, error) {
	return analysisReply, nil
}

func (stubAI) GenerateChatReply(context.Context, []gemini.Turn, string) (string, error) {
	return "Hi!", nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, url string) (*scraper.ScrapedContent, error) {
	return &scraper.ScrapedContent{URL: url, Title: "Acme Widgets"}, nil
}

type stubBackend struct{}

func (stubBackend) GenerateOne(_ context.Context, prompt, _ string, _ []creative.Reference, _ creative.Ratio) (*imagegen.Image, error) {
	return &imagegen.Image{Data: []byte{0x89, 1}, MimeType: "image/png", Prompt: prompt}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, testLogger())

	media, err := storage.NewFileStore(t.TempDir(), "/media", testLogger())
	if err != nil {
		t.Fatal(err)
	}

	var ai gemini.Client = stubAI{}
	analyzer := service.NewAnalysisService(store, stubExtractor{}, ai, testLogger())
	generator := service.NewGenerationService(store, imagegen.NewOrchestrator(stubBackend{}, 0, testLogger()), media, testLogger())
	chatSvc := chat.NewService(store, ai, analyzer, generator, testLogger())

	srv := server.New(config.ServerConfig{
		Addr:            ":0",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: time.Second,
	}, store, analyzer, generator, chatSvc, media, testLogger())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func createProject(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp, body := doJSON(t, ts, http.MethodPost, "/api/projects", map[string]string{
		"name": "Acme",
		"url":  "https://acme.example",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project status = %d: %s", resp.StatusCode, body)
	}

	var project struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &project); err != nil {
		t.Fatal(err)
	}
	return project.ID
}

func analyzeProject(t *testing.T, ts *httptest.Server, projectID string) string {
	t.Helper()

	resp, body := doJSON(t, ts, http.MethodPost, "/api/projects/"+projectID+"/analyze?language=en", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", resp.StatusCode, body)
	}

	var analysis struct {
		Summary   string `json:"summary"`
		Audiences []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"audiences"`
	}
	if err := json.Unmarshal(body, &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Summary == "" || len(analysis.Audiences) != 1 {
		t.Fatalf("unexpected analysis payload: %s", body)
	}
	return analysis.Audiences[0].ID
}

func TestProjectEndpoints(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	projectID := createProject(t, ts)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/projects/"+projectID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get project status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Acme") {
		t.Errorf("project body = %s", body)
	}

	resp, body = doJSON(t, ts, http.MethodGet, "/api/projects", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var projects []json.RawMessage
	if err := json.Unmarshal(body, &projects); err != nil || len(projects) != 1 {
		t.Errorf("list body = %s", body)
	}

	resp, body = doJSON(t, ts, http.MethodGet, "/api/projects/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing project status = %d", resp.StatusCode)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil || errBody.Error == "" {
		t.Errorf("error body = %s", body)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/projects", map[string]string{"url": "https://x.example"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("nameless project status = %d", resp.StatusCode)
	}
}

func TestAnalyzeAndAudiences(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	projectID := createProject(t, ts)
	analyzeProject(t, ts, projectID)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/projects/"+projectID+"/audiences", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audiences status = %d", resp.StatusCode)
	}
	var audiences []struct {
		Name       string   `json:"name"`
		PainPoints []string `json:"pain_points"`
	}
	if err := json.Unmarshal(body, &audiences); err != nil {
		t.Fatal(err)
	}
	if len(audiences) != 1 || audiences[0].Name != "Workshop owners" || len(audiences[0].PainPoints) != 1 {
		t.Errorf("audiences = %s", body)
	}
}

func TestSubprojectEndpoints(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	projectID := createProject(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/projects/"+projectID+"/subprojects", map[string]string{
		"name": "Spring webinar",
		"type": "webinar",
		"url":  "https://acme.example/webinar",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create subproject status = %d: %s", resp.StatusCode, body)
	}
	var sub struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &sub); err != nil {
		t.Fatal(err)
	}

	resp, body = doJSON(t, ts, http.MethodPost, "/api/subprojects/"+sub.ID+"/analyze", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("subproject analyze status = %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/projects/missing/subprojects", map[string]string{"name": "x", "type": "y"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("subproject under missing project status = %d", resp.StatusCode)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	projectID := createProject(t, ts)
	audienceID := analyzeProject(t, ts, projectID)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/generate", map[string]any{
		"session_id":  "sess1",
		"audience_id": audienceID,
		"format":      "product-showcase",
		"size":        "instagram-post",
		"quantity":    2,
		"language":    "en",
		"references": []map[string]string{{
			"role":        "logo",
			"data_base64": base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
			"mime_type":   "image/png",
		}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Creatives []struct {
			ID       string `json:"id"`
			ImageURL string `json:"image_url"`
			RefLogo  bool   `json:"ref_logo"`
		} `json:"creatives"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Creatives) != 2 {
		t.Fatalf("expected 2 creatives: %s", body)
	}
	if !result.Creatives[0].RefLogo || !strings.HasPrefix(result.Creatives[0].ImageURL, "/media/") {
		t.Errorf("creative = %+v", result.Creatives[0])
	}

	// The stored image is served back through /media/.
	resp, imgBody := doJSON(t, ts, http.MethodGet, result.Creatives[0].ImageURL, nil)
	if resp.StatusCode != http.StatusOK || len(imgBody) == 0 {
		t.Errorf("media fetch status = %d, %d bytes", resp.StatusCode, len(imgBody))
	}

	// Creatives are listable by session.
	resp, body = doJSON(t, ts, http.MethodGet, "/api/creatives?session_id=sess1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list creatives status = %d", resp.StatusCode)
	}
	var listed []json.RawMessage
	if err := json.Unmarshal(body, &listed); err != nil || len(listed) != 2 {
		t.Errorf("listed creatives = %s", body)
	}

	// Resize produces a new creative at the toggled size.
	resp, body = doJSON(t, ts, http.MethodPost, "/api/creatives/"+result.Creatives[0].ID+"/resize?language=en", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resize status = %d: %s", resp.StatusCode, body)
	}
	var resized struct {
		Size string `json:"size"`
	}
	if err := json.Unmarshal(body, &resized); err != nil {
		t.Fatal(err)
	}
	if resized.Size != "instagram-story" {
		t.Errorf("resized size = %q", resized.Size)
	}
}

func TestGenerateValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing audience", map[string]any{"session_id": "s", "quantity": 1}},
		{"quantity too high", map[string]any{"session_id": "s", "audience_id": "a", "quantity": 99}},
		{"bad reference role", map[string]any{
			"session_id": "s", "audience_id": "a", "quantity": 1,
			"references": []map[string]string{{"role": "banner", "data_base64": "AA=="}},
		}},
		{"bad reference encoding", map[string]any{
			"session_id": "s", "audience_id": "a", "quantity": 1,
			"references": []map[string]string{{"role": "logo", "data_base64": "!!!"}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp, _ := doJSON(t, ts, http.MethodPost, "/api/generate", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/generate", map[string]any{
		"session_id": "s", "audience_id": "missing", "quantity": 1,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown audience status = %d, want 404", resp.StatusCode)
	}
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/chat", map[string]string{
		"session_id": "sess1",
		"message":    "hello",
		"language":   "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d: %s", resp.StatusCode, body)
	}
	var reply struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Reply != "Hi!" {
		t.Errorf("reply = %q", reply.Reply)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/chat", map[string]string{"message": "no session"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing session status = %d", resp.StatusCode)
	}
}

func TestListCreativesRequiresFilter(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/api/creatives", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, body := doJSON(t, ts, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "ok") {
		t.Errorf("health body = %s", body)
	}
}
