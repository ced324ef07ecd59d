package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/sajjat43/ai-agent/internal/ai"
	"github.com/sajjat43/ai-agent/internal/chat"
	"github.com/sajjat43/ai-agent/internal/httpapi/handlers"
	"github.com/sajjat43/ai-agent/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	name   string
	models []string
}

func (p *stubProvider) Name() string      { return p.name }
func (p *stubProvider) Models() []string  { return p.models }
func (p *stubProvider) Status() ai.Status { return ai.StatusActive }

func (p *stubProvider) Dispatch(ctx context.Context, prompt, model string) ai.Result {
	return ai.Result{Response: "stub reply", Model: model, Provider: p.name, Status: ai.ResultSuccess}
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&chat.Turn{}, &chat.UploadedFile{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := logger.NewNop()
	usage := ai.NewUsage(log)
	registry := ai.NewRegistry(usage)
	registry.Register(&stubProvider{name: "stub", models: []string{"stub-model"}})
	registry.Register(ai.NewGoogleProvider("", ""))
	registry.Register(ai.NewCohereProvider())

	h := handlers.New(db, registry, usage, t.TempDir(), log)
	return NewRouter(h, log), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
		}
	}
	return w, out
}

func TestChat_MissingKeyIsHTTP200WithErrorStatus(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"message":  "hello",
		"model":    "gemini-1.5-flash",
		"provider": "google",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["status"] != "error" {
		t.Fatalf("expected status error, got %v", body["status"])
	}
	resp, _ := body["response"].(string)
	if !strings.Contains(resp, "API key not configured") {
		t.Fatalf("expected key guidance, got %q", resp)
	}
	sid, _ := body["sessionId"].(string)
	if !strings.HasPrefix(sid, "session_") {
		t.Fatalf("expected generated session id, got %q", sid)
	}

	// The failed exchange shows up in history.
	w, hist := doJSON(t, r, http.MethodGet, "/api/history/"+sid, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
	chats, _ := hist["chats"].([]any)
	if len(chats) != 1 {
		t.Fatalf("expected 1 turn in history, got %d", len(chats))
	}
}

func TestChat_PlaceholderProvider(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"message":   "hi",
		"model":     "command",
		"provider":  "cohere",
		"sessionId": "s1",
	})

	if w.Code != http.StatusOK || body["status"] != "placeholder" {
		t.Fatalf("expected 200/placeholder, got %d %v", w.Code, body["status"])
	}
	resp, _ := body["response"].(string)
	if !strings.Contains(resp, "not implemented yet") {
		t.Fatalf("unexpected placeholder response: %q", resp)
	}
}

func TestChat_Validation(t *testing.T) {
	r, _ := newTestServer(t)

	cases := []struct {
		name string
		body gin.H
		want string
	}{
		{"blank message", gin.H{"message": "   ", "model": "m", "provider": "stub"}, "Message is required"},
		{"missing model", gin.H{"message": "hi", "provider": "stub"}, "Model and provider are required"},
		{"missing provider", gin.H{"message": "hi", "model": "m"}, "Model and provider are required"},
		{"unknown provider", gin.H{"message": "hi", "model": "m", "provider": "nope"}, "Unsupported provider: nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := doJSON(t, r, http.MethodPost, "/api/chat", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if body["error"] != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, body["error"])
			}
		})
	}
}

func TestChat_SessionIDRoundTrip(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"message":   "hello",
		"model":     "stub-model",
		"provider":  "stub",
		"sessionId": "session_fixed",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: %d", w.Code)
	}
	if body["sessionId"] != "session_fixed" {
		t.Fatalf("client session id should round-trip, got %v", body["sessionId"])
	}
	if body["status"] != "success" || body["response"] != "stub reply" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func uploadText(t *testing.T, r *gin.Engine, sessionID, filename, content string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.WriteField("sessionId", sessionID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal upload response: %v", err)
	}
	return body
}

func TestUploadThenListFiles(t *testing.T) {
	r, _ := newTestServer(t)

	body := uploadText(t, r, "s1", "notes.txt", strings.Repeat("n", 5<<10))
	if body["message"] != "File uploaded successfully" || body["fileId"] == "" {
		t.Fatalf("unexpected upload response: %v", body)
	}
	if body["originalName"] != "notes.txt" || body["mimetype"] != "text/plain" {
		t.Fatalf("unexpected upload metadata: %v", body)
	}
	if body["size"] != float64(5120) {
		t.Fatalf("expected size 5120, got %v", body["size"])
	}

	w, list := doJSON(t, r, http.MethodGet, "/api/files/s1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list files: %d", w.Code)
	}
	files, _ := list["files"].([]any)
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0].(map[string]any)
	if f["originalName"] != "notes.txt" {
		t.Fatalf("unexpected file entry: %v", f)
	}
	if _, leaked := f["content"]; leaked {
		t.Fatal("content must not be serialized in listings")
	}
}

func TestUpload_Validation(t *testing.T) {
	r, _ := newTestServer(t)

	// No multipart file at all.
	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d", w.Code)
	}

	// File present but no session id.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "a.txt")
	part.Write([]byte("abc"))
	mw.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Session ID is required") {
		t.Fatalf("expected session id error, got %d %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeFile_EndToEnd(t *testing.T) {
	r, _ := newTestServer(t)

	uploaded := uploadText(t, r, "s1", "report.txt", "quarterly numbers")
	fileID, _ := uploaded["fileId"].(string)

	w, body := doJSON(t, r, http.MethodPost, "/api/analyze-file", gin.H{
		"fileId":   fileID,
		"prompt":   "summarize",
		"model":    "stub-model",
		"provider": "stub",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: %d %s", w.Code, w.Body.String())
	}
	if body["status"] != "success" || body["fileName"] != "report.txt" || body["analysisId"] == "" {
		t.Fatalf("unexpected analyze response: %v", body)
	}

	w, analysis := doJSON(t, r, http.MethodGet, "/api/file-analysis/"+fileID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("file-analysis: %d", w.Code)
	}
	analyses, _ := analysis["analyses"].([]any)
	if len(analyses) != 1 {
		t.Fatalf("expected 1 analysis record, got %d", len(analyses))
	}
	rec := analyses[0].(map[string]any)
	if rec["prompt"] != "summarize" {
		t.Fatalf("unexpected analysis record: %v", rec)
	}
}

func TestAnalyzeFile_UnknownFileIs404(t *testing.T) {
	r, db := newTestServer(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/analyze-file", gin.H{
		"fileId":   "does-not-exist",
		"prompt":   "p",
		"model":    "stub-model",
		"provider": "stub",
	})
	if w.Code != http.StatusNotFound || body["error"] != "File not found" {
		t.Fatalf("expected 404 File not found, got %d %v", w.Code, body)
	}

	var count int64
	if err := db.Model(&chat.Turn{}).Count(&count).Error; err != nil {
		t.Fatalf("count turns: %v", err)
	}
	if count != 0 {
		t.Fatal("failed analysis must not write a turn")
	}
}

func TestDeleteHistory(t *testing.T) {
	r, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		w, _ := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
			"message": "hi", "model": "stub-model", "provider": "stub", "sessionId": "s1",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("chat seed: %d", w.Code)
		}
	}

	w, body := doJSON(t, r, http.MethodDelete, "/api/history/s1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if body["message"] != "Chat history deleted successfully" || body["deletedCount"] != float64(2) {
		t.Fatalf("unexpected delete response: %v", body)
	}

	// A second delete reports zero.
	_, body = doJSON(t, r, http.MethodDelete, "/api/history/s1", nil)
	if body["deletedCount"] != float64(0) {
		t.Fatalf("expected deletedCount 0, got %v", body["deletedCount"])
	}
}

func TestDeleteFile_Endpoint(t *testing.T) {
	r, _ := newTestServer(t)

	uploaded := uploadText(t, r, "s1", "gone.txt", "bye")
	fileID, _ := uploaded["fileId"].(string)

	w, body := doJSON(t, r, http.MethodDelete, "/api/files/"+fileID, nil)
	if w.Code != http.StatusOK || body["fileName"] != "gone.txt" {
		t.Fatalf("unexpected delete response: %d %v", w.Code, body)
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/api/files/"+fileID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete should 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health: %d %v", w.Code, body)
	}
	if body["database"] != "connected" {
		t.Fatalf("expected connected database, got %v", body["database"])
	}
	names, _ := body["supportedProviders"].([]any)
	if len(names) != 3 {
		t.Fatalf("expected 3 providers, got %v", names)
	}
	apiKeys, _ := body["apiKeys"].(map[string]any)
	if _, ok := apiKeys["cohere"]; ok {
		t.Fatal("placeholder providers must not appear in apiKeys")
	}
	if apiKeys["google"] != false {
		t.Fatalf("google should report a missing key, got %v", apiKeys["google"])
	}
}

func TestGetModels(t *testing.T) {
	r, _ := newTestServer(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("models: %d", w.Code)
	}
	providers, _ := body["providers"].([]any)
	if len(providers) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(providers))
	}
	for _, raw := range providers {
		p := raw.(map[string]any)
		if p["name"] == "google" {
			models, _ := p["models"].([]any)
			if len(models) == 0 {
				t.Fatal("google should advertise models")
			}
			if p["status"] != "needs_key" {
				t.Fatalf("keyless google should be needs_key, got %v", p["status"])
			}
		}
	}
}

func TestGetStats(t *testing.T) {
	r, _ := newTestServer(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"message": "hi", "model": "stub-model", "provider": "stub", "sessionId": "s1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat seed: %d", w.Code)
	}

	w, body := doJSON(t, r, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %d", w.Code)
	}
	if body["totalRequests"] != float64(1) {
		t.Fatalf("expected 1 recorded request, got %v", body["totalRequests"])
	}
	database, _ := body["database"].(map[string]any)
	if database["totalChats"] != float64(1) {
		t.Fatalf("expected 1 stored chat, got %v", database["totalChats"])
	}
	history, _ := body["requestHistory"].([]any)
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
}
