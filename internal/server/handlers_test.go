package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/history"
	"github.com/hyperjump/kotae/internal/index"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/rag"
)

type fakeGateway struct {
	answer string
	err    error
}

func (f *fakeGateway) Chat(ctx context.Context, prompt, model string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGateway) Model() string { return "test-model" }

func testDocs() []models.Document {
	return []models.Document{
		{Section: "General", Question: "When does the course start?", Text: "The course starts on 15 Jan.", Group: "de-zoomcamp"},
		{Section: "General", Question: "Can I still enroll?", Text: "Yes, even after the start date.", Group: "de-zoomcamp"},
		{Section: "Setup", Question: "How do I install kafka?", Text: "Run the setup script.", Group: "ml-zoomcamp"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server:        config.ServerConfig{Host: "localhost", Port: 8080},
		KnowledgeBase: config.KnowledgeBaseConfig{Path: "/tmp/kb.json"},
		Search:        config.SearchConfig{DefaultLimit: 5},
		Gateway:       config.GatewayConfig{Model: "gpt-4o"},
	}
}

// newTestServer wires a server over the test corpus. withHistory adds a
// SQLite store in a temp directory.
func newTestServer(t *testing.T, gw rag.Gateway, withHistory bool) *Server {
	t.Helper()
	idx, err := index.Build(index.DefaultSchema(), testDocs())
	if err != nil {
		t.Fatal(err)
	}

	var store *history.Store
	opts := []rag.Option{}
	if withHistory {
		store, err = history.New(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { store.Close() })
		opts = append(opts, rag.WithHistory(store))
	}

	engine := rag.NewEngine(idx, gw, &config.SearchConfig{DefaultLimit: 5}, opts...)
	t.Cleanup(func() { engine.Close() })
	return NewServer(engine, store, testConfig(), zap.NewNop())
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestHandleAsk(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "It starts on 15 Jan."}, false)

	w := postJSON(t, srv.handleAsk, "/api/v1/ask", models.AskRequest{Question: "when does the course start"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out models.AskResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Answer != "It starts on 15 Jan." {
		t.Errorf("answer: got %q", out.Answer)
	}
	if out.Model != "test-model" {
		t.Errorf("model: got %q, want %q", out.Model, "test-model")
	}
	if len(out.Sources) == 0 {
		t.Error("expected sources in response")
	}
}

func TestHandleAskInvalidBody(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, false)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.handleAsk(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleAskEmptyQuestion(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, false)
	w := postJSON(t, srv.handleAsk, "/api/v1/ask", models.AskRequest{Question: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleAskGatewayDown(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("%w: connection refused", models.ErrGateway)}
	srv := newTestServer(t, gw, false)
	w := postJSON(t, srv.handleAsk, "/api/v1/ask", models.AskRequest{Question: "anything"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, false)
	w := postJSON(t, srv.handleSearch, "/api/v1/search", models.SearchQuery{Query: "course", Limit: 2})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 2 {
		t.Errorf("results: got %d, want 2", len(out.Results))
	}
}

func TestHandleSearchInvalidLimit(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, false)
	w := postJSON(t, srv.handleSearch, "/api/v1/search", models.SearchQuery{Query: "course", Limit: -1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearchNotReady(t *testing.T) {
	engine := rag.NewEngine(nil, &fakeGateway{answer: "x"}, &config.SearchConfig{DefaultLimit: 5})
	srv := NewServer(engine, nil, testConfig(), zap.NewNop())
	w := postJSON(t, srv.handleSearch, "/api/v1/search", models.SearchQuery{Query: "course"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "15 Jan."}, true)
	handler := srv.Handler()

	// Ask twice so history has records.
	for _, q := range []string{"when does the course start", "can I still enroll"} {
		body, _ := json.Marshal(models.AskRequest{Question: q})
		r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("ask %q: status %d, body: %s", q, w.Code, w.Body.String())
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=10", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("history list: status %d, body: %s", w.Code, w.Body.String())
	}
	var list struct {
		Records []*models.AskRecord `json:"records"`
		Total   int64               `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 || len(list.Records) != 2 {
		t.Fatalf("history list: total %d, records %d", list.Total, len(list.Records))
	}

	id := list.Records[0].ID
	body, _ := json.Marshal(feedbackRequest{Feedback: 1})
	r = httptest.NewRequest(http.MethodPost, "/api/v1/history/"+id+"/feedback", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("feedback: status %d, body: %s", w.Code, w.Body.String())
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/history/"+id, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("history get: status %d", w.Code)
	}
	var rec models.AskRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.Feedback != 1 {
		t.Errorf("feedback: got %d, want 1", rec.Feedback)
	}
}

func TestHistoryFeedbackErrors(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, true)
	handler := srv.Handler()

	body, _ := json.Marshal(feedbackRequest{Feedback: 1})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/history/no-such-id/feedback", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status %d, want 404", w.Code)
	}

	body, _ = json.Marshal(feedbackRequest{Feedback: 5})
	r = httptest.NewRequest(http.MethodPost, "/api/v1/history/no-such-id/feedback", bytes.NewReader(body))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("out of range: status %d, want 400", w.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, false)
	handler := srv.Handler()

	for _, target := range []string{"/api/v1/history", "/api/v1/history/some-id"} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusNotImplemented {
			t.Errorf("%s: status %d, want 501", target, w.Code)
		}
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, true)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Ready          bool  `json:"ready"`
		Documents      int   `json:"documents"`
		HistoryRecords int64 `json:"history_records"`
		Index          struct {
			TextFields []string `json:"text_fields"`
		} `json:"index"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Ready {
		t.Error("ready: got false")
	}
	if out.Documents != len(testDocs()) {
		t.Errorf("documents: got %d, want %d", out.Documents, len(testDocs()))
	}
	if len(out.Index.TextFields) == 0 {
		t.Error("expected index schema in status")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{answer: "x"}, false)
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}
