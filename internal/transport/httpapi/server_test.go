package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/quran-omni/omnisearch/internal/domain"
)

type mockSearcher struct {
	lastReq domain.SearchRequest
	resp    domain.SearchResponse
	err     error
	calls   int
}

func (m *mockSearcher) Search(_ context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	m.calls++
	m.lastReq = req
	return m.resp, m.err
}

func newTestRouter(searcher *mockSearcher) http.Handler {
	r := chi.NewRouter()
	NewServer(searcher, nil).Register(r)
	return r
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&mockSearcher{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestSearchGet_ParamMapping(t *testing.T) {
	searcher := &mockSearcher{resp: domain.SearchResponse{Query: "mercy"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/search?q=mercy&spaces=quran,tafsir&lang=ur&limit=5&overview=true", nil)
	newTestRouter(searcher).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := searcher.lastReq
	want := domain.SearchRequest{
		Query: "mercy", Spaces: "quran,tafsir", Language: "ur", Limit: 5, IncludeOverview: true,
	}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("CORS origin header = %q", origin)
	}
}

func TestSearchGet_LongParamNamesWin(t *testing.T) {
	searcher := &mockSearcher{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?query=full&q=short&language=en&lang=ur", nil)
	newTestRouter(searcher).ServeHTTP(rec, req)

	if searcher.lastReq.Query != "full" || searcher.lastReq.Language != "en" {
		t.Errorf("request = %+v", searcher.lastReq)
	}
}

func TestSearchGet_BadLimit(t *testing.T) {
	searcher := &mockSearcher{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=mercy&limit=many", nil)
	newTestRouter(searcher).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if searcher.calls != 0 {
		t.Error("invalid limit must not reach the service")
	}
}

func TestSearchPost_BodyMapping(t *testing.T) {
	searcher := &mockSearcher{}
	rec := httptest.NewRecorder()
	body := `{"query":"mercy","spaces":"posts","language":"en","limit":3,"includeOverview":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	newTestRouter(searcher).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := searcher.lastReq
	want := domain.SearchRequest{
		Query: "mercy", Spaces: "posts", Language: "en", Limit: 3, IncludeOverview: true,
	}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestSearchPost_InvalidJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))
	newTestRouter(&mockSearcher{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSearch_EmptyQueryMapsToBadRequest(t *testing.T) {
	searcher := &mockSearcher{err: domain.ErrEmptyQuery}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=%20", nil)
	newTestRouter(searcher).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "bad_request" {
		t.Errorf("error code = %q", body["error"])
	}
}

func TestSearch_InternalErrorIsOpaque(t *testing.T) {
	searcher := &mockSearcher{err: errors.New("upstream connection refused to 10.0.0.5")}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=mercy", nil)
	newTestRouter(searcher).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "server_error" || body["message"] != "Unexpected server error" {
		t.Errorf("body = %v", body)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("internal detail leaked to the client")
	}
}

func TestSearch_Preflight(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	newTestRouter(&mockSearcher{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "POST") {
		t.Errorf("methods header = %q", methods)
	}
}
