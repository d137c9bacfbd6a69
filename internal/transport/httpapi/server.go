// Package httpapi exposes the search service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
	"github.com/quran-omni/omnisearch/internal/version"
)

// Searcher runs one consolidated search request.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error)
}

// Server holds the HTTP handlers.
type Server struct {
	search Searcher
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{search: search, logger: logger}
}

// Register mounts the API routes.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/search", s.handleSearchGet)
	r.Post("/api/search", s.handleSearchPost)
	r.Options("/api/search", handlePreflight)
}

// searchBody is the POST request shape. Both overview spellings are
// accepted; either one set turns the synthesis on.
type searchBody struct {
	Query           string `json:"query"`
	Q               string `json:"q"`
	Spaces          string `json:"spaces"`
	Language        string `json:"language"`
	Lang            string `json:"lang"`
	Limit           int    `json:"limit"`
	Overview        bool   `json:"overview"`
	IncludeOverview bool   `json:"includeOverview"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := params.Get("query")
	if query == "" {
		query = params.Get("q")
	}
	language := params.Get("language")
	if language == "" {
		language = params.Get("lang")
	}

	limit := 0
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			setCORSHeaders(w)
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	s.runSearch(w, r, domain.SearchRequest{
		Query:           query,
		Spaces:          params.Get("spaces"),
		Language:        language,
		Limit:           limit,
		IncludeOverview: parseBool(params.Get("overview")),
	})
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		setCORSHeaders(w)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	query := body.Query
	if query == "" {
		query = body.Q
	}
	language := body.Language
	if language == "" {
		language = body.Lang
	}

	s.runSearch(w, r, domain.SearchRequest{
		Query:           query,
		Spaces:          body.Spaces,
		Language:        language,
		Limit:           body.Limit,
		IncludeOverview: body.Overview || body.IncludeOverview,
	})
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req domain.SearchRequest) {
	setCORSHeaders(w)

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.logger.Error("search request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", "Unexpected server error")
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
