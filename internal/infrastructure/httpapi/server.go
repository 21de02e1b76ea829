package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/usecase"
)

// Analyzer is the single operation the API exposes.
type Analyzer interface {
	Analyze(ctx context.Context, req usecase.Request) (domain.AcquisitionResult, error)
}

type analyzeRequest struct {
	MapsURL     string `json:"maps_url"`
	ForceUpdate bool   `json:"forceUpdate"`
	Limit       int    `json:"limit"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type server struct {
	analyzer     Analyzer
	defaultLimit int
	logger       *slog.Logger
}

// NewHandler builds the JSON API: a fast health probe plus the analyze
// endpoint. Internal state-machine detail never leaks to the caller; the only
// user-visible failure is a not-found condition.
func NewHandler(analyzer Analyzer, defaultLimit int, logger *slog.Logger) http.Handler {
	s := &server{analyzer: analyzer, defaultLimit: defaultLimit, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.health)
	mux.HandleFunc("POST /analyze", s.analyze)
	return mux
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "review-scanner",
		"ready":   true,
	})
}

func (s *server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}

	if !validTarget(req.MapsURL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "maps_url must be an absolute http(s) URL"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	result, err := s.analyzer.Analyze(r.Context(), usecase.Request{
		URL:          req.MapsURL,
		Limit:        limit,
		ForceRefresh: req.ForceUpdate,
	})
	if errors.Is(err, usecase.ErrEmptyResult) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "no reviews found and no cached fallback available"})
		return
	}
	if err != nil {
		s.error("analyze request failed", "url", req.MapsURL, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func validTarget(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *server) error(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
