package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question), zap.String("model", req.Model))
	resp, err := s.engine.Ask(r.Context(), req)
	if err != nil {
		s.respondFailure(w, "ask", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.respondFailure(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultHistoryPageSize)
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}
	records, err := s.history.List(r.Context(), offset, limit)
	if err != nil {
		s.respondFailure(w, "history list", err)
		return
	}
	total, err := s.history.Count(r.Context())
	if err != nil {
		s.respondFailure(w, "history count", err)
		return
	}
	if records == nil {
		records = []*models.AskRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.respondFailure(w, "history get", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

type feedbackRequest struct {
	Feedback int `json:"feedback"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("feedback request", zap.String("id", id), zap.Int("feedback", req.Feedback))
	if err := s.history.SetFeedback(r.Context(), id, req.Feedback); err != nil {
		s.respondFailure(w, "feedback", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"feedback": req.Feedback,
		"status":   "recorded",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"ready":     s.engine.Ready(),
		"documents": s.engine.DocCount(),
		"index":     s.engine.Schema(),
		"config": map[string]interface{}{
			"model":          s.config.Gateway.Model,
			"default_limit":  s.config.Search.DefaultLimit,
			"knowledge_base": s.config.KnowledgeBase.Path,
		},
	}
	if s.history != nil {
		count, err := s.history.Count(r.Context())
		if err != nil {
			s.respondFailure(w, "status", err)
			return
		}
		resp["history_records"] = count
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent, unparseable, or negative.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// statusForError maps pipeline errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidQuery),
		errors.Is(err, models.ErrMalformedInput),
		errors.Is(err, models.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, op string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
