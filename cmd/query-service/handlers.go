package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/report"
	"report-query-engine/internal/session"
)

// Server is the HTTP surface over the session manager.
type Server struct {
	manager *session.Manager
	logger  logger.Logger
	version string
}

func NewServer(manager *session.Manager, version string, log logger.Logger) *Server {
	return &Server{
		manager: manager,
		version: version,
		logger: log.With(map[string]interface{}{
			"component": "http-server",
		}),
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/{id}/query", s.handleQuery)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

type createSessionRequest struct {
	Document json.RawMessage `json:"document"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, cerrors.NewInvalidRequestError(err))
		return
	}

	doc, err := report.Parse(req.Document)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, cerrors.NewInvalidDocumentError(err))
		return
	}

	sess := s.manager.Create(doc)
	s.writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sess.ID})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, cerrors.NewInvalidRequestError(err))
		return
	}

	resp, err := s.manager.Ask(r.Context(), id, req.Query)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.manager.Reset(id); err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "sessionId": id})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.manager.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"sessions": s.manager.Count(),
		"time":     time.Now().Format(time.RFC3339),
	})
}

func statusForError(err error) int {
	switch cerrors.CodeOf(err) {
	case cerrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case cerrors.ErrCodeSessionBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]interface{}{
		"error":     err.Error(),
		"retryable": cerrors.IsRetryable(err),
	}
	if stdErr, ok := err.(*cerrors.StandardError); ok {
		body = map[string]interface{}{
			"error":     stdErr.Message,
			"code":      string(stdErr.Code),
			"details":   stdErr.Details,
			"retryable": stdErr.Retryable,
		}
	}
	json.NewEncoder(w).Encode(body)
}
