// Package api provides HTTP handlers for FARMA endpoints.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// HealthStatus is the result payload of GET /healthz.
type HealthStatus struct {
	Sessions    int  `json:"sessions"`
	ModelLoaded bool `json:"model_loaded"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		slog.Warn("Server.chatHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(validationMessage(err)))
		return
	}

	resp, err := s.processor.Process(r.Context(), req)
	if err != nil {
		if isClientError(err) {
			slog.Warn("Server.chatHandler: rejected request", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Error("Server.chatHandler: failed to process message", "sessionID", req.SessionID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}

	slog.Debug("Server.chatHandler: turn processed", "sessionID", resp.SessionID, "state", resp.State)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.st.Count(r.Context())
	if err != nil {
		slog.Error("Server.healthHandler: failed to count sessions", "error", err)
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Session store unavailable"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(HealthStatus{
		Sessions:    n,
		ModelLoaded: s.opts.ModelLoaded,
	}))
}

// isClientError reports whether a Process error was caused by the request itself.
func isClientError(err error) bool {
	return errors.Is(err, models.ErrInvalidLanguage) ||
		errors.Is(err, models.ErrMessageTooLong) ||
		errors.Is(err, models.ErrSessionIDTooLong) ||
		errors.Is(err, models.ErrEmptyChannelKey)
}

// validationMessage turns validator errors into a short client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(fields, ", ")
}
