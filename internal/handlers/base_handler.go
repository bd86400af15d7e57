package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cleancrew/crewboard/internal/logging"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BaseHandler contains common handler functionality
type BaseHandler struct {
	logger zerolog.Logger
}

// NewBaseHandler creates a common base handler with shared components
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{logger: logging.GetLogger("http")}
}

// WriteJSON encodes v as the response body with the given status
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, logger zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError writes an ErrorResponse for code with the given status
func (h *BaseHandler) WriteError(w http.ResponseWriter, logger zerolog.Logger, status int, code string) {
	h.WriteJSON(w, logger, status, ErrorResponse{Code: code, Message: GetErrorMessage(code)})
}

// requestLogger returns a logger tagged with the handler name and request line
func (h *BaseHandler) requestLogger(name string, r *http.Request) zerolog.Logger {
	return h.logger.With().
		Str("handler", name).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()
}
