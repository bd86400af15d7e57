package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cleancrew/crewboard/internal/database"
	"github.com/cleancrew/crewboard/internal/models"
)

// JobStatusUpdater changes the status of a job
type JobStatusUpdater interface {
	UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error
}

// JobsHandler handles job mutations coming from the calendar
type JobsHandler struct {
	*BaseHandler
	Jobs JobStatusUpdater
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(baseHandler *BaseHandler, jobs JobStatusUpdater) *JobsHandler {
	return &JobsHandler{
		BaseHandler: baseHandler,
		Jobs:        jobs,
	}
}

// RegisterRoutes registers job related routes
func (h *JobsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/jobs/{id}/status", h.handleUpdateStatus)
}

// UpdateStatusRequest is the body of a status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatusResponse confirms a status change
type UpdateStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Label  string `json:"label"`
}

func (h *JobsHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleUpdateStatus", r)

	jobID := r.PathValue("id")
	if jobID == "" {
		h.WriteError(w, logger, http.StatusBadRequest, ErrCodeMissingJobID)
		return
	}
	logger = logger.With().Str("job_id", jobID).Logger()

	var req UpdateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode status update body")
		h.WriteError(w, logger, http.StatusBadRequest, ErrCodeInvalidRequestBody)
		return
	}

	status, ok := models.ParseJobStatus(req.Status)
	if !ok {
		logger.Warn().Str("status", req.Status).Msg("Rejected unknown job status")
		h.WriteError(w, logger, http.StatusBadRequest, ErrCodeInvalidStatus)
		return
	}

	if err := h.Jobs.UpdateJobStatus(r.Context(), jobID, status); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			logger.Info().Msg("Status update for unknown job")
			h.WriteError(w, logger, http.StatusNotFound, ErrCodeJobNotFound)
		case errors.Is(err, database.ErrInvalidStatus):
			h.WriteError(w, logger, http.StatusBadRequest, ErrCodeInvalidStatus)
		default:
			logger.Error().Err(err).Msg("Failed to update job status")
			h.WriteError(w, logger, http.StatusInternalServerError, ErrCodeUpdateFailed)
		}
		return
	}

	logger.Info().Str("status", string(status)).Msg("Job status updated")
	h.WriteJSON(w, logger, http.StatusOK, UpdateStatusResponse{
		ID:     jobID,
		Status: string(status),
		Label:  status.Label(),
	})
}
