package handlers

import (
	"context"
	"net/http"

	"github.com/cleancrew/crewboard/internal/models"
)

// StaffLister reads the staff directory
type StaffLister interface {
	FetchStaff(ctx context.Context) ([]models.Staff, error)
}

// StaffHandler serves the staff directory
type StaffHandler struct {
	*BaseHandler
	Staff StaffLister
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(baseHandler *BaseHandler, staff StaffLister) *StaffHandler {
	return &StaffHandler{
		BaseHandler: baseHandler,
		Staff:       staff,
	}
}

// RegisterRoutes registers staff related routes
func (h *StaffHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/staff", h.handleListStaff)
}

// StaffResponse is one staff member
type StaffResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Status    string  `json:"status"`
	Location  string  `json:"location"`
	Phone     string  `json:"phone"`
	Rating    float64 `json:"rating"`
	JobsToday int     `json:"jobs_today"`
}

func (h *StaffHandler) handleListStaff(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleListStaff", r)

	staff, err := h.Staff.FetchStaff(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch staff")
		h.WriteError(w, logger, http.StatusInternalServerError, ErrCodeStaffFetchFailed)
		return
	}

	resp := make([]StaffResponse, 0, len(staff))
	for _, s := range staff {
		resp = append(resp, StaffResponse(s))
	}
	h.WriteJSON(w, logger, http.StatusOK, resp)
}
