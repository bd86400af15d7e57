package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/refresh"
)

// CalendarController drives navigation and exposes the published snapshot
type CalendarController interface {
	Snapshot() *refresh.Snapshot
	SetMode(ctx context.Context, mode constants.ViewMode) (*refresh.Snapshot, error)
	Navigate(ctx context.Context, direction constants.Direction) (*refresh.Snapshot, error)
	GoToToday(ctx context.Context) (*refresh.Snapshot, error)
	Refresh(ctx context.Context) (*refresh.Snapshot, error)
}

// CalendarHandler serves the calendar snapshot and navigation actions
type CalendarHandler struct {
	*BaseHandler
	Calendar CalendarController
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(baseHandler *BaseHandler, calendar CalendarController) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler: baseHandler,
		Calendar:    calendar,
	}
}

// RegisterRoutes registers calendar related routes
func (h *CalendarHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/calendar", h.handleGetCalendar)
	mux.HandleFunc("POST /api/calendar/navigate", h.handleNavigate)
	mux.HandleFunc("POST /api/calendar/today", h.handleToday)
	mux.HandleFunc("POST /api/calendar/mode", h.handleSetMode)
	mux.HandleFunc("POST /api/calendar/refresh", h.handleRefresh)
}

func (h *CalendarHandler) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleGetCalendar", r)
	logger.Debug().Msg("Serving calendar snapshot")
	h.WriteJSON(w, logger, http.StatusOK, newCalendarResponse(h.Calendar.Snapshot()))
}

func (h *CalendarHandler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleNavigate", r)

	raw := r.URL.Query().Get("direction")
	direction, err := constants.ParseDirection(raw)
	if err != nil {
		logger.Warn().Str("direction", raw).Msg("Invalid navigation direction")
		h.WriteError(w, logger, http.StatusBadRequest, ErrCodeInvalidDirection)
		return
	}

	snap, err := h.Calendar.Navigate(r.Context(), direction)
	h.writeSnapshot(w, logger, snap, err)
}

func (h *CalendarHandler) handleToday(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleToday", r)
	snap, err := h.Calendar.GoToToday(r.Context())
	h.writeSnapshot(w, logger, snap, err)
}

func (h *CalendarHandler) handleSetMode(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleSetMode", r)

	raw := r.URL.Query().Get("mode")
	mode, err := constants.ParseViewMode(raw)
	if err != nil {
		logger.Warn().Str("mode", raw).Msg("Invalid view mode")
		h.WriteError(w, logger, http.StatusBadRequest, ErrCodeInvalidMode)
		return
	}

	snap, err := h.Calendar.SetMode(r.Context(), mode)
	h.writeSnapshot(w, logger, snap, err)
}

func (h *CalendarHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger("handleRefresh", r)
	snap, err := h.Calendar.Refresh(r.Context())
	h.writeSnapshot(w, logger, snap, err)
}

// writeSnapshot renders the outcome of a load. Fetch failures are reported
// through the snapshot state; a superseded load answers with the newest snapshot.
func (h *CalendarHandler) writeSnapshot(w http.ResponseWriter, logger zerolog.Logger, snap *refresh.Snapshot, err error) {
	var fetchErr *refresh.FetchError
	switch {
	case err == nil, errors.As(err, &fetchErr) && snap != nil:
	case errors.Is(err, refresh.ErrSuperseded), errors.Is(err, context.Canceled):
		logger.Debug().Err(err).Msg("Load not published, returning latest snapshot")
		snap = h.Calendar.Snapshot()
	default:
		logger.Error().Err(err).Msg("Failed to load calendar")
		h.WriteError(w, logger, http.StatusInternalServerError, ErrCodeCalendarLoadFailed)
		return
	}
	h.WriteJSON(w, logger, http.StatusOK, newCalendarResponse(snap))
}
