package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/services"
)

// assignTeamRequest is the wire form of assignTeam. The id lists are the
// full desired roster, not a delta.
type assignTeamRequest struct {
	PMID              *uuid.UUID  `json:"pm_id,omitempty"`
	DeveloperIDs      []uuid.UUID `json:"developer_ids"`
	UnderSelectionIDs []uuid.UUID `json:"under_selection_ids"`
}

// StaffingHandler handles team assignment HTTP requests.
type StaffingHandler struct {
	staffing services.StaffingService
	logger   *zap.Logger
}

// NewStaffingHandler creates a new staffing handler.
func NewStaffingHandler(staffing services.StaffingService, logger *zap.Logger) *StaffingHandler {
	return &StaffingHandler{staffing: staffing, logger: logger}
}

// RegisterRoutes registers the staffing handler's routes on the given mux.
func (h *StaffingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects/{pid}/team", h.AssignTeam)
}

// AssignTeam handles POST /api/projects/{pid}/team
func (h *StaffingHandler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req assignTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.staffing.AssignTeam(r.Context(), projectID, services.AssignTeamRequest{
		PMID:              req.PMID,
		DeveloperIDs:      req.DeveloperIDs,
		UnderSelectionIDs: req.UnderSelectionIDs,
	})
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
