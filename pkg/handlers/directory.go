package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/services"
)

// staffRequest is the wire form of a staff upsert. A missing id creates a
// new record.
type staffRequest struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Name           string     `json:"name"`
	Salary         float64    `json:"salary"`
	AvailableDate  time.Time  `json:"available_date"`
	Skills         []string   `json:"skills"`
	Certificates   []string   `json:"certificates"`
	SelectionStart time.Time  `json:"selection_start"`
	SelectionEnd   time.Time  `json:"selection_end"`
}

func (s *staffRequest) toInput() services.StaffInput {
	return services.StaffInput{
		ID:            s.ID,
		Name:          s.Name,
		Salary:        s.Salary,
		AvailableDate: s.AvailableDate,
		Skills:        s.Skills,
		Certificates:  s.Certificates,
	}
}

// DirectoryHandler handles staff and client roster HTTP requests.
type DirectoryHandler struct {
	directory services.DirectoryService
	logger    *zap.Logger
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(directory services.DirectoryService, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, logger: logger}
}

// RegisterRoutes registers the directory handler's routes on the given mux.
func (h *DirectoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/pms", h.ListPMs)
	mux.HandleFunc("GET /api/developers", h.ListDevelopers)
	mux.HandleFunc("GET /api/under-selection", h.ListUnderSelection)
	mux.HandleFunc("GET /api/clients", h.ListClients)

	mux.HandleFunc("POST /api/staff/pms", h.UpsertPM)
	mux.HandleFunc("POST /api/staff/developers", h.UpsertDeveloper)
	mux.HandleFunc("POST /api/staff/under-selection", h.UpsertUnderSelection)
}

func (h *DirectoryHandler) writeList(w http.ResponseWriter, data any, err error) {
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: data}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListPMs handles GET /api/pms
func (h *DirectoryHandler) ListPMs(w http.ResponseWriter, r *http.Request) {
	pms, err := h.directory.ListPMs(r.Context())
	h.writeList(w, pms, err)
}

// ListDevelopers handles GET /api/developers
func (h *DirectoryHandler) ListDevelopers(w http.ResponseWriter, r *http.Request) {
	developers, err := h.directory.ListDevelopers(r.Context())
	h.writeList(w, developers, err)
}

// ListUnderSelection handles GET /api/under-selection
func (h *DirectoryHandler) ListUnderSelection(w http.ResponseWriter, r *http.Request) {
	developers, err := h.directory.ListUnderSelection(r.Context())
	h.writeList(w, developers, err)
}

// ListClients handles GET /api/clients
func (h *DirectoryHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.directory.ListClients(r.Context())
	h.writeList(w, clients, err)
}

func (h *DirectoryHandler) decodeStaffRequest(w http.ResponseWriter, r *http.Request) (*staffRequest, bool) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_name", "Name must not be empty"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return &req, true
}

// UpsertPM handles POST /api/staff/pms
func (h *DirectoryHandler) UpsertPM(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStaffRequest(w, r)
	if !ok {
		return
	}

	pm, err := h.directory.UpsertPM(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: pm}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpsertDeveloper handles POST /api/staff/developers
func (h *DirectoryHandler) UpsertDeveloper(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStaffRequest(w, r)
	if !ok {
		return
	}

	dev, err := h.directory.UpsertDeveloper(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: dev}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpsertUnderSelection handles POST /api/staff/under-selection
func (h *DirectoryHandler) UpsertUnderSelection(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStaffRequest(w, r)
	if !ok {
		return
	}

	if req.SelectionEnd.Before(req.SelectionStart) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_selection_window", "Selection end must not precede selection start"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	dev, err := h.directory.UpsertUnderSelection(r.Context(), services.UnderSelectionInput{
		StaffInput:     req.toInput(),
		SelectionStart: req.SelectionStart,
		SelectionEnd:   req.SelectionEnd,
	})
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: dev}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
