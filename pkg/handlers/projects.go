package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/services"
)

// clientPayload carries inline client data for connect-or-create.
type clientPayload struct {
	Name         string `json:"name"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// projectRequest is the wire form of createProject and updateProject.
// Exactly one of client_id and client must be present.
type projectRequest struct {
	Name      string         `json:"name"`
	Industry  string         `json:"industry"`
	Studio    string         `json:"studio"`
	DevAmount int            `json:"dev_amount"`
	MaxBudget float64        `json:"max_budget"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	ClientID  *uuid.UUID     `json:"client_id,omitempty"`
	Client    *clientPayload `json:"client,omitempty"`
}

func (p *projectRequest) toInput() services.ProjectInput {
	input := services.ProjectInput{
		Name:      p.Name,
		Industry:  p.Industry,
		Studio:    p.Studio,
		DevAmount: p.DevAmount,
		MaxBudget: p.MaxBudget,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		ClientID:  p.ClientID,
	}
	if p.Client != nil {
		input.NewClient = &services.ClientInput{
			Name:         p.Client.Name,
			ContactName:  p.Client.ContactName,
			ContactEmail: p.Client.ContactEmail,
			ContactPhone: p.Client.ContactPhone,
		}
	}
	return input
}

// priceResponse is the getProjectPrice payload.
type priceResponse struct {
	ProjectID uuid.UUID `json:"project_id"`
	Price     float64   `json:"price"`
}

// ProjectsHandler handles project lifecycle HTTP requests.
type ProjectsHandler struct {
	lifecycle services.LifecycleService
	cost      services.CostService
	logger    *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(
	lifecycle services.LifecycleService,
	cost services.CostService,
	logger *zap.Logger,
) *ProjectsHandler {
	return &ProjectsHandler{
		lifecycle: lifecycle,
		cost:      cost,
		logger:    logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects", h.CreateProject)
	mux.HandleFunc("GET /api/projects", h.ListProjects)
	mux.HandleFunc("GET /api/projects/{pid}", h.GetProject)
	mux.HandleFunc("PUT /api/projects/{pid}", h.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{pid}", h.CancelProject)
	mux.HandleFunc("POST /api/projects/{pid}/send", h.SendToClient)
	mux.HandleFunc("POST /api/projects/{pid}/reject", h.ClientRejected)
	mux.HandleFunc("POST /api/projects/{pid}/accept", h.ClientAccepted)
	mux.HandleFunc("GET /api/projects/{pid}/price", h.ProjectPrice)
}

func (h *ProjectsHandler) decodeProjectRequest(w http.ResponseWriter, r *http.Request) (*projectRequest, bool) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	if req.DevAmount < 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_dev_amount", "dev_amount must not be negative"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return &req, true
}

// CreateProject handles POST /api/projects
func (h *ProjectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProjectRequest(w, r)
	if !ok {
		return
	}

	project, err := h.lifecycle.CreateProject(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListProjects handles GET /api/projects
func (h *ProjectsHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.lifecycle.ListProjects(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if projects == nil {
		projects = make([]models.Project, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: projects}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetProject handles GET /api/projects/{pid}
func (h *ProjectsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.lifecycle.GetProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateProject handles PUT /api/projects/{pid}
func (h *ProjectsHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	req, ok := h.decodeProjectRequest(w, r)
	if !ok {
		return
	}

	project, err := h.lifecycle.UpdateProject(r.Context(), projectID, req.toInput())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// CancelProject handles DELETE /api/projects/{pid}
// Cancellation is a state transition, not a row removal.
func (h *ProjectsHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.lifecycle.CancelProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SendToClient handles POST /api/projects/{pid}/send
func (h *ProjectsHandler) SendToClient(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.SendToClient)
}

// ClientRejected handles POST /api/projects/{pid}/reject
func (h *ProjectsHandler) ClientRejected(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.ClientRejected)
}

// ClientAccepted handles POST /api/projects/{pid}/accept
func (h *ProjectsHandler) ClientAccepted(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.ClientAccepted)
}

// ProjectPrice handles GET /api/projects/{pid}/price
func (h *ProjectsHandler) ProjectPrice(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	price, err := h.cost.ProjectPrice(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: priceResponse{
		ProjectID: projectID,
		Price:     price,
	}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (*models.Project, error)

func (h *ProjectsHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := fn(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
