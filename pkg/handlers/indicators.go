package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/services"
)

// IndicatorsHandler handles KPI batch HTTP requests.
type IndicatorsHandler struct {
	indicators services.IndicatorService
	logger     *zap.Logger
}

// NewIndicatorsHandler creates a new indicators handler.
func NewIndicatorsHandler(indicators services.IndicatorService, logger *zap.Logger) *IndicatorsHandler {
	return &IndicatorsHandler{indicators: indicators, logger: logger}
}

// RegisterRoutes registers the indicators handler's routes on the given mux.
func (h *IndicatorsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/indicators", h.Indicators)
}

// Indicators handles GET /api/indicators
// Ratios without data in the current windows come back as null, never NaN.
func (h *IndicatorsHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	report, err := h.indicators.Compute(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: report}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
