package handler

import (
	"net/http"

	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Metrics godoc
// @Summary Dashboard metric cards
// @Description Returns the four dashboard cards. Regular users see counts over their own requests; admins see counts over all requests.
// @Tags Dashboard
// @Produce json
// @Success 200 {array} domain.DashboardMetricDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	metrics, err := h.dashboardService.Metrics(r.Context(), userCtx)
	if err != nil {
		h.logger.Error("failed to build dashboard metrics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build dashboard metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
