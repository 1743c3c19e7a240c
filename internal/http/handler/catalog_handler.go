package handler

import (
	"net/http"
	"strconv"

	"github.com/sitesupply/procurement-api/internal/erp"
	"go.uber.org/zap"
)

// CatalogHandler serves read-only material master lookups from the
// optional ERP connection. When the connection is disabled the routes
// respond 503 so clients can fall back to free-text entry.
type CatalogHandler struct {
	erpClient *erp.Client
	logger    *zap.Logger
}

func NewCatalogHandler(erpClient *erp.Client, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		erpClient: erpClient,
		logger:    logger,
	}
}

// SearchMaterials godoc
// @Summary Search the ERP material master
// @Description Look up materials by name or code in the ERP catalog. Available only when the ERP connection is configured.
// @Tags Catalog
// @Produce json
// @Param search query string true "Search term (name or material code)"
// @Param limit query int false "Maximum results" default(50)
// @Success 200 {array} domain.ErpMaterialDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 503 {object} domain.APIError "ERP connection not configured"
// @Security BearerAuth
// @Router /catalog/materials [get]
func (h *CatalogHandler) SearchMaterials(w http.ResponseWriter, r *http.Request) {
	if !h.erpClient.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "ERP catalog is not configured")
		return
	}

	term := r.URL.Query().Get("search")
	if term == "" {
		respondWithError(w, http.StatusBadRequest, "Missing search query parameter")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	materials, err := h.erpClient.SearchMaterials(r.Context(), term, limit)
	if err != nil {
		h.logger.Error("ERP material search failed",
			zap.String("term", term),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "ERP catalog query failed")
		return
	}

	respondJSON(w, http.StatusOK, materials)
}
