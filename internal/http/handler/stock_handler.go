package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"go.uber.org/zap"
)

// maxImportSize caps uploaded spreadsheet size at 10 MiB
const maxImportSize = 10 << 20

type StockHandler struct {
	stockService *service.StockService
	logger       *zap.Logger
}

func NewStockHandler(stockService *service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// List godoc
// @Summary List stock ledger rows
// @Description Get paginated stock transactions, newest first, with optional filters
// @Tags Stock
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param item query string false "Filter by item name (case-insensitive)"
// @Param category query string false "Filter by category"
// @Param requestId query string false "Filter by linked material request" format(uuid)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.StockTransactionDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /stock [get]
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filter := &repository.StockFilter{
		Item:     r.URL.Query().Get("item"),
		Category: r.URL.Query().Get("category"),
	}
	if rid := r.URL.Query().Get("requestId"); rid != "" {
		if id, err := uuid.Parse(rid); err == nil {
			filter.RequestID = &id
		}
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}

	rows, total, err := h.stockService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list stock transactions", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list stock transactions")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(rows, total, page, pageSize))
}

// Receive godoc
// @Summary Record received stock
// @Description Append positive ledger rows for delivered material. Quantities are stored as positive regardless of the submitted sign.
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body domain.StockBatchRequest true "Rows to append"
// @Success 201 {array} domain.StockTransactionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /stock/receive [post]
func (h *StockHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.appendBatch(w, r, false)
}

// Deduct godoc
// @Summary Record issued stock
// @Description Append negative ledger rows for material issued to site. Quantities are stored as negative regardless of the submitted sign.
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body domain.StockBatchRequest true "Rows to append"
// @Success 201 {array} domain.StockTransactionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /stock/deduct [post]
func (h *StockHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	h.appendBatch(w, r, true)
}

func (h *StockHandler) appendBatch(w http.ResponseWriter, r *http.Request, deduct bool) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.StockBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	var (
		rows []domain.StockTransactionDTO
		err  error
	)
	if deduct {
		rows, err = h.stockService.Deduct(r.Context(), userCtx.UserID, &req)
	} else {
		rows, err = h.stockService.Receive(r.Context(), userCtx.UserID, &req)
	}
	if err != nil {
		h.handleStockError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rows)
}

// Update godoc
// @Summary Edit descriptive fields of a ledger row
// @Description Update item, description or category of an existing row. The signed quantity is immutable.
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID" format(uuid)
// @Param request body domain.UpdateStockRowRequest true "Fields to change"
// @Success 200 {object} domain.StockTransactionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /stock/{id} [patch]
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid transaction ID: must be a valid UUID")
		return
	}

	var req domain.UpdateStockRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	row, err := h.stockService.UpdateRow(r.Context(), id, &req)
	if err != nil {
		h.handleStockError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, row)
}

// Balances godoc
// @Summary Current stock balances
// @Description Derived on-hand quantity per item and unit, computed from the full ledger. Items with zero or negative balance are omitted. With cached=true the nightly snapshot is returned instead of replaying the ledger.
// @Tags Stock
// @Produce json
// @Param cached query bool false "Serve the snapshot table instead of recomputing"
// @Success 200 {array} domain.StockBalance
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /stock/balances [get]
func (h *StockHandler) Balances(w http.ResponseWriter, r *http.Request) {
	var balances []domain.StockBalance
	var err error
	if r.URL.Query().Get("cached") == "true" {
		balances, err = h.stockService.CachedBalances(r.Context())
	} else {
		balances, err = h.stockService.Balances(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to compute stock balances", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute stock balances")
		return
	}

	respondJSON(w, http.StatusOK, balances)
}

// Import godoc
// @Summary Import received stock from a spreadsheet
// @Description Upload an xlsx file of received material. The whole sheet is validated first; one bad row rejects the import.
// @Tags Stock
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx file with columns date, item, description, quantity, unit, category"
// @Success 201 {array} domain.StockTransactionDTO
// @Failure 400 {object} domain.APIError "Malformed sheet or invalid row"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /stock/import [post]
func (h *StockHandler) Import(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	rows, err := h.stockService.ImportReceipts(r.Context(), userCtx.UserID, file)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("stock import failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	respondJSON(w, http.StatusCreated, rows)
}

func (h *StockHandler) handleStockError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Stock transaction not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("stock handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
