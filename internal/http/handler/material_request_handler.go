package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"go.uber.org/zap"
)

type MaterialRequestHandler struct {
	requestService *service.MaterialRequestService
	logger         *zap.Logger
}

func NewMaterialRequestHandler(requestService *service.MaterialRequestService, logger *zap.Logger) *MaterialRequestHandler {
	return &MaterialRequestHandler{
		requestService: requestService,
		logger:         logger,
	}
}

// List godoc
// @Summary List material requests
// @Description Get paginated list of material requests. Regular users only see their own requests; admins see all.
// @Tags MaterialRequests
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(draft, submitted, approved, rejected, closed)
// @Param priority query string false "Filter by priority" Enums(normal, urgent)
// @Param projectId query string false "Filter by project ID" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.MaterialRequestDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests [get]
func (h *MaterialRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, pageSize := parsePagination(r)

	filter := &repository.RequestFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.RequestStatus(s)
		filter.Status = &st
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		pr := domain.RequestPriority(p)
		filter.Priority = &pr
	}
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		if id, err := uuid.Parse(pid); err == nil {
			filter.ProjectID = &id
		}
	}

	requests, total, err := h.requestService.List(r.Context(), userCtx, filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list material requests", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list material requests")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(requests, total, page, pageSize))
}

// Create godoc
// @Summary Create material request
// @Description Create a material request. With asDraft the request is saved as a draft and may be empty; otherwise it is submitted immediately and needs at least one item.
// @Tags MaterialRequests
// @Accept json
// @Produce json
// @Param request body domain.CreateMaterialRequestRequest true "Request data"
// @Success 201 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError "Submitted request without items"
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests [post]
func (h *MaterialRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.CreateMaterialRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	created, err := h.requestService.Create(r.Context(), userCtx.UserID, &req)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/requests/"+created.ID.String())
	respondJSON(w, http.StatusCreated, created)
}

// GetByID godoc
// @Summary Get material request by ID
// @Description Get a material request with line items and the full approval trail
// @Tags MaterialRequests
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Success 200 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id} [get]
func (h *MaterialRequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	request, err := h.requestService.GetByID(r.Context(), id)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Update godoc
// @Summary Update material request
// @Description Update header fields and line items. Only the requester or an admin may update, and only while the request is draft or submitted.
// @Tags MaterialRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param request body domain.UpdateMaterialRequestRequest true "Request data"
// @Success 200 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request is no longer editable"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id} [put]
func (h *MaterialRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	var req domain.UpdateMaterialRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	updated, err := h.requestService.Update(r.Context(), userCtx, id, &req)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete material request
// @Description Delete a request with its items and approval trail. Requesters may delete their own drafts and submitted requests; admins may delete any request.
// @Tags MaterialRequests
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request can no longer be deleted by its requester"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id} [delete]
func (h *MaterialRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	if err := h.requestService.Delete(r.Context(), userCtx, id); err != nil {
		h.handleRequestError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit godoc
// @Summary Submit a draft request
// @Description Move a draft request into the approval queue. The draft must have at least one item.
// @Tags MaterialRequests
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Success 200 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError "Draft has no items"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request is not a draft"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id}/submit [post]
func (h *MaterialRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	request, err := h.requestService.Submit(r.Context(), userCtx, id)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Approve godoc
// @Summary Approve a submitted request
// @Description Approve a request that is awaiting approval. Admin only. An optional comment is recorded in the approval trail.
// @Tags MaterialRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param request body domain.CreateApprovalRequest false "Approval data"
// @Success 200 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request is not awaiting approval"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id}/approve [post]
func (h *MaterialRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

// Reject godoc
// @Summary Reject a submitted request
// @Description Reject a request that is awaiting approval. Admin only. A comment explaining the rejection is required.
// @Tags MaterialRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param request body domain.CreateApprovalRequest true "Rejection data with comment"
// @Success 200 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError "Missing rejection comment"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request is not awaiting approval"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id}/reject [post]
func (h *MaterialRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// decisionBody is the accepted payload for approve and reject calls.
// Only the comment is read; the route already names the request and action.
type decisionBody struct {
	Comment string `json:"comment"`
}

func (h *MaterialRequestHandler) decide(w http.ResponseWriter, r *http.Request, reject bool) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	var body decisionBody
	if r.Body != nil {
		// An empty body is fine for approvals
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	var request *domain.MaterialRequestDetailDTO
	if reject {
		request, err = h.requestService.Reject(r.Context(), userCtx.UserID, id, body.Comment)
	} else {
		request, err = h.requestService.Approve(r.Context(), userCtx.UserID, id, body.Comment)
	}
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Close godoc
// @Summary Close an approved request
// @Description Mark an approved request as fulfilled. Admin only.
// @Tags MaterialRequests
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Success 200 {object} domain.MaterialRequestDetailDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request is not approved"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id}/close [post]
func (h *MaterialRequestHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	request, err := h.requestService.Close(r.Context(), id)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// ListPending godoc
// @Summary List requests awaiting approval
// @Description Get the approval queue: all submitted requests, oldest context preserved. Admin only.
// @Tags MaterialRequests
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.MaterialRequestDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/pending [get]
func (h *MaterialRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	requests, total, err := h.requestService.ListPending(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list pending requests", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list pending requests")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(requests, total, page, pageSize))
}

// PendingCount godoc
// @Summary Number of requests awaiting approval
// @Description Badge count for the approval queue. Admin only.
// @Tags MaterialRequests
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/pending/count [get]
func (h *MaterialRequestHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.requestService.PendingCount(r.Context())
	if err != nil {
		h.logger.Error("failed to count pending requests", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to count pending requests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *MaterialRequestHandler) handleRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		respondWithError(w, http.StatusNotFound, "Material request not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusBadRequest, "Project not found")
	case errors.Is(err, service.ErrEmptyItems):
		respondWithError(w, http.StatusBadRequest, "A submitted request needs at least one item")
	case errors.Is(err, service.ErrCommentRequired):
		respondWithError(w, http.StatusBadRequest, "A rejection requires a comment")
	case errors.Is(err, service.ErrIllegalTransition):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRequestNotDeletable):
		respondWithError(w, http.StatusConflict, "Request can no longer be deleted")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have permission to modify this request")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("material request handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
