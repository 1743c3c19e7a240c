package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/service"
	"go.uber.org/zap"
)

// maxAttachmentSize caps uploaded attachment size at 25 MiB
const maxAttachmentSize = 25 << 20

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	logger            *zap.Logger
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

// Upload godoc
// @Summary Upload attachment to a material request
// @Description Attach a file (drawing, quotation, photo) to a material request
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param file formData file true "File to attach"
// @Success 201 {object} domain.AttachmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Request not found"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id}/attachments [post]
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachmentService.Upload(r.Context(), requestID, userCtx.UserID, header.Filename, contentType, file)
	if err != nil {
		h.handleAttachmentError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, attachment)
}

// List godoc
// @Summary List attachments of a material request
// @Tags Attachments
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Success 200 {array} domain.AttachmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /requests/{id}/attachments [get]
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID: must be a valid UUID")
		return
	}

	attachments, err := h.attachmentService.ListByRequest(r.Context(), requestID)
	if err != nil {
		h.logger.Error("failed to list attachments",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list attachments")
		return
	}

	respondJSON(w, http.StatusOK, attachments)
}

// Download godoc
// @Summary Download an attachment
// @Tags Attachments
// @Produce application/octet-stream
// @Param id path string true "Attachment ID" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /attachments/{id} [get]
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attachment ID: must be a valid UUID")
		return
	}

	attachment, reader, err := h.attachmentService.Download(r.Context(), id)
	if err != nil {
		h.handleAttachmentError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	if attachment.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", attachment.Size))
	}

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("attachment stream interrupted",
			zap.String("attachment_id", id.String()),
			zap.Error(err))
	}
}

// Delete godoc
// @Summary Delete an attachment
// @Tags Attachments
// @Produce json
// @Param id path string true "Attachment ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attachment ID: must be a valid UUID")
		return
	}

	if err := h.attachmentService.Delete(r.Context(), id); err != nil {
		h.handleAttachmentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AttachmentHandler) handleAttachmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Attachment not found")
	case errors.Is(err, service.ErrRequestNotFound):
		respondWithError(w, http.StatusNotFound, "Material request not found")
	default:
		h.logger.Error("attachment handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
