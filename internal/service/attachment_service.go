package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/mapper"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttachmentService stores delivery-note and GRN documents against a
// material request.
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	requestRepo    *repository.MaterialRequestRepository
	storage        storage.Storage
	logger         *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo *repository.AttachmentRepository,
	requestRepo *repository.MaterialRequestRepository,
	storage storage.Storage,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		requestRepo:    requestRepo,
		storage:        storage,
		logger:         logger,
	}
}

// Upload stores the file bytes and records the attachment row. The stored
// file is removed again if the row insert fails.
func (s *AttachmentService) Upload(ctx context.Context, requestID, uploaderID uuid.UUID, filename, contentType string, data io.Reader) (*domain.AttachmentDTO, error) {
	if _, err := s.requestRepo.GetByID(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to verify request: %w", err)
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	attachment := &domain.Attachment{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		RequestID:   requestID,
		UploadedBy:  uploaderID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned file",
				zap.String("storagePath", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	s.logger.Info("attachment uploaded",
		zap.String("attachmentID", attachment.ID.String()),
		zap.String("requestID", requestID.String()),
		zap.Int64("size", size),
	)

	dto := mapper.ToAttachmentDTO(attachment)
	return &dto, nil
}

// ListByRequest returns the attachments of one request, newest first.
func (s *AttachmentService) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.AttachmentDTO, error) {
	attachments, err := s.attachmentRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	dtos := make([]domain.AttachmentDTO, 0, len(attachments))
	for i := range attachments {
		dtos = append(dtos, mapper.ToAttachmentDTO(&attachments[i]))
	}
	return dtos, nil
}

// Download returns the stored bytes plus metadata for the response
// headers.
func (s *AttachmentService) Download(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load attachment: %w", err)
	}

	reader, err := s.storage.Download(ctx, attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return attachment, reader, nil
}

// Delete removes the attachment row and its stored file.
func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load attachment: %w", err)
	}

	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if err := s.storage.Delete(ctx, attachment.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored file",
			zap.String("storagePath", attachment.StoragePath),
			zap.Error(err),
		)
	}
	return nil
}
