package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/mapper"
	"github.com/sitesupply/procurement-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaterialRequestService drives the request lifecycle:
// draft → submitted → {approved | rejected}, approved → closed.
// Rejected is terminal; resubmission means creating a new request.
type MaterialRequestService struct {
	requestRepo  *repository.MaterialRequestRepository
	approvalRepo *repository.ApprovalRepository
	projectRepo  *repository.ProjectRepository
	numberSeq    *NumberSequenceService
	logger       *zap.Logger
}

// NewMaterialRequestService creates a new MaterialRequestService
func NewMaterialRequestService(
	requestRepo *repository.MaterialRequestRepository,
	approvalRepo *repository.ApprovalRepository,
	projectRepo *repository.ProjectRepository,
	numberSeq *NumberSequenceService,
	logger *zap.Logger,
) *MaterialRequestService {
	return &MaterialRequestService{
		requestRepo:  requestRepo,
		approvalRepo: approvalRepo,
		projectRepo:  projectRepo,
		numberSeq:    numberSeq,
		logger:       logger,
	}
}

// Create validates and persists a new request with its items in one
// transaction. A non-draft create requires at least one item; a draft may
// be saved empty. Validation failures happen before any write.
func (s *MaterialRequestService) Create(ctx context.Context, requesterID uuid.UUID, req *domain.CreateMaterialRequestRequest) (*domain.MaterialRequestDetailDTO, error) {
	if !req.AsDraft && len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}

	items, err := buildRequestItems(req.Items)
	if err != nil {
		return nil, err
	}

	requiredDate, err := mapper.ParseDate(req.RequiredDate)
	if err != nil {
		return nil, fmt.Errorf("%w: requiredDate must be YYYY-MM-DD", ErrInvalidInput)
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, priority)
	}

	number, err := s.numberSeq.GenerateRequestNumber(ctx)
	if err != nil {
		return nil, err
	}

	status := domain.RequestStatusSubmitted
	if req.AsDraft {
		status = domain.RequestStatusDraft
	}

	request := &domain.MaterialRequest{
		RequestNumber: number,
		ProjectID:     req.ProjectID,
		RequestType:   req.RequestType,
		Priority:      priority,
		RequiredDate:  requiredDate,
		Remarks:       req.Remarks,
		RequesterID:   requesterID,
		Status:        status,
		Items:         items,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info("material request created",
		zap.String("requestID", request.ID.String()),
		zap.String("requestNumber", number),
		zap.String("status", string(status)),
		zap.Int("items", len(items)),
	)

	return s.GetByID(ctx, request.ID)
}

func buildRequestItems(inputs []domain.RequestItemInput) ([]domain.MaterialRequestItem, error) {
	items := make([]domain.MaterialRequestItem, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input.Name) == "" {
			return nil, fmt.Errorf("%w: item name is required", ErrInvalidInput)
		}
		if input.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidInput)
		}
		if !input.Unit.IsValid() {
			return nil, fmt.Errorf("%w: unit %q", ErrInvalidInput, input.Unit)
		}
		items = append(items, domain.MaterialRequestItem{
			Category:       input.Category,
			Name:           input.Name,
			Specification:  input.Specification,
			Quantity:       input.Quantity,
			Unit:           input.Unit,
			PreferredBrand: input.PreferredBrand,
		})
	}
	return items, nil
}

// GetByID returns the denormalized detail with items and approval trail.
func (s *MaterialRequestService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialRequestDetailDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	detail := mapper.ToMaterialRequestDetailDTO(request)
	return &detail, nil
}

// List returns denormalized summaries. Non-admin callers only see their
// own requests regardless of the requested filter.
func (s *MaterialRequestService) List(ctx context.Context, caller *auth.UserContext, filter *repository.RequestFilter, page, pageSize int) ([]domain.MaterialRequestDTO, int64, error) {
	if filter == nil {
		filter = &repository.RequestFilter{}
	}
	if !caller.IsAdmin() {
		callerID := caller.UserID
		filter.RequesterID = &callerID
	}

	rows, total, err := s.requestRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	dtos := make([]domain.MaterialRequestDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, mapper.ToMaterialRequestDTO(&rows[i]))
	}
	return dtos, total, nil
}

// Update edits header fields and optionally replaces the item set. Only
// the requester or an admin may edit, and only while the request is draft
// or submitted.
func (s *MaterialRequestService) Update(ctx context.Context, caller *auth.UserContext, id uuid.UUID, req *domain.UpdateMaterialRequestRequest) (*domain.MaterialRequestDetailDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	if !caller.CanModifyRequest(request.RequesterID) {
		return nil, ErrPermissionDenied
	}
	if request.Status != domain.RequestStatusDraft && request.Status != domain.RequestStatusSubmitted {
		return nil, fmt.Errorf("%w: %s requests are not editable", ErrIllegalTransition, request.Status)
	}

	updates := map[string]interface{}{}
	if req.RequestType != nil {
		updates["request_type"] = *req.RequestType
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, *req.Priority)
		}
		updates["priority"] = *req.Priority
	}
	if req.RequiredDate != nil {
		parsed, err := mapper.ParseDate(*req.RequiredDate)
		if err != nil {
			return nil, fmt.Errorf("%w: requiredDate must be YYYY-MM-DD", ErrInvalidInput)
		}
		updates["required_date"] = parsed
	}
	if req.Remarks != nil {
		updates["remarks"] = *req.Remarks
	}

	if len(updates) > 0 {
		if err := s.requestRepo.UpdateHeader(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update request: %w", err)
		}
	}

	if req.Items != nil {
		// A submitted request must keep at least one item.
		if request.Status == domain.RequestStatusSubmitted && len(req.Items) == 0 {
			return nil, ErrEmptyItems
		}
		items, err := buildRequestItems(req.Items)
		if err != nil {
			return nil, err
		}
		if err := s.requestRepo.ReplaceItems(ctx, id, items); err != nil {
			return nil, fmt.Errorf("failed to replace items: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// Submit moves a draft to submitted. The draft must contain at least one
// item by then.
func (s *MaterialRequestService) Submit(ctx context.Context, caller *auth.UserContext, id uuid.UUID) (*domain.MaterialRequestDetailDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	if !caller.CanModifyRequest(request.RequesterID) {
		return nil, ErrPermissionDenied
	}
	if request.Status != domain.RequestStatusDraft {
		return nil, fmt.Errorf("%w: submit requires a draft, got %s", ErrIllegalTransition, request.Status)
	}
	if len(request.Items) == 0 {
		return nil, ErrEmptyItems
	}

	if err := s.requestRepo.UpdateStatusIf(ctx, id, domain.RequestStatusDraft, domain.RequestStatusSubmitted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request is no longer a draft", ErrIllegalTransition)
		}
		return nil, err
	}

	s.logger.Info("request submitted", zap.String("requestID", id.String()))
	return s.GetByID(ctx, id)
}

// Approve records an approval and transitions submitted → approved. The
// status write is guarded on the current status, so a concurrent second
// approval loses the race and no approval row is written for it.
func (s *MaterialRequestService) Approve(ctx context.Context, approverID uuid.UUID, requestID uuid.UUID, comment string) (*domain.MaterialRequestDetailDTO, error) {
	return s.decide(ctx, approverID, requestID, domain.ApprovalActionApproved, comment)
}

// Reject records a rejection and transitions submitted → rejected. A
// comment is mandatory.
func (s *MaterialRequestService) Reject(ctx context.Context, approverID uuid.UUID, requestID uuid.UUID, comment string) (*domain.MaterialRequestDetailDTO, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, ErrCommentRequired
	}
	return s.decide(ctx, approverID, requestID, domain.ApprovalActionRejected, comment)
}

func (s *MaterialRequestService) decide(ctx context.Context, approverID uuid.UUID, requestID uuid.UUID, action domain.ApprovalAction, comment string) (*domain.MaterialRequestDetailDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	if request.Status != domain.RequestStatusSubmitted {
		return nil, fmt.Errorf("%w: %s only applies to submitted requests, got %s", ErrIllegalTransition, action, request.Status)
	}

	target := domain.RequestStatusApproved
	if action == domain.ApprovalActionRejected {
		target = domain.RequestStatusRejected
	}

	// Guarded transition first: if it fails, no approval row is written.
	if err := s.requestRepo.UpdateStatusIf(ctx, requestID, domain.RequestStatusSubmitted, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request is no longer submitted", ErrIllegalTransition)
		}
		return nil, err
	}

	approval := &domain.Approval{
		RequestID: requestID,
		UserID:    approverID,
		Action:    action,
		Comment:   comment,
	}
	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		return nil, fmt.Errorf("failed to record approval: %w", err)
	}

	s.logger.Info("request decided",
		zap.String("requestID", requestID.String()),
		zap.String("approverID", approverID.String()),
		zap.String("action", string(action)),
	)
	return s.GetByID(ctx, requestID)
}

// Close administratively finishes an approved request.
func (s *MaterialRequestService) Close(ctx context.Context, id uuid.UUID) (*domain.MaterialRequestDetailDTO, error) {
	if err := s.requestRepo.UpdateStatusIf(ctx, id, domain.RequestStatusApproved, domain.RequestStatusClosed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Distinguish a missing request from a wrong-status one.
			if _, getErr := s.requestRepo.GetByID(ctx, id); getErr != nil {
				if errors.Is(getErr, gorm.ErrRecordNotFound) {
					return nil, ErrRequestNotFound
				}
				return nil, fmt.Errorf("failed to load request: %w", getErr)
			}
			return nil, fmt.Errorf("%w: close requires an approved request", ErrIllegalTransition)
		}
		return nil, err
	}

	s.logger.Info("request closed", zap.String("requestID", id.String()))
	return s.GetByID(ctx, id)
}

// Delete removes a request with its items and approvals. Requesters may
// delete their own draft or submitted requests; admins may delete any.
func (s *MaterialRequestService) Delete(ctx context.Context, caller *auth.UserContext, id uuid.UUID) error {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to load request: %w", err)
	}

	if !caller.CanModifyRequest(request.RequesterID) {
		return ErrPermissionDenied
	}
	if !caller.IsAdmin() && !request.Status.IsDeletableByRequester() {
		return ErrRequestNotDeletable
	}

	if err := s.requestRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	s.logger.Info("request deleted",
		zap.String("requestID", id.String()),
		zap.String("deletedBy", caller.UserID.String()),
	)
	return nil
}

// ListPending returns submitted requests awaiting a decision.
func (s *MaterialRequestService) ListPending(ctx context.Context, page, pageSize int) ([]domain.MaterialRequestDTO, int64, error) {
	pending := domain.RequestStatusSubmitted
	rows, total, err := s.requestRepo.List(ctx, &repository.RequestFilter{Status: &pending}, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending requests: %w", err)
	}

	dtos := make([]domain.MaterialRequestDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, mapper.ToMaterialRequestDTO(&rows[i]))
	}
	return dtos, total, nil
}

// PendingCount returns the number of submitted requests.
func (s *MaterialRequestService) PendingCount(ctx context.Context) (int, error) {
	counts, err := s.requestRepo.CountByStatus(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return counts[domain.RequestStatusSubmitted], nil
}
