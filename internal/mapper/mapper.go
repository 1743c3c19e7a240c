package mapper

import (
	"time"

	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
)

const timestampFormat = "2006-01-02T15:04:05Z"
const dateFormat = "2006-01-02"

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	dto := domain.UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		Designation:        user.Designation,
		Phone:              user.Phone,
		Role:               user.Role,
		IsAdmin:            user.IsAdmin(),
		MustChangePassword: user.MustChangePassword,
		IsActive:           user.IsActive,
		CreatedAt:          user.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt:          user.UpdatedAt.UTC().Format(timestampFormat),
	}
	if user.LastLoginAt != nil {
		formatted := user.LastLoginAt.UTC().Format(timestampFormat)
		dto.LastLoginAt = &formatted
	}
	return dto
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:        project.ID,
		Name:      project.Name,
		Location:  project.Location,
		Status:    project.Status,
		CreatedAt: project.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt: project.UpdatedAt.UTC().Format(timestampFormat),
	}
}

// ToCategoryDTO converts MaterialCategory to CategoryDTO
func ToCategoryDTO(category *domain.MaterialCategory) domain.CategoryDTO {
	return domain.CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Slug:      category.Slug,
		CreatedAt: category.CreatedAt.UTC().Format(timestampFormat),
	}
}

// ToMaterialRequestDTO converts a denormalized summary row into the list
// shape. Dangling project or requester references resolve to placeholder
// names instead of failing the read.
func ToMaterialRequestDTO(row *repository.RequestSummary) domain.MaterialRequestDTO {
	projectName := row.ProjectName
	if projectName == "" {
		projectName = domain.UnknownProjectName
	}
	requesterName := row.RequesterName
	if requesterName == "" {
		requesterName = domain.UnknownUserName
	}

	dto := domain.MaterialRequestDTO{
		ID:                   row.ID,
		RequestNumber:        row.RequestNumber,
		ProjectID:            row.ProjectID,
		ProjectName:          projectName,
		RequestType:          row.RequestType,
		Priority:             row.Priority,
		Remarks:              row.Remarks,
		RequesterID:          row.RequesterID,
		RequesterName:        requesterName,
		RequesterDesignation: row.RequesterDesignation,
		Status:               row.Status,
		ItemCount:            row.ItemCount,
		CreatedAt:            row.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt:            row.UpdatedAt.UTC().Format(timestampFormat),
	}
	if row.RequiredDate != nil {
		formatted := row.RequiredDate.Format(dateFormat)
		dto.RequiredDate = &formatted
	}
	return dto
}

// ToMaterialRequestDetailDTO converts a fully-loaded request, including
// line items and the approval trail.
func ToMaterialRequestDetailDTO(request *domain.MaterialRequest) domain.MaterialRequestDetailDTO {
	summary := repository.RequestSummary{
		MaterialRequest: *request,
		ItemCount:       len(request.Items),
	}
	if request.Project != nil {
		summary.ProjectName = request.Project.Name
	}
	if request.Requester != nil {
		summary.RequesterName = request.Requester.DisplayName
		summary.RequesterDesignation = request.Requester.Designation
	}

	detail := domain.MaterialRequestDetailDTO{
		MaterialRequestDTO: ToMaterialRequestDTO(&summary),
		Items:              make([]domain.MaterialRequestItemDTO, 0, len(request.Items)),
		Approvals:          make([]domain.ApprovalDTO, 0, len(request.Approvals)),
	}
	for i := range request.Items {
		detail.Items = append(detail.Items, ToMaterialRequestItemDTO(&request.Items[i]))
	}
	for i := range request.Approvals {
		detail.Approvals = append(detail.Approvals, ToApprovalDTO(&request.Approvals[i]))
	}
	return detail
}

// ToMaterialRequestItemDTO converts MaterialRequestItem to its DTO
func ToMaterialRequestItemDTO(item *domain.MaterialRequestItem) domain.MaterialRequestItemDTO {
	return domain.MaterialRequestItemDTO{
		ID:             item.ID,
		Category:       item.Category,
		Name:           item.Name,
		Specification:  item.Specification,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
		PreferredBrand: item.PreferredBrand,
	}
}

// ToApprovalDTO converts Approval to ApprovalDTO
func ToApprovalDTO(approval *domain.Approval) domain.ApprovalDTO {
	approverName := domain.UnknownUserName
	if approval.User != nil {
		approverName = approval.User.DisplayName
	}
	return domain.ApprovalDTO{
		ID:           approval.ID,
		RequestID:    approval.RequestID,
		UserID:       approval.UserID,
		ApproverName: approverName,
		Action:       approval.Action,
		Comment:      approval.Comment,
		CreatedAt:    approval.CreatedAt.UTC().Format(timestampFormat),
	}
}

// ToStockTransactionDTO converts a ledger row to its DTO
func ToStockTransactionDTO(row *domain.StockTransaction) domain.StockTransactionDTO {
	dto := domain.StockTransactionDTO{
		ID:          row.ID,
		Date:        row.Date.Format(dateFormat),
		Item:        row.Item,
		Description: row.Description,
		Quantity:    row.Quantity,
		Unit:        row.Unit,
		Category:    row.Category,
		CreatedByID: row.CreatedByID,
		RequestID:   row.RequestID,
		CreatedAt:   row.CreatedAt.UTC().Format(timestampFormat),
	}
	if row.CreatedBy != nil {
		dto.CreatedBy = row.CreatedBy.DisplayName
	}
	return dto
}

// ToAttachmentDTO converts Attachment to AttachmentDTO
func ToAttachmentDTO(attachment *domain.Attachment) domain.AttachmentDTO {
	return domain.AttachmentDTO{
		ID:          attachment.ID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		RequestID:   attachment.RequestID,
		UploadedBy:  attachment.UploadedBy,
		CreatedAt:   attachment.CreatedAt.UTC().Format(timestampFormat),
	}
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(log *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          log.ID,
		UserID:      log.UserID,
		UserEmail:   log.UserEmail,
		Action:      log.Action,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Path:        log.Path,
		Method:      log.Method,
		StatusCode:  log.StatusCode,
		PerformedAt: log.PerformedAt.UTC().Format(timestampFormat),
	}
}

// ParseDate parses a YYYY-MM-DD string, returning nil for empty input.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateFormat, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
