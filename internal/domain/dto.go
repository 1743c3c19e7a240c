package domain

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type UserDTO struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"displayName"`
	Designation        string    `json:"designation,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Role               UserRole  `json:"role"`
	IsAdmin            bool      `json:"isAdmin"`
	MustChangePassword bool      `json:"mustChangePassword"`
	IsActive           bool      `json:"isActive"`
	LastLoginAt        *string   `json:"lastLoginAt,omitempty"`
	CreatedAt          string    `json:"createdAt"` // ISO 8601
	UpdatedAt          string    `json:"updatedAt"` // ISO 8601
}

type CreateUserRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Designation string   `json:"designation" validate:"max=100"`
	Phone       string   `json:"phone" validate:"max=50"`
	Role        UserRole `json:"role" validate:"required,oneof=admin user"`
	Password    string   `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	DisplayName *string   `json:"displayName,omitempty" validate:"omitempty,max=200"`
	Designation *string   `json:"designation,omitempty" validate:"omitempty,max=100"`
	Phone       *string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	Role        *UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

type ProjectDTO struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Location  string        `json:"location,omitempty"`
	Status    ProjectStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

type CreateProjectRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"max=500"`
}

type UpdateProjectRequest struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Location *string        `json:"location,omitempty" validate:"omitempty,max=500"`
	Status   *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed"`
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt string    `json:"createdAt"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// ---------------------------------------------------------------------------
// Material requests
// ---------------------------------------------------------------------------

type RequestItemInput struct {
	Category       string   `json:"category" validate:"max=200"`
	Name           string   `json:"name" validate:"required,max=200"`
	Specification  string   `json:"specification"`
	Quantity       float64  `json:"quantity" validate:"required,gt=0"`
	Unit           ItemUnit `json:"unit" validate:"required,oneof=nos bags kg ton m3"`
	PreferredBrand string   `json:"preferredBrand" validate:"max=200"`
}

type CreateMaterialRequestRequest struct {
	ProjectID    uuid.UUID          `json:"projectId" validate:"required"`
	RequestType  string             `json:"requestType" validate:"max=100"`
	Priority     RequestPriority    `json:"priority" validate:"omitempty,oneof=normal urgent"`
	RequiredDate string             `json:"requiredDate"` // YYYY-MM-DD, optional
	Remarks      string             `json:"remarks"`
	Items        []RequestItemInput `json:"items" validate:"dive"`
	AsDraft      bool               `json:"asDraft"`
}

type UpdateMaterialRequestRequest struct {
	RequestType  *string            `json:"requestType,omitempty" validate:"omitempty,max=100"`
	Priority     *RequestPriority   `json:"priority,omitempty" validate:"omitempty,oneof=normal urgent"`
	RequiredDate *string            `json:"requiredDate,omitempty"`
	Remarks      *string            `json:"remarks,omitempty"`
	Items        []RequestItemInput `json:"items,omitempty" validate:"omitempty,dive"`
}

type MaterialRequestItemDTO struct {
	ID             uuid.UUID `json:"id"`
	Category       string    `json:"category,omitempty"`
	Name           string    `json:"name"`
	Specification  string    `json:"specification,omitempty"`
	Quantity       float64   `json:"quantity"`
	Unit           ItemUnit  `json:"unit"`
	PreferredBrand string    `json:"preferredBrand,omitempty"`
}

type ApprovalDTO struct {
	ID           uuid.UUID      `json:"id"`
	RequestID    uuid.UUID      `json:"requestId"`
	UserID       uuid.UUID      `json:"userId"`
	ApproverName string         `json:"approverName,omitempty"`
	Action       ApprovalAction `json:"action"`
	Comment      string         `json:"comment,omitempty"`
	CreatedAt    string         `json:"createdAt"`
}

// MaterialRequestDTO is the denormalized list/detail shape: project and
// requester display fields are attached so readers never join client-side.
type MaterialRequestDTO struct {
	ID                   uuid.UUID       `json:"id"`
	RequestNumber        string          `json:"requestNumber"`
	ProjectID            uuid.UUID       `json:"projectId"`
	ProjectName          string          `json:"projectName"`
	RequestType          string          `json:"requestType,omitempty"`
	Priority             RequestPriority `json:"priority"`
	RequiredDate         *string         `json:"requiredDate,omitempty"`
	Remarks              string          `json:"remarks,omitempty"`
	RequesterID          uuid.UUID       `json:"requesterId"`
	RequesterName        string          `json:"requesterName"`
	RequesterDesignation string          `json:"requesterDesignation,omitempty"`
	Status               RequestStatus   `json:"status"`
	ItemCount            int             `json:"itemCount"`
	CreatedAt            string          `json:"createdAt"`
	UpdatedAt            string          `json:"updatedAt"`
}

// MaterialRequestDetailDTO includes line items and the approval trail.
type MaterialRequestDetailDTO struct {
	MaterialRequestDTO
	Items     []MaterialRequestItemDTO `json:"items"`
	Approvals []ApprovalDTO            `json:"approvals"`
}

type CreateApprovalRequest struct {
	RequestID uuid.UUID      `json:"requestId" validate:"required"`
	Action    ApprovalAction `json:"action" validate:"required,oneof=approved rejected"`
	Comment   string         `json:"comment"`
}

// ---------------------------------------------------------------------------
// Stock
// ---------------------------------------------------------------------------

// Quantity accepts a JSON number or a numeric string. Anything that cannot
// be parsed becomes 0 rather than failing the whole batch.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*q = 0
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(v)
	return nil
}

type StockRowInput struct {
	Date        string     `json:"date"` // YYYY-MM-DD, defaults to today
	Item        string     `json:"item" validate:"max=200"`
	Description string     `json:"description"`
	Quantity    Quantity   `json:"quantity"`
	Unit        ItemUnit   `json:"unit" validate:"required,oneof=nos bags kg ton m3"`
	Category    string     `json:"category" validate:"max=200"`
	RequestID   *uuid.UUID `json:"requestId,omitempty"`
}

type StockBatchRequest struct {
	Items []StockRowInput `json:"items" validate:"required,min=1,dive"`
}

type StockTransactionDTO struct {
	ID          uuid.UUID  `json:"id"`
	Date        string     `json:"date"`
	Item        string     `json:"item,omitempty"`
	Description string     `json:"description,omitempty"`
	Quantity    float64    `json:"quantity"`
	Unit        ItemUnit   `json:"unit"`
	Category    string     `json:"category,omitempty"`
	CreatedByID uuid.UUID  `json:"createdById"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	RequestID   *uuid.UUID `json:"requestId,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

// UpdateStockRowRequest edits descriptive fields of a ledger row only.
// The signed quantity of a row is never mutable.
type UpdateStockRowRequest struct {
	Item        *string `json:"item,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=200"`
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

type DashboardMetricDTO struct {
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Trend  string `json:"trend"`
	Change string `json:"change,omitempty"`
}

// ---------------------------------------------------------------------------
// Attachments
// ---------------------------------------------------------------------------

type AttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	RequestID   uuid.UUID `json:"requestId"`
	UploadedBy  uuid.UUID `json:"uploadedBy"`
	CreatedAt   string    `json:"createdAt"`
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      *uuid.UUID  `json:"userId,omitempty"`
	UserEmail   string      `json:"userEmail,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    string      `json:"entityId,omitempty"`
	Path        string      `json:"path"`
	Method      string      `json:"method"`
	StatusCode  int         `json:"statusCode"`
	PerformedAt string      `json:"performedAt"`
}

// ---------------------------------------------------------------------------
// Shared
// ---------------------------------------------------------------------------

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErpMaterialDTO is a read-only material-master record served from the
// optional ERP catalog connection.
type ErpMaterialDTO struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
}
