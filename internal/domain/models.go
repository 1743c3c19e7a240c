package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are generated application-side so the
// same models work on both PostgreSQL and SQLite deployments.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UserRole represents the role of a user
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a user in the system
type User struct {
	BaseModel
	Email              string     `gorm:"type:varchar(255);not null;unique"`
	DisplayName        string     `gorm:"type:varchar(200);not null;column:display_name"`
	Designation        string     `gorm:"type:varchar(100)"`
	Phone              string     `gorm:"type:varchar(50)"`
	Role               UserRole   `gorm:"type:varchar(20);not null;default:'user';index"`
	PasswordHash       string     `gorm:"type:varchar(200);not null;column:password_hash"`
	MustChangePassword bool       `gorm:"not null;default:false;column:must_change_password"`
	IsActive           bool       `gorm:"not null;default:true;column:is_active"`
	LastLoginAt        *time.Time `gorm:"column:last_login_at"`
}

// IsAdmin reports whether the user holds the admin role.
// Role equality is the only source of admin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	return s == ProjectStatusActive || s == ProjectStatusCompleted
}

// Project represents a construction site that material requests belong to
type Project struct {
	BaseModel
	Name     string        `gorm:"type:varchar(200);not null;index"`
	Location string        `gorm:"type:varchar(500)"`
	Status   ProjectStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// MaterialCategory classifies request items and stock rows
type MaterialCategory struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	Slug string `gorm:"type:varchar(200);not null;unique;index"`
}

// DeriveSlug builds the unique slug for a category name:
// lower-cased, runs of whitespace replaced with a single underscore.
func DeriveSlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "_")
}

// RequestStatus represents the lifecycle state of a material request
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "draft"
	RequestStatusSubmitted RequestStatus = "submitted"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusClosed    RequestStatus = "closed"
)

// IsValid checks if the RequestStatus is a valid enum value
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusSubmitted, RequestStatusApproved,
		RequestStatusRejected, RequestStatusClosed:
		return true
	}
	return false
}

// IsDeletableByRequester reports whether the requester may still delete
// a request in this status.
func (s RequestStatus) IsDeletableByRequester() bool {
	return s == RequestStatusDraft || s == RequestStatusSubmitted
}

// RequestPriority represents the urgency of a material request
type RequestPriority string

const (
	PriorityNormal RequestPriority = "normal"
	PriorityUrgent RequestPriority = "urgent"
)

// IsValid checks if the RequestPriority is a valid enum value
func (p RequestPriority) IsValid() bool {
	return p == PriorityNormal || p == PriorityUrgent
}

// MaterialRequest represents a request for materials on a project
type MaterialRequest struct {
	BaseModel
	RequestNumber string                `gorm:"type:varchar(50);not null;unique;index;column:request_number"`
	ProjectID     uuid.UUID             `gorm:"type:uuid;not null;index;column:project_id"`
	Project       *Project              `gorm:"foreignKey:ProjectID"`
	RequestType   string                `gorm:"type:varchar(100);column:request_type"`
	Priority      RequestPriority       `gorm:"type:varchar(20);not null;default:'normal';index"`
	RequiredDate  *time.Time            `gorm:"type:date;column:required_date"`
	Remarks       string                `gorm:"type:text"`
	RequesterID   uuid.UUID             `gorm:"type:uuid;not null;index;column:requester_id"`
	Requester     *User                 `gorm:"foreignKey:RequesterID"`
	Status        RequestStatus         `gorm:"type:varchar(20);not null;default:'draft';index"`
	Items         []MaterialRequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Approvals     []Approval            `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

// ItemUnit represents the unit of measure for a request item or stock row
type ItemUnit string

const (
	UnitNos  ItemUnit = "nos"
	UnitBags ItemUnit = "bags"
	UnitKg   ItemUnit = "kg"
	UnitTon  ItemUnit = "ton"
	UnitM3   ItemUnit = "m3"
)

// IsValid checks if the ItemUnit is a valid enum value
func (u ItemUnit) IsValid() bool {
	switch u {
	case UnitNos, UnitBags, UnitKg, UnitTon, UnitM3:
		return true
	}
	return false
}

// MaterialRequestItem is a line item on a material request
type MaterialRequestItem struct {
	BaseModel
	RequestID      uuid.UUID        `gorm:"type:uuid;not null;index;column:request_id"`
	Request        *MaterialRequest `gorm:"foreignKey:RequestID"`
	Category       string           `gorm:"type:varchar(200)"`
	Name           string           `gorm:"type:varchar(200);not null"`
	Specification  string           `gorm:"type:text"`
	Quantity       float64          `gorm:"type:decimal(12,3);not null"`
	Unit           ItemUnit         `gorm:"type:varchar(20);not null"`
	PreferredBrand string           `gorm:"type:varchar(200);column:preferred_brand"`
}

// ApprovalAction represents an approver's decision on a request
type ApprovalAction string

const (
	ApprovalActionApproved ApprovalAction = "approved"
	ApprovalActionRejected ApprovalAction = "rejected"
)

// IsValid checks if the ApprovalAction is a valid enum value
func (a ApprovalAction) IsValid() bool {
	return a == ApprovalActionApproved || a == ApprovalActionRejected
}

// Approval is an append-only audit row recording a single approve/reject
// decision. Rows are never updated or deleted.
type Approval struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key"`
	RequestID uuid.UUID        `gorm:"type:uuid;not null;index;column:request_id"`
	Request   *MaterialRequest `gorm:"foreignKey:RequestID"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id"`
	User      *User            `gorm:"foreignKey:UserID"`
	Action    ApprovalAction   `gorm:"type:varchar(20);not null"`
	Comment   string           `gorm:"type:text"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (a *Approval) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StockTransaction is one row of the append-only stock ledger.
// Quantity is signed: positive rows are receipts, negative rows are issues.
// The signed quantity of a row is immutable once written; corrections are
// made by appending compensating rows. Descriptive fields may be edited.
type StockTransaction struct {
	BaseModel
	Date        time.Time        `gorm:"type:date;not null;index"`
	Item        string           `gorm:"type:varchar(200);not null;index"`
	Description string           `gorm:"type:text"`
	Quantity    float64          `gorm:"type:decimal(12,3);not null"`
	Unit        ItemUnit         `gorm:"type:varchar(20);not null"`
	Category    string           `gorm:"type:varchar(200)"`
	CreatedByID uuid.UUID        `gorm:"type:uuid;not null;column:created_by_id"`
	CreatedBy   *User            `gorm:"foreignKey:CreatedByID"`
	RequestID   *uuid.UUID       `gorm:"type:uuid;index;column:request_id"`
	Request     *MaterialRequest `gorm:"foreignKey:RequestID"`
}

// DisplayName returns the name used for balance grouping and display:
// the short item name when present, otherwise the description.
func (t *StockTransaction) DisplayName() string {
	if t.Item != "" {
		return t.Item
	}
	return t.Description
}

// StockBalance is a derived on-hand quantity for one (item, unit) group.
// Balances are computed by replaying the ledger, never stored as truth.
type StockBalance struct {
	Item     string   `json:"item"`
	Unit     ItemUnit `json:"unit"`
	Category string   `json:"category,omitempty"`
	TotalQty float64  `json:"totalQty"`
}

// StockBalanceSnapshot is a cached balance row maintained by the snapshot
// job. It is rebuilt by replaying the ledger and is never authoritative.
type StockBalanceSnapshot struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Item        string    `gorm:"type:varchar(200);not null;index"`
	Unit        ItemUnit  `gorm:"type:varchar(20);not null"`
	Category    string    `gorm:"type:varchar(200)"`
	TotalQty    float64   `gorm:"type:decimal(14,3);not null;column:total_qty"`
	RefreshedAt time.Time `gorm:"not null;column:refreshed_at"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (s *StockBalanceSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NumberSequence backs generation of human-readable request numbers.
// One row per scope/year; incremented under a row lock.
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Scope        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_sequence_scope_year"`
	Year         int       `gorm:"not null;uniqueIndex:idx_sequence_scope_year"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Attachment represents an uploaded document (delivery note, GRN scan)
// bound to a material request.
type Attachment struct {
	BaseModel
	Filename    string           `gorm:"type:varchar(255);not null"`
	ContentType string           `gorm:"type:varchar(100);not null"`
	Size        int64            `gorm:"not null"`
	StoragePath string           `gorm:"type:varchar(500);not null;unique"`
	RequestID   uuid.UUID        `gorm:"type:uuid;not null;index;column:request_id"`
	Request     *MaterialRequest `gorm:"foreignKey:RequestID"`
	UploadedBy  uuid.UUID        `gorm:"type:uuid;column:uploaded_by"`
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
)

// AuditLog records a mutation performed through the API
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key"`
	UserID      *uuid.UUID  `gorm:"type:uuid;column:user_id"`
	UserEmail   string      `gorm:"type:varchar(255);column:user_email"`
	Action      AuditAction `gorm:"type:varchar(20);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID    string      `gorm:"type:varchar(100);column:entity_id"`
	Path        string      `gorm:"type:varchar(500)"`
	Method      string      `gorm:"type:varchar(10)"`
	StatusCode  int         `gorm:"column:status_code"`
	IPAddress   string      `gorm:"type:varchar(100);column:ip_address"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:performed_at"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
