package model

import (
	"context"

	"github.com/google/uuid"
)

// Transactor runs functions inside store transactions. Stores read the
// active transaction from the context passed to fn.
type Transactor interface {
	// WithinTransaction runs fn in a serializable read-write transaction.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinSnapshot runs fn in a read-only repeatable-read transaction.
	WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// Caller is the authenticated actor of a moderation call.
type Caller struct {
	ID      uuid.UUID
	Email   string
	IsAdmin bool
}

// ApproveMaterialCommand approves a single material.
type ApproveMaterialCommand struct {
	MaterialID uuid.UUID `json:"materialId" validate:"required"`
	AdminNotes *string   `json:"adminNotes" validate:"omitempty,max=1000"`
}

// RejectMaterialCommand rejects a single material.
type RejectMaterialCommand struct {
	MaterialID uuid.UUID `json:"materialId" validate:"required"`
	Reason     string    `json:"reason" validate:"required,min=10,max=500"`
}

// BulkAction is the transition applied by a bulk update.
type BulkAction string

const (
	BulkActionApprove BulkAction = "approve"
	BulkActionReject  BulkAction = "reject"
)

// MaxBulkMaterials bounds the size of a bulk update.
const MaxBulkMaterials = 50

// BulkUpdateCommand applies one transition to a batch of materials.
type BulkUpdateCommand struct {
	MaterialIDs []uuid.UUID `json:"materialIds" validate:"min=1,max=50,unique,dive,required"`
	Action      BulkAction  `json:"action" validate:"required,oneof=approve reject"`
	Reason      string      `json:"reason" validate:"required_if=Action reject,omitempty,min=10,max=500"`
	AdminNotes  *string     `json:"adminNotes" validate:"omitempty,max=1000"`
}

// BulkUpdateResult reports the outcome of a bulk update.
type BulkUpdateResult struct {
	Action           BulkAction `json:"action"`
	TotalRequested   int        `json:"totalRequested"`
	ActuallyModified int64      `json:"actuallyModified"`
}

// ListMaterialsCommand describes an admin review listing request.
type ListMaterialsCommand struct {
	Status    string `json:"status" validate:"omitempty,oneof=all pending verified rejected legacy notVerified"`
	Search    string `json:"search" validate:"max=200"`
	// Page and Limit are nil when absent; an explicit value is validated.
	Page      *int   `json:"page" validate:"omitempty,min=1"`
	Limit     *int   `json:"limit" validate:"omitempty,min=1,max=100"`
	SortBy    string `json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt subject semester year status"`
	SortOrder string `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// ListUsersCommand describes an admin user listing request.
type ListUsersCommand struct {
	Search string `json:"search" validate:"max=200"`
	Role   string `json:"role" validate:"omitempty,oneof=all admin user"`
	Page   *int   `json:"page" validate:"omitempty,min=1"`
	Limit  *int   `json:"limit" validate:"omitempty,min=1,max=100"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
	RecentLimit  = 10
)

// Pagination describes the position of a page within a result set.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPagination computes pagination metadata for a page of size limit.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// MaterialPage is a page of the admin review listing.
type MaterialPage struct {
	Materials  []Material
	Pagination Pagination
	Statistics MaterialStatistics
}

// UserPage is a page of the admin user listing.
type UserPage struct {
	Users      []User
	Pagination Pagination
}

// DashboardSnapshot is the admin dashboard payload.
type DashboardSnapshot struct {
	Users           UserCounts
	Materials       MaterialStatistics
	RecentMaterials []Material
}
