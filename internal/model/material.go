package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaterialStore defines persistence operations for materials.
type MaterialStore interface {
	Create(ctx context.Context, material Material) (Material, error)
	GetByID(ctx context.Context, id uuid.UUID) (Material, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (Material, error)
	ApplyStatusPatch(ctx context.Context, id uuid.UUID, patch StatusPatch) (bool, error)
	ApplyStatusPatchMany(ctx context.Context, ids []uuid.UUID, patch StatusPatch) (int64, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query MaterialQuery) ([]Material, error)
	Count(ctx context.Context, filter MaterialFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[MaterialStatus]int64, error)
	Recent(ctx context.Context, limit int) ([]Material, error)
}

// MaterialStatus is the moderation state of a material.
type MaterialStatus string

const (
	// MaterialStatusPending is assigned to freshly uploaded materials.
	MaterialStatusPending MaterialStatus = "pending"
	// MaterialStatusVerified marks an approved material.
	MaterialStatusVerified MaterialStatus = "verified"
	// MaterialStatusRejected marks a rejected material.
	MaterialStatusRejected MaterialStatus = "rejected"
	// MaterialStatusLegacy marks materials uploaded before moderation existed.
	MaterialStatusLegacy MaterialStatus = "legacy"
	// MaterialStatusNotVerified marks materials explicitly left unreviewed.
	MaterialStatusNotVerified MaterialStatus = "notVerified"
)

// DefaultMaterialStatus is the status of rows that carry no status at all.
const DefaultMaterialStatus = MaterialStatusLegacy

// MaterialStatuses lists every moderation status in display order.
var MaterialStatuses = []MaterialStatus{
	MaterialStatusPending,
	MaterialStatusVerified,
	MaterialStatusRejected,
	MaterialStatusLegacy,
	MaterialStatusNotVerified,
}

// ParseMaterialStatus converts a raw value into a MaterialStatus.
func ParseMaterialStatus(raw string) (MaterialStatus, error) {
	for _, s := range MaterialStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown material status %q", raw)
}

// Normalize maps an absent status to DefaultMaterialStatus.
func (s MaterialStatus) Normalize() MaterialStatus {
	if s == "" {
		return DefaultMaterialStatus
	}
	return s
}

// MaterialType enumerates material kinds.
type MaterialType string

const (
	MaterialTypeNotes       MaterialType = "notes"
	MaterialTypeAssignments MaterialType = "assignments"
	MaterialTypePYQs        MaterialType = "pyqs"
	MaterialTypeHandouts    MaterialType = "handouts"
)

// Material represents an uploaded study document with moderation metadata.
type Material struct {
	ID          uuid.UUID
	Subject     string
	Description string
	SubjectArea string
	Semester    int
	Type        MaterialType
	Link        string
	StorageKey  string
	Authors     []string
	Instructors []string
	Branches    []string
	Year        int
	Upvotes     []string
	Featured    bool
	Status      MaterialStatus

	// ContributorName is a display cache; ContributorID is authoritative.
	ContributorID   uuid.UUID
	ContributorName string
	Contributor     *Contributor

	VerifiedAt      *time.Time
	VerifiedByAdmin string
	AdminNotes      string

	RejectedAt      *time.Time
	RejectedByAdmin string
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contributor is the resolved uploader of a material.
type Contributor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// StatusPatch is the closed set of field updates a status transition may apply.
type StatusPatch interface {
	TargetStatus() MaterialStatus
	statusPatch()
}

// ApprovePatch holds the fields written when a material is approved.
type ApprovePatch struct {
	VerifiedAt      time.Time
	VerifiedByAdmin string
	// AdminNotes is left untouched when nil.
	AdminNotes *string
}

// TargetStatus implements StatusPatch.
func (ApprovePatch) TargetStatus() MaterialStatus { return MaterialStatusVerified }
func (ApprovePatch) statusPatch()                 {}

// RejectPatch holds the fields written when a material is rejected.
type RejectPatch struct {
	RejectedAt      time.Time
	RejectedByAdmin string
	RejectionReason string
}

// TargetStatus implements StatusPatch.
func (RejectPatch) TargetStatus() MaterialStatus { return MaterialStatusRejected }
func (RejectPatch) statusPatch()                 {}

// Apply writes the patch onto m. Stores without a query language use it.
func Apply(m *Material, patch StatusPatch) {
	switch p := patch.(type) {
	case ApprovePatch:
		at := p.VerifiedAt
		m.Status = MaterialStatusVerified
		m.VerifiedAt = &at
		m.VerifiedByAdmin = p.VerifiedByAdmin
		if p.AdminNotes != nil {
			m.AdminNotes = *p.AdminNotes
		}
	case RejectPatch:
		at := p.RejectedAt
		m.Status = MaterialStatusRejected
		m.RejectedAt = &at
		m.RejectedByAdmin = p.RejectedByAdmin
		m.RejectionReason = p.RejectionReason
	default:
		panic(fmt.Sprintf("unknown status patch %T", patch))
	}
	m.UpdatedAt = time.Now()
}

// MaterialFilter narrows material queries.
type MaterialFilter struct {
	// Status is nil for "all".
	Status *MaterialStatus
	Search string
}

// MaterialSortField enumerates sortable material columns.
type MaterialSortField string

const (
	MaterialSortCreatedAt MaterialSortField = "createdAt"
	MaterialSortUpdatedAt MaterialSortField = "updatedAt"
	MaterialSortSubject   MaterialSortField = "subject"
	MaterialSortSemester  MaterialSortField = "semester"
	MaterialSortYear      MaterialSortField = "year"
	MaterialSortStatus    MaterialSortField = "status"
)

// MaterialQuery is a filtered, sorted, paginated material lookup.
type MaterialQuery struct {
	Filter MaterialFilter
	Sort   MaterialSortField
	Desc   bool
	Offset int
	Limit  int
}

// MaterialStatistics counts materials per public status bucket.
type MaterialStatistics struct {
	Pending     int64 `json:"pending"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Legacy      int64 `json:"legacy"`
	NotVerified int64 `json:"notVerified"`
	Total       int64 `json:"total"`
}

// NewMaterialStatistics folds raw per-status counts into public buckets.
func NewMaterialStatistics(counts map[MaterialStatus]int64) MaterialStatistics {
	var stats MaterialStatistics
	for status, n := range counts {
		switch status.Normalize() {
		case MaterialStatusPending:
			stats.Pending += n
		case MaterialStatusVerified:
			stats.Approved += n
		case MaterialStatusRejected:
			stats.Rejected += n
		case MaterialStatusNotVerified:
			stats.NotVerified += n
		default:
			stats.Legacy += n
		}
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected + stats.Legacy + stats.NotVerified
	return stats
}
