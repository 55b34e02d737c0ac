package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Promote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error)
	Demote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error)
	CountAdminsForUpdate(ctx context.Context) (int64, error)
	Counts(ctx context.Context) (UserCounts, error)
	List(ctx context.Context, query UserQuery) ([]User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
}

// User represents a platform account.
type User struct {
	ID         uuid.UUID
	Name       string
	Email      string
	IsAdmin    bool
	IsVerified bool
	Branch     string
	Batch      string
	PromotedBy *uuid.UUID
	PromotedAt *time.Time
	DemotedBy  *uuid.UUID
	DemotedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserRole filters users by admin flag.
type UserRole string

const (
	UserRoleAll   UserRole = "all"
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// UserFilter narrows user queries.
type UserFilter struct {
	Role   UserRole
	Search string
}

// UserQuery is a filtered, paginated user lookup ordered by newest first.
type UserQuery struct {
	Filter UserFilter
	Offset int
	Limit  int
}

// UserCounts are the dashboard user counters.
type UserCounts struct {
	Total      int64 `json:"total"`
	Verified   int64 `json:"verified"`
	Admins     int64 `json:"admins"`
	Unverified int64 `json:"unverified"`
}
