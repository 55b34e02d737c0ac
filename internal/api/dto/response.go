package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/model"
)

// Contributor is the resolved uploader of a material.
type Contributor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Material is the admin view of a material.
type Material struct {
	ID              uuid.UUID    `json:"id"`
	Subject         string       `json:"subject"`
	Description     string       `json:"description,omitempty"`
	SubjectArea     string       `json:"subjectArea,omitempty"`
	Semester        int          `json:"semester"`
	MaterialType    string       `json:"materialType"`
	Link            string       `json:"link,omitempty"`
	HasFile         bool         `json:"hasFile"`
	Authors         []string     `json:"authors"`
	Instructors     []string     `json:"instructors"`
	Branches        []string     `json:"branches"`
	Year            int          `json:"year,omitempty"`
	Upvotes         []string     `json:"upvotes"`
	Featured        bool         `json:"featured"`
	Status          string       `json:"status"`
	ContributedBy   *Contributor `json:"contributedBy"`
	ContributorName string       `json:"contributorName,omitempty"`
	VerifiedAt      *time.Time   `json:"verifiedAt,omitempty"`
	VerifiedByAdmin string       `json:"verifiedByAdmin,omitempty"`
	AdminNotes      string       `json:"adminNotes,omitempty"`
	RejectedAt      *time.Time   `json:"rejectedAt,omitempty"`
	RejectedByAdmin string       `json:"rejectedByAdmin,omitempty"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// FromMaterial converts a material for transport.
func FromMaterial(m model.Material) Material {
	out := Material{
		ID:              m.ID,
		Subject:         m.Subject,
		Description:     m.Description,
		SubjectArea:     m.SubjectArea,
		Semester:        m.Semester,
		MaterialType:    string(m.Type),
		Link:            m.Link,
		HasFile:         m.StorageKey != "",
		Authors:         orEmpty(m.Authors),
		Instructors:     orEmpty(m.Instructors),
		Branches:        orEmpty(m.Branches),
		Year:            m.Year,
		Upvotes:         orEmpty(m.Upvotes),
		Featured:        m.Featured,
		Status:          string(m.Status.Normalize()),
		ContributorName: m.ContributorName,
		VerifiedAt:      m.VerifiedAt,
		VerifiedByAdmin: m.VerifiedByAdmin,
		AdminNotes:      m.AdminNotes,
		RejectedAt:      m.RejectedAt,
		RejectedByAdmin: m.RejectedByAdmin,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Contributor != nil {
		out.ContributedBy = &Contributor{ID: m.Contributor.ID, Name: m.Contributor.Name, Email: m.Contributor.Email}
	}
	return out
}

// FromMaterials converts a list of materials for transport.
func FromMaterials(materials []model.Material) []Material {
	out := make([]Material, 0, len(materials))
	for _, m := range materials {
		out = append(out, FromMaterial(m))
	}
	return out
}

// RoleChange is the projection returned by promote and demote.
type RoleChange struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	IsAdmin    bool       `json:"isAdmin"`
	PromotedBy *uuid.UUID `json:"promotedBy,omitempty"`
	PromotedAt *time.Time `json:"promotedAt,omitempty"`
	DemotedBy  *uuid.UUID `json:"demotedBy,omitempty"`
	DemotedAt  *time.Time `json:"demotedAt,omitempty"`
}

func FromRoleChange(u model.User) RoleChange {
	return RoleChange{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsAdmin:    u.IsAdmin,
		PromotedBy: u.PromotedBy,
		PromotedAt: u.PromotedAt,
		DemotedBy:  u.DemotedBy,
		DemotedAt:  u.DemotedAt,
	}
}

// User is the admin console view of an account.
type User struct {
	RoleChange
	IsVerified bool      `json:"isVerified"`
	Branch     string    `json:"branch,omitempty"`
	Batch      string    `json:"batch,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromUser(u model.User) User {
	return User{
		RoleChange: FromRoleChange(u),
		IsVerified: u.IsVerified,
		Branch:     u.Branch,
		Batch:      u.Batch,
		CreatedAt:  u.CreatedAt,
	}
}

// MaterialPage is the admin review listing.
type MaterialPage struct {
	Materials  []Material               `json:"materials"`
	Pagination model.Pagination         `json:"pagination"`
	Statistics model.MaterialStatistics `json:"statistics"`
}

func FromMaterialPage(p model.MaterialPage) MaterialPage {
	return MaterialPage{
		Materials:  FromMaterials(p.Materials),
		Pagination: p.Pagination,
		Statistics: p.Statistics,
	}
}

// UserPage is the admin user listing.
type UserPage struct {
	Users      []User           `json:"users"`
	Pagination model.Pagination `json:"pagination"`
}

func FromUserPage(p model.UserPage) UserPage {
	users := make([]User, 0, len(p.Users))
	for _, u := range p.Users {
		users = append(users, FromUser(u))
	}
	return UserPage{Users: users, Pagination: p.Pagination}
}

// Dashboard is the admin dashboard payload.
type Dashboard struct {
	Users           model.UserCounts         `json:"users"`
	Materials       model.MaterialStatistics `json:"materials"`
	RecentMaterials []Material               `json:"recentMaterials"`
}

func FromDashboard(d model.DashboardSnapshot) Dashboard {
	return Dashboard{
		Users:           d.Users,
		Materials:       d.Materials,
		RecentMaterials: FromMaterials(d.RecentMaterials),
	}
}

// Preview is a time-limited link to the material content.
type Preview struct {
	URL string `json:"url"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
