package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(user.Email)
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	err := r.db.write(ctx, func() error {
		for _, u := range r.db.users {
			if u.Email == user.Email {
				return ErrEmailTaken
			}
		}
		r.db.users[user.ID] = user
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	var (
		u  model.User
		ok bool
	)
	r.db.read(func() {
		u, ok = r.db.users[id]
	})
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

// GetByIDForUpdate is GetByID; the transaction lock already excludes writers.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(email)

	var (
		u     model.User
		found bool
	)
	r.db.read(func() {
		for _, candidate := range r.db.users {
			if candidate.Email == email {
				u, found = candidate, true
				return
			}
		}
	})
	if !found {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) Promote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	var modified bool
	err := r.db.write(ctx, func() error {
		u, ok := r.db.users[id]
		if !ok || u.IsAdmin {
			return nil
		}
		u.IsAdmin = true
		u.PromotedBy = nil
		if by != uuid.Nil {
			u.PromotedBy = &by
		}
		u.PromotedAt = &at
		u.UpdatedAt = time.Now()
		r.db.users[id] = u
		modified = true
		return nil
	})
	return modified, err
}

func (r *UserRepository) Demote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	var modified bool
	err := r.db.write(ctx, func() error {
		u, ok := r.db.users[id]
		if !ok || !u.IsAdmin || r.admins() < 2 {
			return nil
		}
		u.IsAdmin = false
		u.DemotedBy = &by
		u.DemotedAt = &at
		u.UpdatedAt = time.Now()
		r.db.users[id] = u
		modified = true
		return nil
	})
	return modified, err
}

func (r *UserRepository) CountAdminsForUpdate(context.Context) (int64, error) {
	var n int64
	r.db.read(func() {
		n = r.admins()
	})
	return n, nil
}

// admins must be called with the data lock held.
func (r *UserRepository) admins() int64 {
	var n int64
	for _, u := range r.db.users {
		if u.IsAdmin {
			n++
		}
	}
	return n
}

func (r *UserRepository) Counts(context.Context) (model.UserCounts, error) {
	var c model.UserCounts
	r.db.read(func() {
		for _, u := range r.db.users {
			c.Total++
			if u.IsVerified {
				c.Verified++
			}
			if u.IsAdmin {
				c.Admins++
			}
		}
	})
	c.Unverified = c.Total - c.Verified
	return c, nil
}

func (r *UserRepository) List(_ context.Context, q model.UserQuery) ([]model.User, error) {
	var out []model.User
	r.db.read(func() {
		matched := r.filter(q.Filter)
		slices.SortFunc(matched, func(a, b model.User) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(b.ID.String(), a.ID.String())
		})
		out = page(matched, q.Offset, q.Limit)
	})
	return out, nil
}

func (r *UserRepository) Count(_ context.Context, filter model.UserFilter) (int64, error) {
	var n int64
	r.db.read(func() {
		n = int64(len(r.filter(filter)))
	})
	return n, nil
}

// filter must be called with the read lock held.
func (r *UserRepository) filter(filter model.UserFilter) []model.User {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []model.User
	for _, u := range r.db.users {
		switch filter.Role {
		case model.UserRoleAdmin:
			if !u.IsAdmin {
				continue
			}
		case model.UserRoleUser:
			if u.IsAdmin {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(u.Email, search) {
			continue
		}
		out = append(out, u)
	}
	return out
}
