package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/academia-moderation/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, name, email, is_admin, is_verified, branch, batch,
	promoted_by, promoted_at, demoted_by, demoted_at, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, email, is_admin, is_verified, branch, batch, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			  RETURNING ` + userColumns

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	saved, err := scanUser(r.db.conn(ctx).QueryRow(ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), user.IsAdmin, user.IsVerified, user.Branch, user.Batch,
	))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate locks the user row until the surrounding transaction ends.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, strings.ToLower(email))
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	user, err := scanUser(r.db.conn(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Promote sets the admin flag of a non-admin user and reports whether the
// row changed. A nil by stores no promoter.
func (r *UserRepository) Promote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	const query = `
		UPDATE users SET is_admin = TRUE, promoted_by = $2, promoted_at = $3, updated_at = NOW()
		WHERE id = $1 AND NOT is_admin`

	cmd, err := r.db.conn(ctx).Exec(ctx, query, id, nullUUID(by), at)
	if err != nil {
		return false, fmt.Errorf("failed to promote user: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// Demote clears the admin flag only while another admin remains. It reports
// whether the row changed.
func (r *UserRepository) Demote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	const query = `
		UPDATE users SET is_admin = FALSE, demoted_by = $2, demoted_at = $3, updated_at = NOW()
		WHERE id = $1 AND is_admin
		  AND (SELECT COUNT(*) FROM users WHERE is_admin) >= 2`

	cmd, err := r.db.conn(ctx).Exec(ctx, query, id, by, at)
	if err != nil {
		return false, fmt.Errorf("failed to demote user: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// CountAdminsForUpdate locks every admin row and returns how many there are.
// Concurrent callers queue on the locks, so the count stays valid until commit.
func (r *UserRepository) CountAdminsForUpdate(ctx context.Context) (int64, error) {
	const query = `SELECT id FROM users WHERE is_admin ORDER BY id FOR UPDATE`

	rows, err := r.db.conn(ctx).Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to lock admins: %w", err)
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to lock admins: %w", err)
	}
	return n, nil
}

func (r *UserRepository) Counts(ctx context.Context) (model.UserCounts, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_verified),
		       COUNT(*) FILTER (WHERE is_admin)
		FROM users`

	var c model.UserCounts
	if err := r.db.conn(ctx).QueryRow(ctx, query).Scan(&c.Total, &c.Verified, &c.Admins); err != nil {
		return model.UserCounts{}, fmt.Errorf("failed to count users: %w", err)
	}
	c.Unverified = c.Total - c.Verified
	return c, nil
}

func (r *UserRepository) List(ctx context.Context, q model.UserQuery) ([]model.User, error) {
	a := args{}
	query := `SELECT ` + userColumns + ` FROM users` +
		userWhere(q.Filter, &a) +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s", a.add(q.Limit), a.add(q.Offset))

	rows, err := r.db.conn(ctx).Query(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	a := args{}
	query := `SELECT COUNT(*) FROM users` + userWhere(filter, &a)

	var n int64
	if err := r.db.conn(ctx).QueryRow(ctx, query, a...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.IsVerified, &u.Branch, &u.Batch,
		&u.PromotedBy, &u.PromotedAt, &u.DemotedBy, &u.DemotedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}
