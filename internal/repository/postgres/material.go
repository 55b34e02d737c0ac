package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/academia-moderation/internal/model"
)

var _ model.MaterialStore = (*MaterialRepository)(nil)

const materialColumns = `
	m.id, m.subject, m.description, m.subject_area, m.semester, m.material_type, m.link, m.storage_key,
	m.authors, m.instructors, m.branches, m.year, m.upvotes, m.featured, m.status,
	m.contributor_id, m.contributor_name,
	m.verified_at, m.verified_by_admin, m.admin_notes,
	m.rejected_at, m.rejected_by_admin, m.rejection_reason,
	m.created_at, m.updated_at,
	u.id, u.name, u.email`

const materialFrom = `
	FROM materials m
	LEFT JOIN users u ON u.id = m.contributor_id`

type MaterialRepository struct {
	db *Connection
}

func NewMaterialRepository(db *Connection) *MaterialRepository {
	return &MaterialRepository{
		db: db,
	}
}

func (r *MaterialRepository) Create(ctx context.Context, material model.Material) (model.Material, error) {
	const query = `
		INSERT INTO materials (
			id, subject, description, subject_area, semester, material_type, link, storage_key,
			authors, instructors, branches, year, upvotes, featured, status,
			contributor_id, contributor_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())`

	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if material.Status == "" {
		material.Status = model.MaterialStatusPending
	}

	_, err := r.db.conn(ctx).Exec(ctx, query,
		material.ID, material.Subject, material.Description, material.SubjectArea, material.Semester,
		string(material.Type), material.Link, material.StorageKey,
		nonNil(material.Authors), nonNil(material.Instructors), nonNil(material.Branches), material.Year,
		nonNil(material.Upvotes), material.Featured, string(material.Status),
		nullUUID(material.ContributorID), material.ContributorName,
	)
	if err != nil {
		return model.Material{}, fmt.Errorf("failed to create material: %w", err)
	}

	return r.GetByID(ctx, material.ID)
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Material, error) {
	query := `SELECT ` + materialColumns + materialFrom + ` WHERE m.id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate locks the material row until the surrounding transaction ends.
func (r *MaterialRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.Material, error) {
	query := `SELECT ` + materialColumns + materialFrom + ` WHERE m.id = $1 FOR UPDATE OF m`
	return r.getOne(ctx, query, id)
}

func (r *MaterialRepository) getOne(ctx context.Context, query string, id uuid.UUID) (model.Material, error) {
	material, err := scanMaterial(r.db.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Material{}, model.ErrNotFound
		}
		return model.Material{}, fmt.Errorf("failed to get material by id: %w", err)
	}
	return material, nil
}

// ApplyStatusPatch writes patch to the material unless it already has the
// target status. It reports whether a row was modified.
func (r *MaterialRepository) ApplyStatusPatch(ctx context.Context, id uuid.UUID, patch model.StatusPatch) (bool, error) {
	a := args{}
	set := statusPatchSet(patch, &a)
	query := fmt.Sprintf(`UPDATE materials SET %s WHERE id = %s AND status <> %s`,
		set, a.add(id), a.add(string(patch.TargetStatus())))

	cmd, err := r.db.conn(ctx).Exec(ctx, query, a...)
	if err != nil {
		return false, fmt.Errorf("failed to update material status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ApplyStatusPatchMany writes patch to every listed material not already in
// the target status with a single statement.
func (r *MaterialRepository) ApplyStatusPatchMany(ctx context.Context, ids []uuid.UUID, patch model.StatusPatch) (int64, error) {
	a := args{}
	set := statusPatchSet(patch, &a)
	query := fmt.Sprintf(`UPDATE materials SET %s WHERE id = ANY(%s::uuid[]) AND status <> %s`,
		set, a.add(uuidStrings(ids)), a.add(string(patch.TargetStatus())))

	cmd, err := r.db.conn(ctx).Exec(ctx, query, a...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update material status: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func statusPatchSet(patch model.StatusPatch, a *args) string {
	switch p := patch.(type) {
	case model.ApprovePatch:
		return fmt.Sprintf(
			"status = %s, verified_at = %s, verified_by_admin = %s, admin_notes = COALESCE(%s::text, admin_notes), updated_at = NOW()",
			a.add(string(model.MaterialStatusVerified)), a.add(p.VerifiedAt), a.add(p.VerifiedByAdmin), a.add(p.AdminNotes),
		)
	case model.RejectPatch:
		return fmt.Sprintf(
			"status = %s, rejected_at = %s, rejected_by_admin = %s, rejection_reason = %s, updated_at = NOW()",
			a.add(string(model.MaterialStatusRejected)), a.add(p.RejectedAt), a.add(p.RejectedByAdmin), a.add(p.RejectionReason),
		)
	default:
		panic(fmt.Sprintf("unknown status patch %T", patch))
	}
}

func (r *MaterialRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	const query = `UPDATE materials SET featured = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.conn(ctx).Exec(ctx, query, id, featured)
	if err != nil {
		return fmt.Errorf("failed to set featured flag: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM materials WHERE id = $1`
	cmd, err := r.db.conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *MaterialRepository) List(ctx context.Context, q model.MaterialQuery) ([]model.Material, error) {
	a := args{}
	query := `SELECT ` + materialColumns + materialFrom +
		materialWhere(q.Filter, &a) +
		materialOrderBy(q.Sort, q.Desc) +
		fmt.Sprintf(" LIMIT %s OFFSET %s", a.add(q.Limit), a.add(q.Offset))

	return r.query(ctx, query, a...)
}

func (r *MaterialRepository) Count(ctx context.Context, filter model.MaterialFilter) (int64, error) {
	a := args{}
	query := `SELECT COUNT(*) FROM materials m` + materialWhere(filter, &a)

	var n int64
	if err := r.db.conn(ctx).QueryRow(ctx, query, a...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count materials: %w", err)
	}
	return n, nil
}

func (r *MaterialRepository) CountByStatus(ctx context.Context) (map[model.MaterialStatus]int64, error) {
	const query = `SELECT COALESCE(status, ''), COUNT(*) FROM materials GROUP BY 1`

	rows, err := r.db.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count materials by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.MaterialStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[model.MaterialStatus(status).Normalize()] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count materials by status: %w", err)
	}
	return counts, nil
}

func (r *MaterialRepository) Recent(ctx context.Context, limit int) ([]model.Material, error) {
	query := `SELECT ` + materialColumns + materialFrom + ` ORDER BY m.created_at DESC, m.id DESC LIMIT $1`
	return r.query(ctx, query, limit)
}

func (r *MaterialRepository) query(ctx context.Context, query string, params ...any) ([]model.Material, error) {
	rows, err := r.db.conn(ctx).Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		material, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	return materials, nil
}

func scanMaterial(row pgx.Row) (model.Material, error) {
	var (
		m              model.Material
		materialType   string
		status         string
		contributorID  *uuid.UUID
		resolvedID     *uuid.UUID
		resolvedName   *string
		resolvedEmail  *string
		semester, year int32
	)

	err := row.Scan(
		&m.ID, &m.Subject, &m.Description, &m.SubjectArea, &semester, &materialType, &m.Link, &m.StorageKey,
		&m.Authors, &m.Instructors, &m.Branches, &year, &m.Upvotes, &m.Featured, &status,
		&contributorID, &m.ContributorName,
		&m.VerifiedAt, &m.VerifiedByAdmin, &m.AdminNotes,
		&m.RejectedAt, &m.RejectedByAdmin, &m.RejectionReason,
		&m.CreatedAt, &m.UpdatedAt,
		&resolvedID, &resolvedName, &resolvedEmail,
	)
	if err != nil {
		return model.Material{}, err
	}

	m.Semester = int(semester)
	m.Year = int(year)
	m.Type = model.MaterialType(materialType)
	m.Status = model.MaterialStatus(status).Normalize()
	if contributorID != nil {
		m.ContributorID = *contributorID
	}
	if resolvedID != nil {
		m.Contributor = &model.Contributor{ID: *resolvedID}
		if resolvedName != nil {
			m.Contributor.Name = *resolvedName
		}
		if resolvedEmail != nil {
			m.Contributor.Email = *resolvedEmail
		}
	}

	return m, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
