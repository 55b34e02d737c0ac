package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/model"
)

var _ model.MaterialStore = (*MaterialRepository)(nil)

type MaterialRepository struct {
	db *DB
}

func NewMaterialRepository(db *DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material model.Material) (model.Material, error) {
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if material.Status == "" {
		material.Status = model.MaterialStatusPending
	}
	now := time.Now()
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now
	material.Contributor = nil

	err := r.db.write(ctx, func() error {
		r.db.materials[material.ID] = cloneMaterial(material)
		return nil
	})
	if err != nil {
		return model.Material{}, err
	}
	return r.GetByID(ctx, material.ID)
}

func (r *MaterialRepository) GetByID(_ context.Context, id uuid.UUID) (model.Material, error) {
	var (
		m  model.Material
		ok bool
	)
	r.db.read(func() {
		m, ok = r.db.materials[id]
		if ok {
			m = r.resolve(m)
		}
	})
	if !ok {
		return model.Material{}, model.ErrNotFound
	}
	return m, nil
}

// GetByIDForUpdate is GetByID; the transaction lock already excludes writers.
func (r *MaterialRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.Material, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialRepository) ApplyStatusPatch(ctx context.Context, id uuid.UUID, patch model.StatusPatch) (bool, error) {
	var modified bool
	err := r.db.write(ctx, func() error {
		m, ok := r.db.materials[id]
		if !ok || m.Status.Normalize() == patch.TargetStatus() {
			return nil
		}
		model.Apply(&m, patch)
		r.db.materials[id] = m
		modified = true
		return nil
	})
	return modified, err
}

func (r *MaterialRepository) ApplyStatusPatchMany(ctx context.Context, ids []uuid.UUID, patch model.StatusPatch) (int64, error) {
	var n int64
	err := r.db.write(ctx, func() error {
		for _, id := range ids {
			m, ok := r.db.materials[id]
			if !ok || m.Status.Normalize() == patch.TargetStatus() {
				continue
			}
			model.Apply(&m, patch)
			r.db.materials[id] = m
			n++
		}
		return nil
	})
	return n, err
}

func (r *MaterialRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return r.db.write(ctx, func() error {
		m, ok := r.db.materials[id]
		if !ok {
			return model.ErrNotFound
		}
		m.Featured = featured
		m.UpdatedAt = time.Now()
		r.db.materials[id] = m
		return nil
	})
}

func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.write(ctx, func() error {
		if _, ok := r.db.materials[id]; !ok {
			return model.ErrNotFound
		}
		delete(r.db.materials, id)
		return nil
	})
}

func (r *MaterialRepository) List(_ context.Context, q model.MaterialQuery) ([]model.Material, error) {
	var out []model.Material
	r.db.read(func() {
		matched := r.filter(q.Filter)
		slices.SortFunc(matched, materialComparator(q.Sort, q.Desc))
		for _, m := range page(matched, q.Offset, q.Limit) {
			out = append(out, r.resolve(m))
		}
	})
	return out, nil
}

func (r *MaterialRepository) Count(_ context.Context, filter model.MaterialFilter) (int64, error) {
	var n int64
	r.db.read(func() {
		n = int64(len(r.filter(filter)))
	})
	return n, nil
}

func (r *MaterialRepository) CountByStatus(context.Context) (map[model.MaterialStatus]int64, error) {
	counts := make(map[model.MaterialStatus]int64)
	r.db.read(func() {
		for _, m := range r.db.materials {
			counts[m.Status.Normalize()]++
		}
	})
	return counts, nil
}

func (r *MaterialRepository) Recent(_ context.Context, limit int) ([]model.Material, error) {
	var out []model.Material
	r.db.read(func() {
		all := r.filter(model.MaterialFilter{})
		slices.SortFunc(all, materialComparator(model.MaterialSortCreatedAt, true))
		for _, m := range page(all, 0, limit) {
			out = append(out, r.resolve(m))
		}
	})
	return out, nil
}

// filter must be called with the read lock held.
func (r *MaterialRepository) filter(filter model.MaterialFilter) []model.Material {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []model.Material
	for _, m := range r.db.materials {
		if filter.Status != nil && m.Status.Normalize() != *filter.Status {
			continue
		}
		if search != "" && !materialMatches(m, search) {
			continue
		}
		out = append(out, cloneMaterial(m))
	}
	return out
}

// resolve must be called with the read lock held.
func (r *MaterialRepository) resolve(m model.Material) model.Material {
	m = cloneMaterial(m)
	m.Status = m.Status.Normalize()
	m.Contributor = nil
	if u, ok := r.db.users[m.ContributorID]; ok && m.ContributorID != uuid.Nil {
		m.Contributor = &model.Contributor{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return m
}

func materialMatches(m model.Material, search string) bool {
	fields := []string{m.Subject, m.Description, m.SubjectArea, strings.Join(m.Branches, " ")}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func materialComparator(field model.MaterialSortField, desc bool) func(a, b model.Material) int {
	return func(a, b model.Material) int {
		var c int
		switch field {
		case model.MaterialSortUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case model.MaterialSortSubject:
			c = cmp.Compare(a.Subject, b.Subject)
		case model.MaterialSortSemester:
			c = cmp.Compare(a.Semester, b.Semester)
		case model.MaterialSortYear:
			c = cmp.Compare(a.Year, b.Year)
		case model.MaterialSortStatus:
			c = cmp.Compare(a.Status.Normalize(), b.Status.Normalize())
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if desc {
			return -c
		}
		return c
	}
}
