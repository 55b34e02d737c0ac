package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/academia-moderation/internal/model"
)

func TestMaterialRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUserRepository(db)
	materials := NewMaterialRepository(db)

	contributor, err := users.Create(ctx, model.User{Name: "Meera Iyer", Email: "meera@college.edu"})
	require.NoError(t, err)

	branches := []string{"CSE"}
	m, err := materials.Create(ctx, model.Material{
		Subject:         "Compilers",
		Branches:        branches,
		ContributorID:   contributor.ID,
		ContributorName: "old name",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, model.MaterialStatusPending, m.Status)
	require.NotNil(t, m.Contributor)
	assert.Equal(t, "Meera Iyer", m.Contributor.Name)

	branches[0] = "ME"
	got, err := materials.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CSE"}, got.Branches)

	got.Branches[0] = "IT"
	again, err := materials.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CSE"}, again.Branches)

	_, err = materials.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMaterialRepository_ApplyStatusPatch(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	materials := NewMaterialRepository(db)

	legacy, err := materials.Create(ctx, model.Material{Subject: "Old", Status: model.MaterialStatusLegacy})
	require.NoError(t, err)
	rejected, err := materials.Create(ctx, model.Material{Subject: "Dup", Status: model.MaterialStatusRejected})
	require.NoError(t, err)

	notes := "fine"
	approve := model.ApprovePatch{VerifiedAt: time.Now(), VerifiedByAdmin: "admin@x.com", AdminNotes: &notes}

	changed, err := materials.ApplyStatusPatch(ctx, legacy.ID, approve)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = materials.ApplyStatusPatch(ctx, legacy.ID, approve)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = materials.ApplyStatusPatch(ctx, uuid.New(), approve)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := materials.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusVerified, got.Status)
	assert.Equal(t, "admin@x.com", got.VerifiedByAdmin)
	assert.Equal(t, "fine", got.AdminNotes)

	reject := model.RejectPatch{RejectedAt: time.Now(), RejectedByAdmin: "admin@x.com", RejectionReason: "Duplicate upload"}
	n, err := materials.ApplyStatusPatchMany(ctx, []uuid.UUID{legacy.ID, rejected.ID, uuid.New()}, reject)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	counts, err := materials.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.MaterialStatus]int64{model.MaterialStatusRejected: 2}, counts)
}

func TestMaterialRepository_FeatureAndDelete(t *testing.T) {
	ctx := context.Background()
	materials := NewMaterialRepository(NewDB())

	m, err := materials.Create(ctx, model.Material{Subject: "Signals"})
	require.NoError(t, err)

	require.NoError(t, materials.SetFeatured(ctx, m.ID, true))
	got, err := materials.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Featured)

	require.NoError(t, materials.Delete(ctx, m.ID))
	assert.ErrorIs(t, materials.Delete(ctx, m.ID), model.ErrNotFound)
	assert.ErrorIs(t, materials.SetFeatured(ctx, m.ID, false), model.ErrNotFound)
}

func TestMaterialRepository_List(t *testing.T) {
	ctx := context.Background()
	materials := NewMaterialRepository(NewDB())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []model.Material{
		{Subject: "Operating Systems", Semester: 4, Status: model.MaterialStatusPending},
		{Subject: "Compilers", Semester: 6, Status: model.MaterialStatusRejected, Branches: []string{"CSE"}},
		{Subject: "Networks", Semester: 5, Status: model.MaterialStatusLegacy, Description: "legacy import"},
	}
	for i, m := range seed {
		m.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := materials.Create(ctx, m)
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		q    model.MaterialQuery
		want []string
	}{
		{
			name: "newest first",
			q:    model.MaterialQuery{Sort: model.MaterialSortCreatedAt, Desc: true},
			want: []string{"Networks", "Compilers", "Operating Systems"},
		},
		{
			name: "by semester with limit",
			q:    model.MaterialQuery{Sort: model.MaterialSortSemester, Limit: 2},
			want: []string{"Operating Systems", "Networks"},
		},
		{
			name: "offset",
			q:    model.MaterialQuery{Sort: model.MaterialSortSubject, Offset: 1},
			want: []string{"Networks", "Operating Systems"},
		},
		{
			name: "branch search",
			q:    model.MaterialQuery{Filter: model.MaterialFilter{Search: "cse"}},
			want: []string{"Compilers"},
		},
		{
			name: "description search",
			q:    model.MaterialQuery{Filter: model.MaterialFilter{Search: "LEGACY"}},
			want: []string{"Networks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := materials.List(ctx, tt.q)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, m := range got {
				names = append(names, m.Subject)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	recent, err := materials.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Networks", recent[0].Subject)
	assert.Equal(t, model.MaterialStatusLegacy, recent[0].Status)
}

func TestMaterialRepository_MissingStatusIsLegacy(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	materials := NewMaterialRepository(db)

	created, err := materials.Create(ctx, model.Material{Subject: "New"})
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusPending, created.Status)

	imported := uuid.New()
	db.materials[imported] = model.Material{ID: imported, Subject: "Imported"}

	got, err := materials.GetByID(ctx, imported)
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusLegacy, got.Status)

	legacy := model.MaterialStatusLegacy
	n, err := materials.Count(ctx, model.MaterialFilter{Status: &legacy})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	counts, err := materials.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.MaterialStatus]int64{
		model.MaterialStatusPending: 1,
		model.MaterialStatusLegacy:  1,
	}, counts)
}
