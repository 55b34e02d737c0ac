package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/academia-moderation/internal/model"
)

// MaterialStore is a mock type for the model.MaterialStore interface.
type MaterialStore struct {
	mock.Mock
}

func (m *MaterialStore) Create(ctx context.Context, material model.Material) (model.Material, error) {
	args := m.Called(ctx, material)
	return args.Get(0).(model.Material), args.Error(1)
}

func (m *MaterialStore) GetByID(ctx context.Context, id uuid.UUID) (model.Material, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Material), args.Error(1)
}

func (m *MaterialStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.Material, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Material), args.Error(1)
}

func (m *MaterialStore) ApplyStatusPatch(ctx context.Context, id uuid.UUID, patch model.StatusPatch) (bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MaterialStore) ApplyStatusPatchMany(ctx context.Context, ids []uuid.UUID, patch model.StatusPatch) (int64, error) {
	args := m.Called(ctx, ids, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MaterialStore) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	args := m.Called(ctx, id, featured)
	return args.Error(0)
}

func (m *MaterialStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MaterialStore) List(ctx context.Context, query model.MaterialQuery) ([]model.Material, error) {
	args := m.Called(ctx, query)
	materials, _ := args.Get(0).([]model.Material)
	return materials, args.Error(1)
}

func (m *MaterialStore) Count(ctx context.Context, filter model.MaterialFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MaterialStore) CountByStatus(ctx context.Context) (map[model.MaterialStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[model.MaterialStatus]int64)
	return counts, args.Error(1)
}

func (m *MaterialStore) Recent(ctx context.Context, limit int) ([]model.Material, error) {
	args := m.Called(ctx, limit)
	materials, _ := args.Get(0).([]model.Material)
	return materials, args.Error(1)
}

// NewMaterialStore creates a MaterialStore mock whose expectations are
// asserted when the test ends.
func NewMaterialStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MaterialStore {
	m := &MaterialStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
