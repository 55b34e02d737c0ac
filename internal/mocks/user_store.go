package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/academia-moderation/internal/model"
)

// UserStore is a mock type for the model.UserStore interface.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Promote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, by, at)
	return args.Bool(0), args.Error(1)
}

func (m *UserStore) Demote(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, by, at)
	return args.Bool(0), args.Error(1)
}

func (m *UserStore) CountAdminsForUpdate(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserStore) Counts(ctx context.Context) (model.UserCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.UserCounts), args.Error(1)
}

func (m *UserStore) List(ctx context.Context, query model.UserQuery) ([]model.User, error) {
	args := m.Called(ctx, query)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserStore) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// NewUserStore creates a UserStore mock whose expectations are asserted when
// the test ends.
func NewUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserStore {
	m := &UserStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
