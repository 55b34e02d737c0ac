package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Storage is a mock type for the model.Storage interface.
type Storage struct {
	mock.Mock
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *Storage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

// NewStorage creates a Storage mock whose expectations are asserted when the
// test ends.
func NewStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *Storage {
	m := &Storage{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
