package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/academia-moderation/internal/model"
)

// ContextManager is a mock type for the model.ContextManager interface.
type ContextManager struct {
	mock.Mock
}

func (m *ContextManager) SetCallerToContext(ctx context.Context, caller model.Caller) context.Context {
	args := m.Called(ctx, caller)
	return args.Get(0).(context.Context)
}

func (m *ContextManager) GetCallerFromContext(ctx context.Context) (model.Caller, bool) {
	args := m.Called(ctx)
	return args.Get(0).(model.Caller), args.Bool(1)
}

// NewContextManager creates a ContextManager mock whose expectations are
// asserted when the test ends.
func NewContextManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContextManager {
	m := &ContextManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
