package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/academia-moderation/internal/model"
)

// Authenticator is a mock type for the admin token authenticator.
type Authenticator struct {
	mock.Mock
}

func (m *Authenticator) AuthenticateAdmin(ctx context.Context, token string) (model.Caller, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Caller), args.Error(1)
}

// NewAuthenticator creates an Authenticator mock whose expectations are
// asserted when the test ends.
func NewAuthenticator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Authenticator {
	m := &Authenticator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
