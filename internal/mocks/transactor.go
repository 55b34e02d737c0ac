package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Transactor is a mock type for the model.Transactor interface. Unless the
// expectation returns an error, fn is invoked with the caller's context.
type Transactor struct {
	mock.Mock
}

func (m *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *Transactor) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// NewTransactor creates a Transactor mock whose expectations are asserted
// when the test ends.
func NewTransactor(t interface {
	mock.TestingT
	Cleanup(func())
}) *Transactor {
	m := &Transactor{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
