package context

import (
	"context"

	"github.com/dtroode/academia-moderation/internal/model"
)

type callerKey struct{}

// Manager stores the authenticated caller in request contexts.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetCallerToContext returns a context carrying caller.
func (m *Manager) SetCallerToContext(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCallerFromContext returns the caller stored by SetCallerToContext.
func (m *Manager) GetCallerFromContext(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(model.Caller)
	return caller, ok
}
