package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"

	"github.com/dtroode/academia-moderation/internal/api/grpc/handler"
	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/model"
)

// Authenticator resolves bearer tokens into admin callers.
type Authenticator interface {
	AuthenticateAdmin(ctx context.Context, token string) (model.Caller, error)
}

// Authenticate validates bearer tokens and injects the admin caller into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token from the authorization metadata, resolves
// it to an admin caller and returns a context carrying that caller.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, err
	}

	caller, err := m.authenticator.AuthenticateAdmin(ctx, token)
	if err != nil {
		m.logger.Debug("gRPC authentication rejected",
			"error", err.Error())
		return nil, handler.ToStatus(err)
	}

	return m.contextManager.SetCallerToContext(ctx, caller), nil
}
