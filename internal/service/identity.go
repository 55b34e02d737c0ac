package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/model"
)

// Identity resolves bearer tokens into callers and guards admin access.
type Identity struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	logger       *logger.Logger
}

func NewIdentity(userStore model.UserStore, tokenManager model.TokenManager, logger *logger.Logger) *Identity {
	return &Identity{
		userStore:    userStore,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// Authenticate parses an access token and loads the user it was issued to.
// The admin flag is read from the store, not from the token.
func (i *Identity) Authenticate(ctx context.Context, token string) (model.Caller, error) {
	if token == "" {
		return model.Caller{}, model.NewErrUnauthenticated("missing access token")
	}

	userID, err := i.tokenManager.ParseAccessToken(token)
	if err != nil {
		i.logger.Debug("Identity service: invalid access token",
			"error", err.Error())
		return model.Caller{}, model.NewErrUnauthenticated("invalid access token")
	}

	user, err := i.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Caller{}, model.NewErrUnauthenticated("unknown user")
	}
	if err != nil {
		i.logger.Error("Identity service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return model.Caller{}, model.NewErrUnavailable(err)
	}

	return model.Caller{ID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin}, nil
}

// RequireAdmin returns a forbidden error for non-admin callers.
func (i *Identity) RequireAdmin(caller model.Caller) error {
	if !caller.IsAdmin {
		i.logger.Info("Identity service: admin access denied",
			"user_id", caller.ID)
		return model.NewErrForbidden()
	}
	return nil
}

// AuthenticateAdmin authenticates token and requires the caller to be an admin.
func (i *Identity) AuthenticateAdmin(ctx context.Context, token string) (model.Caller, error) {
	caller, err := i.Authenticate(ctx, token)
	if err != nil {
		return model.Caller{}, err
	}
	if err := i.RequireAdmin(caller); err != nil {
		return model.Caller{}, err
	}
	return caller, nil
}

// IssueToken creates an access token for the user with the given email.
func (i *Identity) IssueToken(ctx context.Context, email string) (string, error) {
	user, err := i.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", fmt.Errorf("user %s not found", email)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	token, err := i.tokenManager.GenerateAccessToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	i.logger.Info("Identity service: access token issued",
		"user_id", user.ID)

	return token, nil
}

// GrantAdmin marks the user with the given email as admin without the
// promote guards. It bootstraps the first admin from the command line, so
// no promoter is recorded.
func (i *Identity) GrantAdmin(ctx context.Context, email string) (model.User, error) {
	user, err := i.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("user %s not found", email)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user.IsAdmin {
		return user, nil
	}

	if _, err := i.userStore.Promote(ctx, user.ID, uuid.Nil, time.Now().UTC()); err != nil {
		return model.User{}, fmt.Errorf("failed to promote user: %w", err)
	}

	user, err = i.userStore.GetByID(ctx, user.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	i.logger.Info("Identity service: admin granted",
		"user_id", user.ID)

	return user, nil
}

// BootstrapAdmin makes sure an admin with the given email exists, creating
// the account when needed, and returns an access token for it. It seeds
// stores that start empty.
func (i *Identity) BootstrapAdmin(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("bootstrap admin email is empty")
	}

	_, err := i.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		name, _, _ := strings.Cut(email, "@")
		_, err = i.userStore.Create(ctx, model.User{
			ID:         uuid.New(),
			Name:       name,
			Email:      email,
			IsVerified: true,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create bootstrap admin: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if _, err := i.GrantAdmin(ctx, email); err != nil {
		return "", err
	}
	return i.IssueToken(ctx, email)
}
