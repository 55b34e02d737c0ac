package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/model"
)

// PromoteUser grants admin rights to another user.
func (s *Moderation) PromoteUser(ctx context.Context, caller model.Caller, userID uuid.UUID) (user model.User, err error) {
	defer func() { record("promote", err) }()

	if userID == caller.ID {
		return model.User{}, model.NewErrSelfPromotion()
	}

	now := s.now()
	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.userStore.GetByIDForUpdate(ctx, userID)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrUserNotFound(userID)
		}
		if err != nil {
			return wrapStoreErr("get user by id", err)
		}
		if current.IsAdmin {
			return model.NewErrAlreadyAdmin(userID)
		}

		modified, err := s.userStore.Promote(ctx, userID, caller.ID, now)
		if err != nil {
			return wrapStoreErr("promote user", err)
		}
		if !modified {
			return model.NewErrAlreadyAdmin(userID)
		}

		user, err = s.userStore.GetByID(ctx, userID)
		if err != nil {
			return wrapStoreErr("get user by id", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Info("Moderation service: promote failed",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, err
	}

	s.logger.Info("Moderation service: user promoted",
		"user_id", userID,
		"by", caller.ID)

	return user, nil
}

// DemoteUser revokes admin rights from another user while at least one
// admin remains.
func (s *Moderation) DemoteUser(ctx context.Context, caller model.Caller, userID uuid.UUID) (user model.User, err error) {
	defer func() { record("demote", err) }()

	if userID == caller.ID {
		return model.User{}, model.NewErrSelfDemotion()
	}

	now := s.now()
	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		// Admin rows are locked before the target row so concurrent demotes
		// queue in the same order.
		admins, err := s.userStore.CountAdminsForUpdate(ctx)
		if err != nil {
			return wrapStoreErr("count admins", err)
		}

		current, err := s.userStore.GetByID(ctx, userID)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrUserNotFound(userID)
		}
		if err != nil {
			return wrapStoreErr("get user by id", err)
		}
		if !current.IsAdmin {
			return model.NewErrNotAdmin(userID)
		}
		if admins < 2 {
			return model.NewErrLastAdmin()
		}

		modified, err := s.userStore.Demote(ctx, userID, caller.ID, now)
		if err != nil {
			return wrapStoreErr("demote user", err)
		}
		if !modified {
			return model.NewErrLastAdmin()
		}

		user, err = s.userStore.GetByID(ctx, userID)
		if err != nil {
			return wrapStoreErr("get user by id", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Info("Moderation service: demote failed",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, err
	}

	s.logger.Info("Moderation service: user demoted",
		"user_id", userID,
		"by", caller.ID)

	return user, nil
}
