package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/metrics"
	"github.com/dtroode/academia-moderation/internal/model"
)

// ApproveMaterial moves a material to verified and attributes the change to
// the caller.
func (s *Moderation) ApproveMaterial(ctx context.Context, caller model.Caller, cmd model.ApproveMaterialCommand) (material model.Material, err error) {
	defer func() { record("approve", err) }()

	cmd.AdminNotes = trimmed(cmd.AdminNotes)
	if err := s.validator.Struct(cmd); err != nil {
		return model.Material{}, err
	}

	s.logger.Debug("Moderation service: approving material",
		"material_id", cmd.MaterialID,
		"admin", caller.Email)

	patch := model.ApprovePatch{
		VerifiedAt:      s.now(),
		VerifiedByAdmin: caller.Email,
		AdminNotes:      cmd.AdminNotes,
	}

	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.materialStore.GetByIDForUpdate(ctx, cmd.MaterialID)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrMaterialNotFound(cmd.MaterialID)
		}
		if err != nil {
			return wrapStoreErr("get material by id", err)
		}
		if current.Status.Normalize() == model.MaterialStatusVerified {
			return model.NewErrAlreadyVerified(cmd.MaterialID)
		}

		modified, err := s.materialStore.ApplyStatusPatch(ctx, cmd.MaterialID, patch)
		if err != nil {
			return wrapStoreErr("approve material", err)
		}
		if !modified {
			return model.NewErrAlreadyVerified(cmd.MaterialID)
		}

		material, err = s.materialStore.GetByID(ctx, cmd.MaterialID)
		if err != nil {
			return wrapStoreErr("get material by id", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Info("Moderation service: approve failed",
			"material_id", cmd.MaterialID,
			"error", err.Error())
		return model.Material{}, err
	}

	s.logger.Info("Moderation service: material approved",
		"material_id", cmd.MaterialID,
		"admin", caller.Email)

	return material, nil
}

// RejectMaterial moves a material to rejected with a reason.
func (s *Moderation) RejectMaterial(ctx context.Context, caller model.Caller, cmd model.RejectMaterialCommand) (material model.Material, err error) {
	defer func() { record("reject", err) }()

	cmd.Reason = strings.TrimSpace(cmd.Reason)
	if err := s.validator.Struct(cmd); err != nil {
		return model.Material{}, err
	}

	s.logger.Debug("Moderation service: rejecting material",
		"material_id", cmd.MaterialID,
		"admin", caller.Email)

	patch := model.RejectPatch{
		RejectedAt:      s.now(),
		RejectedByAdmin: caller.Email,
		RejectionReason: cmd.Reason,
	}

	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.materialStore.GetByIDForUpdate(ctx, cmd.MaterialID)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrMaterialNotFound(cmd.MaterialID)
		}
		if err != nil {
			return wrapStoreErr("get material by id", err)
		}
		if current.Status.Normalize() == model.MaterialStatusRejected {
			return model.NewErrAlreadyRejected(cmd.MaterialID)
		}

		modified, err := s.materialStore.ApplyStatusPatch(ctx, cmd.MaterialID, patch)
		if err != nil {
			return wrapStoreErr("reject material", err)
		}
		if !modified {
			return model.NewErrAlreadyRejected(cmd.MaterialID)
		}

		material, err = s.materialStore.GetByID(ctx, cmd.MaterialID)
		if err != nil {
			return wrapStoreErr("get material by id", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Info("Moderation service: reject failed",
			"material_id", cmd.MaterialID,
			"error", err.Error())
		return model.Material{}, err
	}

	s.logger.Info("Moderation service: material rejected",
		"material_id", cmd.MaterialID,
		"admin", caller.Email)

	return material, nil
}

// BulkUpdate applies one transition to a batch of materials. Materials
// already in the target status are skipped.
func (s *Moderation) BulkUpdate(ctx context.Context, caller model.Caller, cmd model.BulkUpdateCommand) (result model.BulkUpdateResult, err error) {
	defer func() { record("bulk_"+string(cmd.Action), err) }()

	cmd.Reason = strings.TrimSpace(cmd.Reason)
	cmd.AdminNotes = trimmed(cmd.AdminNotes)
	if cmd.Action == model.BulkActionApprove {
		cmd.Reason = ""
	}
	if err := s.validator.Struct(cmd); err != nil {
		return model.BulkUpdateResult{}, err
	}

	var patch model.StatusPatch
	now := s.now()
	switch cmd.Action {
	case model.BulkActionApprove:
		patch = model.ApprovePatch{VerifiedAt: now, VerifiedByAdmin: caller.Email, AdminNotes: cmd.AdminNotes}
	case model.BulkActionReject:
		patch = model.RejectPatch{RejectedAt: now, RejectedByAdmin: caller.Email, RejectionReason: cmd.Reason}
	}

	var modified int64
	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.materialStore.ApplyStatusPatchMany(ctx, cmd.MaterialIDs, patch)
		if err != nil {
			return wrapStoreErr("bulk update materials", err)
		}
		modified = n
		return nil
	})
	if err != nil {
		s.logger.Error("Moderation service: bulk update failed",
			"action", cmd.Action,
			"requested", len(cmd.MaterialIDs),
			"error", err.Error())
		return model.BulkUpdateResult{}, err
	}

	metrics.BulkMaterialsModified.WithLabelValues(string(cmd.Action)).Add(float64(modified))
	s.logger.Info("Moderation service: bulk update applied",
		"action", cmd.Action,
		"requested", len(cmd.MaterialIDs),
		"modified", modified,
		"admin", caller.Email)

	return model.BulkUpdateResult{
		Action:           cmd.Action,
		TotalRequested:   len(cmd.MaterialIDs),
		ActuallyModified: modified,
	}, nil
}

// SetFeatured toggles the featured flag of a material.
func (s *Moderation) SetFeatured(ctx context.Context, caller model.Caller, id uuid.UUID, featured bool) (material model.Material, err error) {
	defer func() { record("feature", err) }()

	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		err := s.materialStore.SetFeatured(ctx, id, featured)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrMaterialNotFound(id)
		}
		if err != nil {
			return wrapStoreErr("set featured", err)
		}

		material, err = s.materialStore.GetByID(ctx, id)
		if err != nil {
			return wrapStoreErr("get material by id", err)
		}
		return nil
	})
	if err != nil {
		return model.Material{}, err
	}

	s.logger.Info("Moderation service: featured flag changed",
		"material_id", id,
		"featured", featured,
		"admin", caller.Email)

	return material, nil
}

// DeleteMaterial removes a material and then its stored file. A storage
// failure after the row is gone is logged and not returned.
func (s *Moderation) DeleteMaterial(ctx context.Context, caller model.Caller, id uuid.UUID) (err error) {
	defer func() { record("delete", err) }()

	var storageKey string
	err = s.withinTransaction(ctx, func(ctx context.Context) error {
		material, err := s.materialStore.GetByIDForUpdate(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrMaterialNotFound(id)
		}
		if err != nil {
			return wrapStoreErr("get material by id", err)
		}
		storageKey = material.StorageKey

		err = s.materialStore.Delete(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrMaterialNotFound(id)
		}
		if err != nil {
			return wrapStoreErr("delete material", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Moderation service: material deleted",
		"material_id", id,
		"admin", caller.Email)

	if storageKey != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, storageKey); err != nil {
			s.logger.Error("Moderation service: failed to delete stored file",
				"material_id", id,
				"key", storageKey,
				"error", err.Error())
		}
	}

	return nil
}

// GetMaterial returns a single material with its contributor resolved.
func (s *Moderation) GetMaterial(ctx context.Context, id uuid.UUID) (model.Material, error) {
	material, err := s.materialStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Material{}, model.NewErrMaterialNotFound(id)
	}
	if err != nil {
		return model.Material{}, classify(wrapStoreErr("get material by id", err))
	}
	return material, nil
}

// MaterialPreviewURL returns a time-limited link to the material content.
// External links are returned as is.
func (s *Moderation) MaterialPreviewURL(ctx context.Context, id uuid.UUID) (string, error) {
	material, err := s.GetMaterial(ctx, id)
	if err != nil {
		return "", err
	}

	if material.StorageKey == "" || s.storage == nil {
		if material.Link == "" {
			return "", model.NewErrMaterialNotFound(id)
		}
		return material.Link, nil
	}

	url, err := s.storage.PresignedURL(ctx, material.StorageKey, s.previewExpiry)
	if err != nil {
		s.logger.Error("Moderation service: failed to presign preview",
			"material_id", id,
			"key", material.StorageKey,
			"error", err.Error())
		return "", model.NewErrUnavailable(err)
	}
	return url, nil
}
