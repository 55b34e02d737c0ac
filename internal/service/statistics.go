package service

import (
	"context"

	"github.com/dtroode/academia-moderation/internal/model"
)

// MaterialStatistics counts materials per status bucket at a single point in
// time.
func (s *Moderation) MaterialStatistics(ctx context.Context) (model.MaterialStatistics, error) {
	var stats model.MaterialStatistics
	err := s.withinSnapshot(ctx, func(ctx context.Context) error {
		var err error
		stats, err = s.materialStatistics(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("Moderation service: failed to read statistics",
			"error", err.Error())
		return model.MaterialStatistics{}, err
	}
	return stats, nil
}

func (s *Moderation) materialStatistics(ctx context.Context) (model.MaterialStatistics, error) {
	counts, err := s.materialStore.CountByStatus(ctx)
	if err != nil {
		return model.MaterialStatistics{}, wrapStoreErr("count materials by status", err)
	}
	return model.NewMaterialStatistics(counts), nil
}

// DashboardSnapshot returns user and material counters from one snapshot
// plus the newest materials read afterwards.
func (s *Moderation) DashboardSnapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	var snapshot model.DashboardSnapshot
	err := s.withinSnapshot(ctx, func(ctx context.Context) error {
		users, err := s.userStore.Counts(ctx)
		if err != nil {
			return wrapStoreErr("count users", err)
		}
		materials, err := s.materialStatistics(ctx)
		if err != nil {
			return err
		}
		snapshot.Users = users
		snapshot.Materials = materials
		return nil
	})
	if err != nil {
		s.logger.Error("Moderation service: failed to read dashboard counters",
			"error", err.Error())
		return model.DashboardSnapshot{}, err
	}

	recent, err := s.materialStore.Recent(ctx, model.RecentLimit)
	if err != nil {
		s.logger.Error("Moderation service: failed to read recent materials",
			"error", err.Error())
		return model.DashboardSnapshot{}, classify(wrapStoreErr("get recent materials", err))
	}
	snapshot.RecentMaterials = recent

	return snapshot, nil
}
