package service

import (
	"context"
	"strings"

	"github.com/dtroode/academia-moderation/internal/model"
)

// ListMaterials returns a page of the admin review listing together with the
// unfiltered statistics.
func (s *Moderation) ListMaterials(ctx context.Context, cmd model.ListMaterialsCommand) (model.MaterialPage, error) {
	cmd.Search = strings.TrimSpace(cmd.Search)
	if err := s.validator.Struct(cmd); err != nil {
		return model.MaterialPage{}, err
	}
	pageNum, limit := pageBounds(cmd.Page, cmd.Limit)

	filter := model.MaterialFilter{Search: cmd.Search}
	if cmd.Status != "" && cmd.Status != "all" {
		status := model.MaterialStatus(cmd.Status)
		filter.Status = &status
	}

	sort := model.MaterialSortField(cmd.SortBy)
	if sort == "" {
		sort = model.MaterialSortCreatedAt
	}

	query := model.MaterialQuery{
		Filter: filter,
		Sort:   sort,
		Desc:   cmd.SortOrder != "asc",
		Offset: (pageNum - 1) * limit,
		Limit:  limit,
	}

	var page model.MaterialPage
	err := s.withinSnapshot(ctx, func(ctx context.Context) error {
		materials, err := s.materialStore.List(ctx, query)
		if err != nil {
			return wrapStoreErr("list materials", err)
		}
		total, err := s.materialStore.Count(ctx, filter)
		if err != nil {
			return wrapStoreErr("count materials", err)
		}
		stats, err := s.materialStatistics(ctx)
		if err != nil {
			return err
		}

		page = model.MaterialPage{
			Materials:  materials,
			Pagination: model.NewPagination(pageNum, limit, total),
			Statistics: stats,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Moderation service: failed to list materials",
			"error", err.Error())
		return model.MaterialPage{}, err
	}

	return page, nil
}

// ListUsers returns a page of users ordered by newest first.
func (s *Moderation) ListUsers(ctx context.Context, cmd model.ListUsersCommand) (model.UserPage, error) {
	cmd.Search = strings.TrimSpace(cmd.Search)
	if err := s.validator.Struct(cmd); err != nil {
		return model.UserPage{}, err
	}
	pageNum, limit := pageBounds(cmd.Page, cmd.Limit)

	filter := model.UserFilter{Role: model.UserRole(cmd.Role), Search: cmd.Search}
	query := model.UserQuery{
		Filter: filter,
		Offset: (pageNum - 1) * limit,
		Limit:  limit,
	}

	var page model.UserPage
	err := s.withinSnapshot(ctx, func(ctx context.Context) error {
		users, err := s.userStore.List(ctx, query)
		if err != nil {
			return wrapStoreErr("list users", err)
		}
		total, err := s.userStore.Count(ctx, filter)
		if err != nil {
			return wrapStoreErr("count users", err)
		}

		page = model.UserPage{
			Users:      users,
			Pagination: model.NewPagination(pageNum, limit, total),
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Moderation service: failed to list users",
			"error", err.Error())
		return model.UserPage{}, err
	}

	return page, nil
}

// pageBounds applies the listing defaults to absent page and limit values.
func pageBounds(page, limit *int) (int, int) {
	p, l := model.DefaultPage, model.DefaultLimit
	if page != nil {
		p = *page
	}
	if limit != nil {
		l = *limit
	}
	return p, l
}
