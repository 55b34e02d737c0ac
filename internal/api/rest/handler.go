package rest

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/api/dto"
	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/model"
)

type handler struct {
	moderation     ModerationService
	contextManager model.ContextManager
	logger         *logger.Logger
}

type listMaterialsQuery struct {
	Status    string `form:"status"`
	Search    string `form:"search"`
	Page      *int   `form:"page"`
	Limit     *int   `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

type listUsersQuery struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Page   *int   `form:"page"`
	Limit  *int   `form:"limit"`
}

func (h *handler) caller(c *gin.Context) (model.Caller, bool) {
	caller, ok := h.contextManager.GetCallerFromContext(c.Request.Context())
	if !ok {
		respondError(c, model.NewErrUnauthenticated("missing caller"))
	}
	return caller, ok
}

func (h *handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// bindBody decodes an optional JSON body into v.
func bindBody(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, errBadBody())
		return false
	}
	return true
}

func (h *handler) dashboard(c *gin.Context) {
	snapshot, err := h.moderation.DashboardSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromDashboard(snapshot))
}

func (h *handler) statistics(c *gin.Context) {
	stats, err := h.moderation.MaterialStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *handler) listMaterials(c *gin.Context) {
	var q listMaterialsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, model.NewErrValidation("invalid query parameters"))
		return
	}

	page, err := h.moderation.ListMaterials(c.Request.Context(), model.ListMaterialsCommand{
		Status:    q.Status,
		Search:    q.Search,
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromMaterialPage(page))
}

func (h *handler) getMaterial(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	material, err := h.moderation.GetMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromMaterial(material))
}

func (h *handler) previewMaterial(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	url, err := h.moderation.MaterialPreviewURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.Preview{URL: url})
}

func (h *handler) approveMaterial(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if !bindBody(c, &req) {
		return
	}

	material, err := h.moderation.ApproveMaterial(c.Request.Context(), caller, model.ApproveMaterialCommand{
		MaterialID: id,
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromMaterial(material))
}

func (h *handler) rejectMaterial(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !bindBody(c, &req) {
		return
	}

	material, err := h.moderation.RejectMaterial(c.Request.Context(), caller, model.RejectMaterialCommand{
		MaterialID: id,
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromMaterial(material))
}

func (h *handler) bulkUpdate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.BulkRequest
	if !bindBody(c, &req) {
		return
	}
	cmd, err := req.Command()
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.moderation.BulkUpdate(c.Request.Context(), caller, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *handler) setFeatured(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.FeaturedRequest
	if !bindBody(c, &req) {
		return
	}
	featured, err := req.Value()
	if err != nil {
		respondError(c, err)
		return
	}

	material, err := h.moderation.SetFeatured(c.Request.Context(), caller, id, featured)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromMaterial(material))
}

func (h *handler) deleteMaterial(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.moderation.DeleteMaterial(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "material deleted")
}

func (h *handler) listUsers(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, model.NewErrValidation("invalid query parameters"))
		return
	}

	page, err := h.moderation.ListUsers(c.Request.Context(), model.ListUsersCommand{
		Search: q.Search,
		Role:   q.Role,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromUserPage(page))
}

func (h *handler) promoteUser(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	user, err := h.moderation.PromoteUser(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromRoleChange(user))
}

func (h *handler) demoteUser(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	user, err := h.moderation.DemoteUser(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.FromRoleChange(user))
}
