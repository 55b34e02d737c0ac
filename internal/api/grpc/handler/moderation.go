package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/academia-moderation/internal/api/dto"
	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/model"
)

// ModerationService defines the admin operations served over gRPC.
type ModerationService interface {
	ApproveMaterial(ctx context.Context, caller model.Caller, cmd model.ApproveMaterialCommand) (model.Material, error)
	RejectMaterial(ctx context.Context, caller model.Caller, cmd model.RejectMaterialCommand) (model.Material, error)
	BulkUpdate(ctx context.Context, caller model.Caller, cmd model.BulkUpdateCommand) (model.BulkUpdateResult, error)
	SetFeatured(ctx context.Context, caller model.Caller, id uuid.UUID, featured bool) (model.Material, error)
	DeleteMaterial(ctx context.Context, caller model.Caller, id uuid.UUID) error
	GetMaterial(ctx context.Context, id uuid.UUID) (model.Material, error)
	MaterialPreviewURL(ctx context.Context, id uuid.UUID) (string, error)
	ListMaterials(ctx context.Context, cmd model.ListMaterialsCommand) (model.MaterialPage, error)
	ListUsers(ctx context.Context, cmd model.ListUsersCommand) (model.UserPage, error)
	PromoteUser(ctx context.Context, caller model.Caller, userID uuid.UUID) (model.User, error)
	DemoteUser(ctx context.Context, caller model.Caller, userID uuid.UUID) (model.User, error)
	MaterialStatistics(ctx context.Context) (model.MaterialStatistics, error)
	DashboardSnapshot(ctx context.Context) (model.DashboardSnapshot, error)
}

// Moderation handles gRPC endpoints of the moderation service.
type Moderation struct {
	moderation     ModerationService
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ ModerationServer = (*Moderation)(nil)

// NewModeration creates a new Moderation handler.
func NewModeration(moderation ModerationService, contextManager model.ContextManager, logger *logger.Logger) *Moderation {
	return &Moderation{
		moderation:     moderation,
		contextManager: contextManager,
		logger:         logger,
	}
}

type idRequest struct {
	ID string `json:"id"`
}

type approveRequest struct {
	ID string `json:"id"`
	dto.ApproveRequest
}

type rejectRequest struct {
	ID string `json:"id"`
	dto.RejectRequest
}

type featuredRequest struct {
	ID string `json:"id"`
	dto.FeaturedRequest
}

type messageResponse struct {
	Message string `json:"message"`
}

// respond encodes a successful result or converts err into a status.
func (h *Moderation) respond(method string, v any, err error) (*structpb.Struct, error) {
	if err != nil {
		if model.KindOf(err) == model.KindUnavailable || model.KindOf(err) == model.KindUnknown {
			h.logger.Error("Moderation handler: request failed",
				"method", method,
				"error", err.Error())
		}
		return nil, ToStatus(err)
	}
	out, err := encode(v)
	if err != nil {
		h.logger.Error("Moderation handler: failed to encode response",
			"method", method,
			"error", err.Error())
		return nil, ToStatus(err)
	}
	return out, nil
}

func (h *Moderation) callerFromContext(ctx context.Context) (model.Caller, error) {
	caller, ok := h.contextManager.GetCallerFromContext(ctx)
	if !ok {
		return model.Caller{}, model.NewErrUnauthenticated("missing caller")
	}
	return caller, nil
}

// decodeID decodes a request carrying only an id.
func decodeID(in *structpb.Struct) (uuid.UUID, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return uuid.Nil, err
	}
	return dto.ParseID("id", req.ID)
}

func (h *Moderation) GetDashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	snapshot, err := h.moderation.DashboardSnapshot(ctx)
	return h.respond(MethodGetDashboard, dto.FromDashboard(snapshot), err)
}

func (h *Moderation) GetStatistics(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	stats, err := h.moderation.MaterialStatistics(ctx)
	return h.respond(MethodGetStatistics, stats, err)
}

// ListMaterials accepts status, search, page, limit, sortBy and sortOrder.
func (h *Moderation) ListMaterials(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var cmd model.ListMaterialsCommand
	if err := decode(in, &cmd); err != nil {
		return h.respond(MethodListMaterials, nil, err)
	}
	page, err := h.moderation.ListMaterials(ctx, cmd)
	return h.respond(MethodListMaterials, dto.FromMaterialPage(page), err)
}

func (h *Moderation) GetMaterial(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeID(in)
	if err != nil {
		return h.respond(MethodGetMaterial, nil, err)
	}
	material, err := h.moderation.GetMaterial(ctx, id)
	return h.respond(MethodGetMaterial, dto.FromMaterial(material), err)
}

func (h *Moderation) GetMaterialPreview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeID(in)
	if err != nil {
		return h.respond(MethodGetMaterialPreview, nil, err)
	}
	url, err := h.moderation.MaterialPreviewURL(ctx, id)
	return h.respond(MethodGetMaterialPreview, dto.Preview{URL: url}, err)
}

func (h *Moderation) ApproveMaterial(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodApproveMaterial, nil, err)
	}
	var req approveRequest
	if err := decode(in, &req); err != nil {
		return h.respond(MethodApproveMaterial, nil, err)
	}
	id, err := dto.ParseID("id", req.ID)
	if err != nil {
		return h.respond(MethodApproveMaterial, nil, err)
	}

	material, err := h.moderation.ApproveMaterial(ctx, caller, model.ApproveMaterialCommand{
		MaterialID: id,
		AdminNotes: req.AdminNotes,
	})
	return h.respond(MethodApproveMaterial, dto.FromMaterial(material), err)
}

func (h *Moderation) RejectMaterial(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodRejectMaterial, nil, err)
	}
	var req rejectRequest
	if err := decode(in, &req); err != nil {
		return h.respond(MethodRejectMaterial, nil, err)
	}
	id, err := dto.ParseID("id", req.ID)
	if err != nil {
		return h.respond(MethodRejectMaterial, nil, err)
	}

	material, err := h.moderation.RejectMaterial(ctx, caller, model.RejectMaterialCommand{
		MaterialID: id,
		Reason:     req.Reason,
	})
	return h.respond(MethodRejectMaterial, dto.FromMaterial(material), err)
}

func (h *Moderation) BulkUpdateMaterials(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodBulkUpdateMaterials, nil, err)
	}
	var req dto.BulkRequest
	if err := decode(in, &req); err != nil {
		return h.respond(MethodBulkUpdateMaterials, nil, err)
	}
	cmd, err := req.Command()
	if err != nil {
		return h.respond(MethodBulkUpdateMaterials, nil, err)
	}

	result, err := h.moderation.BulkUpdate(ctx, caller, cmd)
	return h.respond(MethodBulkUpdateMaterials, result, err)
}

func (h *Moderation) SetMaterialFeatured(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodSetMaterialFeatured, nil, err)
	}
	var req featuredRequest
	if err := decode(in, &req); err != nil {
		return h.respond(MethodSetMaterialFeatured, nil, err)
	}
	id, err := dto.ParseID("id", req.ID)
	if err != nil {
		return h.respond(MethodSetMaterialFeatured, nil, err)
	}
	featured, err := req.Value()
	if err != nil {
		return h.respond(MethodSetMaterialFeatured, nil, err)
	}

	material, err := h.moderation.SetFeatured(ctx, caller, id, featured)
	return h.respond(MethodSetMaterialFeatured, dto.FromMaterial(material), err)
}

func (h *Moderation) DeleteMaterial(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodDeleteMaterial, nil, err)
	}
	id, err := decodeID(in)
	if err != nil {
		return h.respond(MethodDeleteMaterial, nil, err)
	}

	err = h.moderation.DeleteMaterial(ctx, caller, id)
	return h.respond(MethodDeleteMaterial, messageResponse{Message: "material deleted"}, err)
}

// ListUsers accepts search, role, page and limit.
func (h *Moderation) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var cmd model.ListUsersCommand
	if err := decode(in, &cmd); err != nil {
		return h.respond(MethodListUsers, nil, err)
	}
	page, err := h.moderation.ListUsers(ctx, cmd)
	return h.respond(MethodListUsers, dto.FromUserPage(page), err)
}

func (h *Moderation) PromoteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodPromoteUser, nil, err)
	}
	id, err := decodeID(in)
	if err != nil {
		return h.respond(MethodPromoteUser, nil, err)
	}

	user, err := h.moderation.PromoteUser(ctx, caller, id)
	return h.respond(MethodPromoteUser, dto.FromRoleChange(user), err)
}

func (h *Moderation) DemoteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	caller, err := h.callerFromContext(ctx)
	if err != nil {
		return h.respond(MethodDemoteUser, nil, err)
	}
	id, err := decodeID(in)
	if err != nil {
		return h.respond(MethodDemoteUser, nil, err)
	}

	user, err := h.moderation.DemoteUser(ctx, caller, id)
	return h.respond(MethodDemoteUser, dto.FromRoleChange(user), err)
}
