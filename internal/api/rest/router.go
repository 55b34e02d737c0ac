package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/metrics"
	metricsgin "github.com/dtroode/academia-moderation/internal/metrics/gin"
	"github.com/dtroode/academia-moderation/internal/model"
)

// ModerationService defines the admin operations served over HTTP.
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

// Authenticator resolves bearer tokens into admin callers.
type Authenticator interface {
	AuthenticateAdmin(ctx context.Context, token string) (model.Caller, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router builds the gin engine of the admin HTTP API.
type Router struct {
	moderation     ModerationService
	authenticator  Authenticator
	pinger         Pinger
	contextManager model.ContextManager
	allowedOrigins []string
	logger         *logger.Logger
}

func New(
	moderation ModerationService,
	authenticator Authenticator,
	pinger Pinger,
	contextManager model.ContextManager,
	allowedOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		moderation:     moderation,
		authenticator:  authenticator,
		pinger:         pinger,
		contextManager: contextManager,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Register wires middleware and routes into a new engine.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()
	engine.Use(
		Recovery(r.logger),
		Logging(r.logger),
		metricsgin.PrometheusMiddleware(),
		cors.New(r.corsConfig()),
	)

	engine.GET("/healthz", r.healthz)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	h := &handler{moderation: r.moderation, contextManager: r.contextManager, logger: r.logger}

	admin := engine.Group("/api/admin", Authenticate(r.authenticator, r.contextManager))
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/statistics", h.statistics)

	materials := admin.Group("/materials")
	materials.GET("", h.listMaterials)
	materials.PATCH("/bulk", h.bulkUpdate)
	materials.GET("/:id", h.getMaterial)
	materials.GET("/:id/preview", h.previewMaterial)
	materials.PATCH("/:id/approve", h.approveMaterial)
	materials.PATCH("/:id/reject", h.rejectMaterial)
	materials.PATCH("/:id/featured", h.setFeatured)
	materials.DELETE("/:id", h.deleteMaterial)

	users := admin.Group("/users")
	users.GET("", h.listUsers)
	users.PATCH("/:id/promote", h.promoteUser)
	users.PATCH("/:id/demote", h.demoteUser)

	return engine
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(r.allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = r.allowedOrigins
	return cfg
}

func (r *Router) healthz(c *gin.Context) {
	if err := r.pinger.Ping(c.Request.Context()); err != nil {
		r.logger.Error("HTTP healthz: store ping failed", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, envelope{Message: "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "ok"})
}
