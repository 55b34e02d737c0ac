package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/academia-moderation/internal/api/grpc/handler"
	"github.com/dtroode/academia-moderation/internal/api/grpc/middleware"
	"github.com/dtroode/academia-moderation/internal/logger"
	metricsgrpc "github.com/dtroode/academia-moderation/internal/metrics/grpc"
	"github.com/dtroode/academia-moderation/internal/model"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router represents the gRPC router of the moderation service.
// It manages service registration and interceptor configuration.
type Router struct {
	moderation     handler.ModerationService
	authenticator  middleware.Authenticator
	pinger         Pinger
	contextManager model.ContextManager
	reflection     bool
	logger         *logger.Logger
	health         *health.Server
}

// New creates new gRPC Router instance.
// It initializes a gRPC router around the moderation and identity services.
//
// Parameters:
//   - moderation: The moderation service
//   - authenticator: Resolves bearer tokens into admin callers
//   - pinger: The store whose health is reported by the health service
//   - contextManager: Stores the authenticated caller in request contexts
//   - reflection: Whether to register the reflection service
//   - logger: The logger for request logging
//
// Returns a pointer to the newly created Router instance.
func New(
	moderation handler.ModerationService,
	authenticator middleware.Authenticator,
	pinger Pinger,
	contextManager model.ContextManager,
	reflection bool,
	logger *logger.Logger,
) *Router {
	return &Router{
		moderation:     moderation,
		authenticator:  authenticator,
		pinger:         pinger,
		contextManager: contextManager,
		reflection:     reflection,
		logger:         logger,
		health:         health.NewServer(),
	}
}

// authRequired matches moderation methods; health and reflection stay public.
func authRequired(_ context.Context, c interceptors.CallMeta) bool {
	return strings.HasPrefix(c.FullMethod(), "/"+handler.ServiceName+"/")
}

func (r *Router) handlePanic(_ context.Context, p any) error {
	r.logger.Error("gRPC handler panicked", "panic", p)
	return status.Error(codes.Internal, "internal server error")
}

// Register registers all gRPC services and interceptors.
// It sets up the gRPC server with logging, metrics, recovery and
// authentication interceptors, the health service and, when enabled,
// reflection.
//
// Returns the configured gRPC server instance, or an error when the
// moderation service descriptor cannot be registered.
func (r *Router) Register() (*grpc.Server, error) {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authenticator, r.contextManager, r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(r.handlePanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			metricsgrpc.UnaryServerInterceptor(),
			recovery.UnaryServerInterceptor(recoveryOpt),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authRequired),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authRequired),
			),
		),
	)

	moderationHandler := handler.NewModeration(r.moderation, r.contextManager, r.logger)
	if err := handler.RegisterModerationServer(s, moderationHandler); err != nil {
		return nil, fmt.Errorf("failed to register moderation service: %w", err)
	}
	healthpb.RegisterHealthServer(s, r.health)
	if r.reflection {
		reflection.Register(s)
	}

	return s, nil
}

// CheckHealth pings the store and publishes the result to the health service.
//
// Parameters:
//   - ctx: Bounds the store ping
func (r *Router) CheckHealth(ctx context.Context) {
	serving := healthpb.HealthCheckResponse_SERVING
	if err := r.pinger.Ping(ctx); err != nil {
		r.logger.Warn("gRPC health: store ping failed", "error", err.Error())
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}
	r.health.SetServingStatus("", serving)
	r.health.SetServingStatus(handler.ServiceName, serving)
}

// WatchHealth runs CheckHealth every interval until ctx is done, then marks
// all services as not serving.
//
// Parameters:
//   - ctx: Stops the watch when done
//   - interval: The time between store pings
func (r *Router) WatchHealth(ctx context.Context, interval time.Duration) {
	r.CheckHealth(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.health.Shutdown()
			return
		case <-ticker.C:
			r.CheckHealth(ctx)
		}
	}
}
