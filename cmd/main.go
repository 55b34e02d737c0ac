package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	apicontext "github.com/dtroode/academia-moderation/internal/api/context"
	"github.com/dtroode/academia-moderation/internal/api/grpc/router"
	grpcServer "github.com/dtroode/academia-moderation/internal/api/grpc/server"
	"github.com/dtroode/academia-moderation/internal/api/rest"
	"github.com/dtroode/academia-moderation/internal/config"
	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/model"
	"github.com/dtroode/academia-moderation/internal/repository/memory"
	"github.com/dtroode/academia-moderation/internal/repository/postgres"
	"github.com/dtroode/academia-moderation/internal/server"
	"github.com/dtroode/academia-moderation/internal/service"
	storage "github.com/dtroode/academia-moderation/internal/storage/minio"
	"github.com/dtroode/academia-moderation/internal/token"
	"github.com/dtroode/academia-moderation/internal/validation"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const healthInterval = 15 * time.Second

type store struct {
	materials  model.MaterialStore
	users      model.UserStore
	transactor model.Transactor
	pinger     interface{ Ping(ctx context.Context) error }
	close      func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogJSON)
	logAppVersion(logger)

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err, "driver", cfg.Database.Driver)
	}
	defer st.close()

	var objects model.Storage
	if cfg.Storage.Enabled {
		client, err := storage.Dial(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			logger.Fatal("failed to initialize object storage", "error", err)
		}
		objects = client
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	moderation := service.NewModeration(st.materials, st.users, st.transactor, objects,
		validation.New(), logger, service.ModerationConfig{
			TxTimeout:     cfg.Moderation.TxTimeout,
			PreviewExpiry: cfg.Moderation.PreviewExpiry,
		})
	identity := service.NewIdentity(st.users, tokenManager, logger)
	ctxMgr := apicontext.NewManager()

	if cfg.Database.Driver == config.DriverMemory {
		bootstrapMemoryAdmin(ctx, identity, cfg.Moderation.BootstrapAdminEmail, logger)
	}

	if cfg.LogLevel >= 0 {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := rest.New(moderation, identity, st.pinger, ctxMgr, cfg.CORS.AllowedOrigins, logger).Register()
	httpServer := rest.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	servers := []serverWithLayer{{
		server: httpServer,
		layer:  server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.KeyFileName),
	}}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.GRPC.Enabled {
		r := router.New(moderation, identity, st.pinger, ctxMgr, cfg.GRPC.Reflection, logger)
		s, err := r.Register()
		if err != nil {
			logger.Fatal("failed to register gRPC services", "error", err)
		}
		servers = append(servers, serverWithLayer{
			server: grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port)),
			layer:  server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName),
		})
		g.Go(func() error {
			r.WatchHealth(gctx, healthInterval)
			return nil
		})
	}

	for _, s := range servers {
		g.Go(func() error {
			logger.Info("Starting server on", "address", s.server.Address())
			if err := s.server.Start(s.layer); err != nil {
				return fmt.Errorf("server %s: %w", s.server.Address(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		for _, s := range servers {
			if err := s.server.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.server.Address())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

type serverWithLayer struct {
	server model.Server
	layer  model.SecurityLayer
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		db := memory.NewDB()
		return &store{
			materials:  memory.NewMaterialRepository(db),
			users:      memory.NewUserRepository(db),
			transactor: db,
			pinger:     db,
			close:      func() error { return nil },
		}, nil
	}

	db, err := postgres.NewConection(ctx, cfg.Database.DSN, cfg.Database.TxRetries)
	if err != nil {
		return nil, err
	}
	return &store{
		materials:  postgres.NewMaterialRepository(db),
		users:      postgres.NewUserRepository(db),
		transactor: db,
		pinger:     db,
		close:      db.Close,
	}, nil
}

// bootstrapMemoryAdmin seeds the empty memory store with an admin so the
// admin API is reachable in development.
func bootstrapMemoryAdmin(ctx context.Context, identity *service.Identity, email string, logger *logger.Logger) {
	if email == "" {
		logger.Warn("memory store has no users, set MODERATION_BOOTSTRAP_ADMIN_EMAIL to seed an admin")
		return
	}
	accessToken, err := identity.BootstrapAdmin(ctx, email)
	if err != nil {
		logger.Fatal("failed to bootstrap admin", "error", err, "email", email)
	}
	logger.Info("bootstrap admin ready", "email", email, "access_token", accessToken)
}

func logAppVersion(logger *logger.Logger) {
	logger.Info("academia moderation",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)
}
