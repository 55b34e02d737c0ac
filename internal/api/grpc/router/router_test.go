package router

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	apicontext "github.com/dtroode/academia-moderation/internal/api/context"
	"github.com/dtroode/academia-moderation/internal/api/grpc/handler"
	"github.com/dtroode/academia-moderation/internal/model"
	"github.com/dtroode/academia-moderation/internal/repository/memory"
	"github.com/dtroode/academia-moderation/internal/service"
	"github.com/dtroode/academia-moderation/internal/testutil"
	"github.com/dtroode/academia-moderation/internal/token"
	"github.com/dtroode/academia-moderation/internal/validation"
)

type testServer struct {
	router    *Router
	conn      *grpc.ClientConn
	materials *memory.MaterialRepository
	users     *memory.UserRepository
	tokens    *token.JWT
	admin     model.User
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, pinger Pinger) *testServer {
	t.Helper()

	db := memory.NewDB()
	lg := testutil.MakeNoopLogger()
	ts := &testServer{
		materials: memory.NewMaterialRepository(db),
		users:     memory.NewUserRepository(db),
		tokens:    token.NewJWT("test-secret", "academia-stacks", time.Minute),
	}
	if pinger == nil {
		pinger = db
	}

	moderation := service.NewModeration(ts.materials, ts.users, db, nil, validation.New(), lg, service.ModerationConfig{})
	identity := service.NewIdentity(ts.users, ts.tokens, lg)
	ts.router = New(moderation, identity, pinger, apicontext.NewManager(), true, lg)

	s, err := ts.router.Register()
	require.NoError(t, err)

	ln := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(s.Stop)

	ts.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return ln.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { ts.conn.Close() })

	ts.admin, err = ts.users.Create(context.Background(), model.User{Name: "Admin", Email: "admin@x.com", IsAdmin: true, IsVerified: true})
	require.NoError(t, err)
	return ts
}

func (ts *testServer) withToken(t *testing.T, u model.User) context.Context {
	t.Helper()
	tok, err := ts.tokens.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func (ts *testServer) invoke(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := ts.conn.Invoke(ctx, handler.FullMethod(method), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func TestRouter_Authentication(t *testing.T) {
	ts := newTestServer(t, nil)
	student, err := ts.users.Create(context.Background(), model.User{Name: "Student", Email: "s@x.com"})
	require.NoError(t, err)

	_, err = ts.invoke(context.Background(), handler.MethodGetStatistics, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	forged := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer forged")
	_, err = ts.invoke(forged, handler.MethodGetStatistics, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = ts.invoke(ts.withToken(t, student), handler.MethodGetStatistics, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err := ts.invoke(ts.withToken(t, ts.admin), handler.MethodGetStatistics, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(0), out.GetFields()["total"].GetNumberValue())
}

func TestRouter_ApproveThroughChain(t *testing.T) {
	ts := newTestServer(t, nil)
	m, err := ts.materials.Create(context.Background(), model.Material{
		Subject: "Digital Logic", Semester: 3, Type: model.MaterialTypeNotes, Status: model.MaterialStatusPending,
	})
	require.NoError(t, err)

	ctx := ts.withToken(t, ts.admin)
	out, err := ts.invoke(ctx, handler.MethodApproveMaterial, map[string]any{"id": m.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "verified", out.GetFields()["status"].GetStringValue())
	assert.Equal(t, ts.admin.Email, out.GetFields()["verifiedByAdmin"].GetStringValue())

	_, err = ts.invoke(ctx, handler.MethodApproveMaterial, map[string]any{"id": m.ID.String()})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = ts.invoke(ctx, handler.MethodDemoteUser, map[string]any{"id": ts.admin.ID.String()})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRouter_HealthIsPublic(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.router.CheckHealth(context.Background())

	resp, err := healthpb.NewHealthClient(ts.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: handler.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestRouter_HealthReportsStoreDown(t *testing.T) {
	ts := newTestServer(t, stubPinger{err: errors.New("connection refused")})
	ts.router.CheckHealth(context.Background())

	resp, err := healthpb.NewHealthClient(ts.conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestRouter_WatchHealthStopsWithContext(t *testing.T) {
	ts := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ts.router.WatchHealth(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := healthpb.NewHealthClient(ts.conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health watcher did not stop")
	}
}

func TestRouter_Reflection(t *testing.T) {
	ts := newTestServer(t, nil)

	stream, err := reflectionpb.NewServerReflectionClient(ts.conn).ServerReflectionInfo(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{ListServices: ""},
	}))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.NoError(t, stream.CloseSend())

	var names []string
	for _, s := range resp.GetListServicesResponse().GetService() {
		names = append(names, s.GetName())
	}
	assert.Contains(t, names, handler.ServiceName)
	assert.Contains(t, names, "grpc.health.v1.Health")
}
