package grpc

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/academia-moderation/internal/metrics"
)

func TestUnaryServerInterceptor(t *testing.T) {
	interceptor := UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

	ok := metrics.RequestsTotal.WithLabelValues("grpc", info.FullMethod, "OK")
	notFound := metrics.RequestsTotal.WithLabelValues("grpc", info.FullMethod, "NotFound")
	beforeOK, beforeNotFound := testutil.ToFloat64(ok), testutil.ToFloat64(notFound)

	resp, err := interceptor(context.Background(), "req", info, func(context.Context, interface{}) (interface{}, error) {
		return "resp", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "resp", resp)

	_, err = interceptor(context.Background(), "req", info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	assert.Error(t, err)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeNotFound+1, testutil.ToFloat64(notFound))
}
