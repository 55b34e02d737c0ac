package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/dtroode/academia-moderation/internal/metrics"
)

// UnaryServerInterceptor records request counts and latencies per method.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		metrics.RecordRequest("grpc", info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
