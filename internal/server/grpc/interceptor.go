package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/offsync/internal/rpc/remotestore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	d := time.Since(start)
	code := status.Code(err)

	if s.metrics != nil {
		s.metrics.RecordRPC(info.FullMethod, code.String(), d)
	}

	if err != nil && code != codes.NotFound {
		s.logger.Warn(ctx, "rpc finished with error", "method", info.FullMethod, "code", code.String(), "duration", d)
	} else {
		s.logger.Debug(ctx, "rpc finished", "method", info.FullMethod, "code", code.String(), "duration", d)
	}
	return resp, err
}

// rateLimitInterceptor throttles remote store methods only; health probes
// always pass.
func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter != nil && strings.HasPrefix(info.FullMethod, "/"+remotestore.ServiceName+"/") {
		if !s.limiter.Allow() {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
	}
	return handler(ctx, req)
}
