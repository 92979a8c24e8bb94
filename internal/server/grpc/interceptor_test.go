package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/rpc/remotestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func okHandler(ctx context.Context, req any) (any, error) { return "ok", nil }

func TestRateLimitInterceptor(t *testing.T) {
	s := newTestServer(newFakeStore(), WithRateLimit(0.0001, 1))
	info := &grpc.UnaryServerInfo{FullMethod: remotestore.UpsertRecordFullMethodName}

	resp, err := s.rateLimitInterceptor(context.Background(), nil, info, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = s.rateLimitInterceptor(context.Background(), nil, info, okHandler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRateLimitInterceptor_HealthExempt(t *testing.T) {
	s := newTestServer(newFakeStore(), WithRateLimit(0.0001, 1))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	for range 5 {
		_, err := s.rateLimitInterceptor(context.Background(), nil, info, okHandler)
		require.NoError(t, err)
	}
}

func TestRateLimitInterceptor_Disabled(t *testing.T) {
	s := newTestServer(newFakeStore(), WithRateLimit(0, 10))
	assert.Nil(t, s.limiter)

	info := &grpc.UnaryServerInfo{FullMethod: remotestore.FindUserFullMethodName}
	for range 100 {
		_, err := s.rateLimitInterceptor(context.Background(), nil, info, okHandler)
		require.NoError(t, err)
	}
}

func TestLoggingInterceptor_RecordsMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestServer(newFakeStore(), WithMetrics(rec))
	info := &grpc.UnaryServerInfo{FullMethod: remotestore.FindUserFullMethodName}

	_, err := s.loggingInterceptor(context.Background(), nil, info, okHandler)
	require.NoError(t, err)

	failing := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "not found")
	}
	_, err = s.loggingInterceptor(context.Background(), nil, info, failing)
	require.Error(t, err)

	plain := func(ctx context.Context, req any) (any, error) { return nil, errors.New("boom") }
	_, _ = s.loggingInterceptor(context.Background(), nil, info, plain)

	assert.Equal(t, []rpcCall{
		{remotestore.FindUserFullMethodName, "OK"},
		{remotestore.FindUserFullMethodName, "NotFound"},
		{remotestore.FindUserFullMethodName, "Unknown"},
	}, rec.calls)
}
