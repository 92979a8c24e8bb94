// Package grpc exposes the remote store over gRPC, together with the
// standard health service that clients use as their connectivity probe.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/rpc/remotestore"
	"github.com/dmitrijs2005/offsync/internal/server/models"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Store is the business layer behind the RPCs.
type Store interface {
	UpsertRecord(ctx context.Context, id string, fields map[string]string) error
	FindUser(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// RPCRecorder receives one observation per finished call.
type RPCRecorder interface {
	RecordRPC(method string, code string, d time.Duration)
}

type GRPCServer struct {
	address string
	store   Store
	logger  logging.Logger
	metrics RPCRecorder
	limiter *rate.Limiter
	health  *health.Server
}

type Option func(*GRPCServer)

func WithMetrics(r RPCRecorder) Option {
	return func(s *GRPCServer) { s.metrics = r }
}

// WithRateLimit caps remote store calls at limit requests per second with
// the given burst. A non-positive limit disables throttling.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *GRPCServer) {
		if limit <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

func NewGRPCServer(address string, l logging.Logger, store Store, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address: address,
		store:   store,
		logger:  l.With("module", "grpc_server"),
		health:  health.NewServer(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.rateLimitInterceptor))

	remotestore.RegisterServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)

	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	s.health.SetServingStatus(remotestore.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
