package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/rpc/remotestore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// healthChecker is the part of healthpb.HealthClient used for probing.
type healthChecker interface {
	Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      remotestore.Client
	health      healthChecker
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = remotestore.NewClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) UpsertRecord(ctx context.Context, id string, fields map[string]string) error {
	req, err := remotestore.RecordMessage(id, fields)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	if _, err := s.client.UpsertRecord(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) FindUserByUsername(ctx context.Context, username string) (*models.UserCredential, error) {
	resp, err := s.client.FindUser(ctx, wrapperspb.String(username))
	if err != nil {
		return nil, s.mapError(err)
	}

	u, err := remotestore.ParseUserMessage(resp)
	if err != nil {
		return nil, fmt.Errorf("rpc error: %w", err)
	}
	return &models.UserCredential{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}, nil
}

func (s *GRPCClient) CreateUser(ctx context.Context, user *models.UserCredential) error {
	req, err := remotestore.UserMessage(remotestore.User{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	if _, err := s.client.CreateUser(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

// Ping asks the health service whether the remote store is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: remotestore.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.GetStatus())
	}
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorUsernameTaken
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
