package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/rpc/remotestore"
	"github.com/dmitrijs2005/offsync/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) UpsertRecord(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, fields, err := remotestore.ParseRecordMessage(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.store.UpsertRecord(ctx, id, fields); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Debug(ctx, "Record stored", "id", id)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) FindUser(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	user, err := s.store.FindUser(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := remotestore.UserMessage(remotestore.User{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return resp, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	u, err := remotestore.ParseUserMessage(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	err = s.store.CreateUser(ctx, &models.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", u.Username)
	return &emptypb.Empty{}, nil
}

// toStatus maps sentinel errors to status codes. Unknown errors are logged
// and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUsernameTaken):
		return status.Error(codes.AlreadyExists, "username already taken")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
