// Package remotestore declares the gRPC contract between the offline client
// and the remote authoritative store. Messages are protobuf well-known types
// (Struct, StringValue, Empty), so the service needs no generated code:
// the descriptor, client stub and handlers below follow the shape
// protoc-gen-go-grpc would emit.
//
// Methods
//
//	UpsertRecord(Struct{id, fields}) -> Empty         idempotent by id
//	FindUser(StringValue{username})  -> Struct{user}  NotFound when absent
//	CreateUser(Struct{user})         -> Empty         AlreadyExists on duplicate username
//
// Reachability is probed with the standard grpc.health.v1 service using
// ServiceName.
package remotestore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "offsync.remotestore.v1.RemoteStore"

const (
	UpsertRecordFullMethodName = "/" + ServiceName + "/UpsertRecord"
	FindUserFullMethodName     = "/" + ServiceName + "/FindUser"
	CreateUserFullMethodName   = "/" + ServiceName + "/CreateUser"
)

// Server is implemented by the remote store.
type Server interface {
	UpsertRecord(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	FindUser(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// Client is the client-side stub.
type Client interface {
	UpsertRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	FindUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc: cc}
}

func (c *client) UpsertRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, UpsertRecordFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) FindUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FindUserFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, CreateUserFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterServer attaches srv to a gRPC server.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

func upsertRecordHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).UpsertRecord(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UpsertRecordFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).UpsertRecord(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func findUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).FindUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FindUserFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).FindUser(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func createUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).CreateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateUserFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).CreateUser(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the remote store.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UpsertRecord", Handler: upsertRecordHandler},
		{MethodName: "FindUser", Handler: findUserHandler},
		{MethodName: "CreateUser", Handler: createUserHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "offsync/remotestore/v1",
}
