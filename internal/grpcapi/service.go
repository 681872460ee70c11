// Package grpcapi exposes the simulation as the buffon.v1.Simulation gRPC
// service. Messages are protobuf well-known types so no generated code is
// needed: requests are google.protobuf.Empty, responses google.protobuf.Struct.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName     = "buffon.v1.Simulation"
	statsFullMethod = "/" + serviceName + "/Stats"
	dropFullMethod  = "/" + serviceName + "/Drop"
	watchFullMethod = "/" + serviceName + "/Watch"
)

// SimulationServer is the server API for the Simulation service.
type SimulationServer interface {
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Drop(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Watch(*emptypb.Empty, grpc.ServerStream) error
}

// Register registers srv on s.
func Register(s grpc.ServiceRegistrar, srv SimulationServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SimulationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Stats", Handler: statsHandler},
		{MethodName: "Drop", Handler: dropHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "buffon/v1/simulation.proto",
}

func statsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: statsFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulationServer).Stats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func dropHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServer).Drop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: dropFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulationServer).Drop(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SimulationServer).Watch(in, stream)
}
