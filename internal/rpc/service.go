// Package rpc exposes the chart builder over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes the HTTP API
// returns, so the service needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "stockviz.v1.Charts"

const (
	buildChartMethod = "/" + ServiceName + "/BuildChart"
	calculateMethod  = "/" + ServiceName + "/Calculate"
)

// ChartsServer is the server API for the Charts service.
type ChartsServer interface {
	// BuildChart takes {kind, ticker, year} and returns a chart result.
	BuildChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Calculate takes {ticker, start, end, amount} and returns the
	// calculation with its display strings.
	Calculate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterChartsServer registers srv on s.
func RegisterChartsServer(s grpc.ServiceRegistrar, srv ChartsServer) {
	s.RegisterService(&chartsServiceDesc, srv)
}

var chartsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChartsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BuildChart", Handler: buildChartHandler},
		{MethodName: "Calculate", Handler: calculateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockviz/v1/charts.proto",
}

func buildChartHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartsServer).BuildChart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: buildChartMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartsServer).BuildChart(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func calculateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartsServer).Calculate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: calculateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartsServer).Calculate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
