package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "fundmetrics.v1.FundMetricsService"

// FundMetricsServiceServer is the server API of FundMetricsService.
// Every message is a google.protobuf.Struct holding the JSON shape of a dto type.
type FundMetricsServiceServer interface {
	CreateFund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordCashFlow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordValuation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFundMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolioSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(FundMetricsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FundMetricsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FundMetricsServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FundMetricsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateFund", FundMetricsServiceServer.CreateFund),
		unary("RecordCashFlow", FundMetricsServiceServer.RecordCashFlow),
		unary("RecordValuation", FundMetricsServiceServer.RecordValuation),
		unary("GetFundMetrics", FundMetricsServiceServer.GetFundMetrics),
		unary("GetPortfolioSummary", FundMetricsServiceServer.GetPortfolioSummary),
		unary("CalculateMetrics", FundMetricsServiceServer.CalculateMetrics),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fundmetrics/v1/fundmetrics.proto",
}

// RegisterFundMetricsServiceServer registers srv on s
func RegisterFundMetricsServiceServer(s grpc.ServiceRegistrar, srv FundMetricsServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// decodeStruct unmarshals a Struct message into a dto value
func decodeStruct(in *structpb.Struct, dst interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

// encodeStruct marshals a dto value into a Struct message
func encodeStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}
