// Package worker exposes system evaluation over gRPC so the optimizer can
// spread per-system evaluations over remote processes, plus an HTTP
// surface for health checks and Prometheus scraping.
//
// Messages are google.protobuf.Struct values:
//
//	request:  {"system": "h2", "parameters": {"De": 4.5, "a": 1.2}}
//	response: {"observables": {"energy": [0.1, 0.2]}}
package worker

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ffoptimum.evaluation.v1.Evaluation"

const evaluateSystemMethod = "/" + ServiceName + "/EvaluateSystem"

// ErrMalformedMessage is returned when a message does not have the expected shape.
var ErrMalformedMessage = errors.New("malformed message")

// EvaluationServer is the server API for the evaluation service.
type EvaluationServer interface {
	EvaluateSystem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterEvaluationServer registers srv on s.
func RegisterEvaluationServer(s grpc.ServiceRegistrar, srv EvaluationServer) {
	s.RegisterService(&evaluationServiceDesc, srv)
}

var evaluationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "EvaluateSystem", Handler: evaluateSystemHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ffoptimum/evaluation/v1/evaluation.proto",
}

func evaluateSystemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluationServer).EvaluateSystem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateSystemMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EvaluationServer).EvaluateSystem(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// NewRequest builds an EvaluateSystem request.
func NewRequest(system string, params map[string]float64) (*structpb.Struct, error) {
	p := make(map[string]any, len(params))
	for k, v := range params {
		p[k] = v
	}
	return structpb.NewStruct(map[string]any{
		"system":     system,
		"parameters": p,
	})
}

// ParseRequest extracts the system name and parameter map of a request.
func ParseRequest(req *structpb.Struct) (string, map[string]float64, error) {
	fields := req.GetFields()
	system := fields["system"].GetStringValue()
	if system == "" {
		return "", nil, fmt.Errorf("%w: system is required", ErrMalformedMessage)
	}
	raw := fields["parameters"].GetStructValue().GetFields()
	params := make(map[string]float64, len(raw))
	for name, v := range raw {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return "", nil, fmt.Errorf("%w: parameter %s is not a number", ErrMalformedMessage, name)
		}
		params[name] = n.NumberValue
	}
	return system, params, nil
}

// NewResponse builds an EvaluateSystem response.
func NewResponse(observables map[string][]float64) (*structpb.Struct, error) {
	obs := make(map[string]any, len(observables))
	for name, series := range observables {
		list := make([]any, len(series))
		for i, v := range series {
			list[i] = v
		}
		obs[name] = list
	}
	return structpb.NewStruct(map[string]any{"observables": obs})
}

// ParseResponse extracts the observable series of a response.
func ParseResponse(resp *structpb.Struct) (map[string][]float64, error) {
	raw := resp.GetFields()["observables"].GetStructValue()
	if raw == nil {
		return nil, fmt.Errorf("%w: observables are missing", ErrMalformedMessage)
	}
	out := make(map[string][]float64, len(raw.GetFields()))
	for name, v := range raw.GetFields() {
		list := v.GetListValue()
		if list == nil {
			return nil, fmt.Errorf("%w: observable %s is not a list", ErrMalformedMessage, name)
		}
		series := make([]float64, len(list.GetValues()))
		for i, item := range list.GetValues() {
			n, ok := item.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return nil, fmt.Errorf("%w: observable %s has a non-number", ErrMalformedMessage, name)
			}
			series[i] = n.NumberValue
		}
		out[name] = series
	}
	return out, nil
}
