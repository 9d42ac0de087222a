package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
)

// GRPCServer implements EvaluationServer on top of a local Runner.
type GRPCServer struct {
	runner      evaluator.Runner
	instruments *metrics.Instruments
	logger      *slog.Logger
}

// NewGRPCServer creates a server evaluating systems with runner. ins may be nil.
func NewGRPCServer(runner evaluator.Runner, ins *metrics.Instruments, l *slog.Logger) *GRPCServer {
	if l == nil {
		l = logger.Default
	}
	return &GRPCServer{runner: runner, instruments: ins, logger: l}
}

// EvaluateSystem evaluates one system for the requested parameters.
func (s *GRPCServer) EvaluateSystem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	system, params, err := ParseRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	start := time.Now()
	out, err := s.runner.RunSystem(ctx, system, params)
	if s.instruments != nil {
		s.instruments.ObserveEvaluation(system, time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn("system evaluation failed", "system", system, "error", err)
		switch {
		case errors.Is(err, evaluator.ErrUnknownSystem):
			return nil, status.Error(codes.NotFound, err.Error())
		case errors.Is(err, evaluator.ErrMissingParameter):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case errors.Is(err, context.Canceled):
			return nil, status.Error(codes.Canceled, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return nil, status.Error(codes.DeadlineExceeded, err.Error())
		default:
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	resp, err := NewResponse(out)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Debug("system evaluated", "system", system, "observables", len(out), "duration", time.Since(start))
	return resp, nil
}
