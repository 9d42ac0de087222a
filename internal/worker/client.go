package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
)

// ErrNoWorkers is returned when a client is created without addresses.
var ErrNoWorkers = errors.New("no worker addresses")

// Client evaluates systems on remote workers, picking connections round-robin.
// It implements evaluator.Runner and is safe for concurrent use.
type Client struct {
	conns []*grpc.ClientConn
	next  atomic.Uint64
}

// NewClient connects to every address. Without options, connections use
// insecure transport credentials.
func NewClient(addrs []string, opts ...grpc.DialOption) (*Client, error) {
	if len(addrs) == 0 {
		return nil, ErrNoWorkers
	}
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	c := &Client{}
	for _, addr := range addrs {
		conn, err := grpc.NewClient(addr, opts...)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connect to worker %s: %w", addr, err)
		}
		c.conns = append(c.conns, conn)
	}
	return c, nil
}

// RunSystem implements evaluator.Runner.
func (c *Client) RunSystem(ctx context.Context, system string, params map[string]float64) (map[string][]float64, error) {
	req, err := NewRequest(system, params)
	if err != nil {
		return nil, err
	}
	conn := c.conns[(c.next.Add(1)-1)%uint64(len(c.conns))]

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, evaluateSystemMethod, req, resp); err != nil {
		return nil, fromStatus(system, conn.Target(), err)
	}
	return ParseResponse(resp)
}

// Close closes every connection.
func (c *Client) Close() error {
	var errs []error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fromStatus maps a gRPC status back onto the evaluator sentinels.
func fromStatus(system, target string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("worker %s: %w", target, err)
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("worker %s: %w: %s", target, evaluator.ErrUnknownSystem, system)
	case codes.Canceled:
		return fmt.Errorf("worker %s: %w", target, context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("worker %s: %w", target, context.DeadlineExceeded)
	default:
		return fmt.Errorf("worker %s: %s: %s", target, st.Code(), st.Message())
	}
}
