package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMapPreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	got, err := Map(context.Background(), New(3), items, func(_ context.Context, i, v int) (int, error) {
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50, 10, 40, 20, 30}, got)
}

func TestMapRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 20)
	_, err := Map(context.Background(), New(2), items, func(context.Context, int, int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestMapReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	got, err := Map(context.Background(), New(4), []int{1, 2, 3}, func(ctx context.Context, i, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	_, err := Map(ctx, New(1), []int{1, 2, 3}, func(context.Context, int, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestMapEmpty(t *testing.T) {
	got, err := Map(context.Background(), New(0), nil, func(context.Context, int, int) (int, error) {
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.GreaterOrEqual(t, New(0).Limit(), 1)
}
