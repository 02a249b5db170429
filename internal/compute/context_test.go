package compute

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccelerator struct {
	initErr  error
	closeErr error
	ops      Op
	inits    int
	closes   int
}

func (m *mockAccelerator) Name() string { return "mock" }
func (m *mockAccelerator) Init() error { m.inits++; return m.initErr }
func (m *mockAccelerator) Close() error { m.closes++; return m.closeErr }
func (m *mockAccelerator) CanAccelerate(op Op) bool { return m.ops&op != 0 }

func TestNewContextInitializesAccelerator(t *testing.T) {
	acc := &mockAccelerator{ops: OpSample}
	c, err := NewContext(WithWorkers(3), WithAccelerator(acc))
	require.NoError(t, err)
	assert.Equal(t, 1, acc.inits)
	assert.Equal(t, 3, c.Workers())

	got, ok := c.Accelerator(OpSample)
	assert.True(t, ok)
	assert.Same(t, acc, got)
	_, ok = c.Accelerator(OpTransform)
	assert.False(t, ok)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, acc.closes)
	_, ok = c.Accelerator(OpSample)
	assert.False(t, ok)
}

func TestNewContextResourceInitFailure(t *testing.T) {
	acc := &mockAccelerator{initErr: errors.New("no device"), ops: OpSample}
	c, err := NewContext(WithAccelerator(acc))
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrResourceInit)

	c = NewContextOrCPU(WithWorkers(2), WithAccelerator(acc))
	require.NotNil(t, c)
	assert.Equal(t, 2, c.Workers())
	_, ok := c.Accelerator(OpSample)
	assert.False(t, ok)
}

func TestCloseReportsAcceleratorError(t *testing.T) {
	failure := errors.New("leak")
	c, err := NewContext(WithAccelerator(&mockAccelerator{closeErr: failure}))
	require.NoError(t, err)
	assert.ErrorIs(t, c.Close(), failure)
}

func TestNilContext(t *testing.T) {
	var c *Context
	assert.Equal(t, 1, c.Workers())
	_, ok := c.Accelerator(OpSample)
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestParallelForCoversRange(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		c, err := NewContext(WithWorkers(workers))
		require.NoError(t, err)

		for _, n := range []int{0, 1, 7, 1000} {
			seen := make([]int32, n)
			err := ParallelFor(context.Background(), c, n, func(lo, hi int) error {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&seen[i], 1)
				}
				return nil
			})
			require.NoError(t, err)
			for i, v := range seen {
				require.Equalf(t, int32(1), v, "index %d visited %d times with %d workers", i, v, workers)
			}
		}
	}
}

func TestParallelForError(t *testing.T) {
	c, err := NewContext(WithWorkers(4))
	require.NoError(t, err)

	failure := errors.New("kernel failed")
	err = ParallelFor(context.Background(), c, 100, func(lo, hi int) error {
		if lo == 0 {
			return failure
		}
		return nil
	})
	assert.ErrorIs(t, err, failure)
}

func TestParallelForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	calls := 0
	err := ParallelFor(ctx, nil, 10, func(lo, hi int) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "sample", OpSample.String())
	assert.Equal(t, "mesh-index", OpMeshIndex.String())
	assert.Equal(t, "op(64)", Op(64).String())
}
