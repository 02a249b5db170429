package compute

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Context carries the execution resources of the toolkit: the number of CPU
// workers and an optional accelerator. It is owned by the caller and may be
// shared by concurrent operations. A nil *Context runs everything sequentially on the CPU.
type Context struct {
	workers     int
	accelerator Accelerator

	closed bool
	sync.RWMutex
}

type Option func(*Context)

// WithWorkers sets the number of goroutines used by parallel kernels. Values lower than 1 select runtime.NumCPU().
func WithWorkers(workers int) Option {
	return func(c *Context) {
		c.workers = workers
	}
}

// WithAccelerator binds an accelerator to the context. Its Init is called by NewContext.
func WithAccelerator(accelerator Accelerator) Option {
	return func(c *Context) {
		c.accelerator = accelerator
	}
}

// NewContext builds a context. If the accelerator fails to initialize the
// returned error wraps ErrResourceInit and no context is returned.
func NewContext(opts ...Option) (*Context, error) {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.NumCPU()
	}

	if c.accelerator != nil {
		if err := c.accelerator.Init(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResourceInit, c.accelerator.Name(), err)
		}
		glog.V(1).Infof("compute: accelerator %s initialized", c.accelerator.Name())
	}
	return c, nil
}

// NewContextOrCPU behaves as NewContext but falls back to a CPU only context
// when the accelerator cannot be initialized.
func NewContextOrCPU(opts ...Option) *Context {
	c, err := NewContext(opts...)
	if err == nil {
		return c
	}
	glog.Warningf("%v, continuing on CPU", err)

	c = &Context{}
	for _, opt := range opts {
		opt(c)
	}
	c.accelerator = nil
	if c.workers < 1 {
		c.workers = runtime.NumCPU()
	}
	return c
}

// Workers returns the degree of parallelism of the context
func (c *Context) Workers() int {
	if c == nil {
		return 1
	}
	return c.workers
}

// Accelerator returns the bound accelerator if it supports op
func (c *Context) Accelerator(op Op) (Accelerator, bool) {
	if c == nil {
		return nil, false
	}
	c.RLock()
	defer c.RUnlock()
	if c.closed || c.accelerator == nil || !c.accelerator.CanAccelerate(op) {
		return nil, false
	}
	return c.accelerator, true
}

// Close releases the accelerator. The context keeps working on the CPU afterwards.
func (c *Context) Close() error {
	if c == nil {
		return nil
	}
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.accelerator != nil {
		err = multierr.Append(err, c.accelerator.Close())
		c.accelerator = nil
	}
	return err
}

// number of chunks handed to each worker, to even out unbalanced ranges
const chunksPerWorker = 4

// ParallelFor splits [0, n) in contiguous ranges and calls fn on each of them,
// using at most c.Workers() goroutines. The first error cancels the remaining
// ranges and is returned. A cancelled ctx stops the loop with ctx.Err().
func ParallelFor(ctx context.Context, c *Context, n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	workers := c.Workers()
	chunks := workers * chunksPerWorker
	if chunks > n {
		chunks = n
	}
	size := (n + chunks - 1) / chunks

	if workers == 1 {
		for lo := 0; lo < n; lo += size {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(lo, min(lo+size, n)); err != nil {
				return err
			}
		}
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		lo, hi := lo, min(lo+size, n)
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return fn(lo, hi)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
