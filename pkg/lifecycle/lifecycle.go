// Package lifecycle coordinates startup and shutdown of long-lived subsystems.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive the deadline.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// Coordinator runs startup hooks concurrently, tracks readiness, and on
// shutdown cancels its context and waits for shutdown hooks to drain.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	starting sync.WaitGroup
	stopping sync.WaitGroup
	ready    atomic.Bool
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context { return c.ctx }

// OnStartup runs fn in its own goroutine. WaitForStartup waits for it.
func (c *Coordinator) OnStartup(fn func()) { c.starting.Go(fn) }

// OnShutdown runs fn in its own goroutine immediately. fn should block on
// Context().Done() before releasing its resources.
func (c *Coordinator) OnShutdown(fn func()) { c.stopping.Go(fn) }

// Ready reports whether every startup hook has returned.
func (c *Coordinator) Ready() bool { return c.ready.Load() }

// WaitForStartup blocks until the startup hooks return, then marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	drained := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(drained)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-drained:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, timeout)
	}
}
