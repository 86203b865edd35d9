// Package task manages the lifecycle of the long-running goroutines inside
// go-moto: the UDP receive loops and the RPC polling loop.
package task

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-moto/logger"
)

// Func is a task body invoked repeatedly by Manager.Start.
// It should return true to keep running, or false to stop the goroutine.
type Func func() bool

// Manager starts, stops and waits for a group of goroutines.
//
// The Manager derives a context from its parent; Stop cancels it, signalling
// every running task to exit. Wait blocks until all tasks have terminated
// and then re-arms the Manager for another start/stop cycle.
type Manager struct {
	pctx   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
	mu     sync.RWMutex // protects ctx and cancel
}

// NewManager creates a Manager with the given parent context and logger.
func NewManager(ctx context.Context, l logger.Logger) *Manager {
	mgr := &Manager{pctx: ctx, logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the context tasks should observe for cancellation.
func (mgr *Manager) Context() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Stopped reports whether Stop has been called since the last Wait.
func (mgr *Manager) Stopped() bool {
	return mgr.Context().Err() != nil
}

// Start runs fn in a new goroutine until it returns false or the Manager is
// stopped. Panics in fn are recovered and logged, terminating the task.
func (mgr *Manager) Start(name string, fn Func) {
	mgr.logger.Debug("start task", "name", name)

	mgr.wg.Add(1)
	mgr.count.Add(1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				mgr.logger.Error("panic in task", "name", name, "panic", r)
			}
			mgr.count.Add(-1)
			mgr.logger.Debug("task terminated", "name", name, "task_count", mgr.Count())
			mgr.wg.Done()
		}()

		for {
			select {
			case <-mgr.Context().Done():
				return
			default:
				if !fn() {
					return
				}
			}
		}
	}()
}

// Stop signals all running tasks to terminate.
func (mgr *Manager) Stop() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.cancel != nil {
		mgr.cancel()
	}
}

// Wait blocks until every task has terminated, then recreates the context so
// the Manager can be reused.
func (mgr *Manager) Wait() {
	mgr.wg.Wait()

	mgr.mu.Lock()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.pctx)
	mgr.mu.Unlock()
}

// Count returns the number of currently running tasks.
func (mgr *Manager) Count() int {
	return int(mgr.count.Load())
}
