// Package dispatch runs batches of independent preprocessing tasks on a worker pool.
//
// Each task must write only to state owned by its submitter; the dispatcher provides no synchronization
// other than the Sync barrier.
package dispatch

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Dispatcher struct {
	g errgroup.Group
}

// New returns a dispatcher running at most workers tasks in parallel. workers <= 0 means GOMAXPROCS.
func New(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d := &Dispatcher{}
	d.g.SetLimit(workers)
	return d
}

// Queue submits fn for execution. It may block while all workers are busy.
func (d *Dispatcher) Queue(fn func()) {
	d.g.Go(func() error {
		fn()
		return nil
	})
}

// Sync waits for all queued tasks to finish. It is the single per-frame barrier; buffers written by queued
// tasks must not be read before Sync returns.
func (d *Dispatcher) Sync() {
	// Tasks don't return errors, so Wait's result is always nil.
	_ = d.g.Wait()
}
