// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"

	"github.com/samber/oops"
)

// Runner serializes mutations of locally owned entities onto a single
// goroutine, standing in for the platform's main tick thread. Bridge
// callbacks marshal onto the runner before touching local state, so
// local mutations are totally ordered within one process.
type Runner struct {
	tasks chan func()
	done  chan struct{}
}

// NewRunner creates a runner. Call Start before Do.
func NewRunner() *Runner {
	return &Runner{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Start begins draining tasks. Runs until Stop.
func (r *Runner) Start() {
	go func() {
		defer close(r.done)
		for task := range r.tasks {
			task()
		}
	}()
}

// Stop drains remaining tasks and stops the loop.
func (r *Runner) Stop() {
	close(r.tasks)
	<-r.done
}

// Do runs fn on the runner goroutine and waits for its result.
func (r *Runner) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)

	task := func() { result <- fn() }
	select {
	case r.tasks <- task:
	case <-ctx.Done():
		return oops.With("operation", "enqueue").Wrap(ctx.Err())
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return oops.With("operation", "await").Wrap(ctx.Err())
	}
}
