package parallel

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/orchid"
)

// Prefer selects what a worker runs on.
type Prefer int

const (
	// Goroutines schedules workers across GOMAXPROCS; the default and the
	// counterpart of process-based CPU parallelism.
	Goroutines Prefer = iota
	// Threads pins every worker to its own OS thread for its whole run
	// (runtime.LockOSThread), for batches that block in cgo or syscalls.
	Threads
)

func (p Prefer) String() string {
	if p == Threads {
		return "threads"
	}
	return "goroutines"
}

// ParsePrefer accepts "goroutines", "processes" (alias) and "threads".
func ParsePrefer(s string) (Prefer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "goroutines", "processes":
		return Goroutines, nil
	case "threads":
		return Threads, nil
	}
	return Goroutines, fmt.Errorf("parallel: unknown prefer %q", s)
}

// Task is one unit of work handed to an Engine.
type Task func(ctx context.Context) error

// Engine runs tasks with at most limit in flight and returns once all
// started tasks have returned. It reports the first task error; the order
// among concurrent failures is the engine's business.
type Engine interface {
	Run(ctx context.Context, limit int, prefer Prefer, tasks []Task) error
}

// ErrGroup is the default Engine, built on golang.org/x/sync/errgroup.
// The first failure cancels the context passed to the other tasks; tasks
// that ignore it run to completion. Panics are returned as
// *orchid.PanicError.
type ErrGroup struct{}

func (ErrGroup) Run(ctx context.Context, limit int, prefer Prefer, tasks []Task) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, task := range tasks {
		g.Go(func() (err error) {
			if prefer == Threads {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
			}
			defer orchid.Recover(&err)
			return task(gctx)
		})
	}
	return g.Wait()
}

// Sequential runs tasks one after another on the calling goroutine and stops
// at the first error. Handy for debugging and deterministic tests.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, _ int, _ Prefer, tasks []Task) error {
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runRecovered(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func runRecovered(ctx context.Context, task Task) (err error) {
	defer orchid.Recover(&err)
	return task(ctx)
}
