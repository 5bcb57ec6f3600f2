package parallel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/orchid"
)

var (
	ErrInvalidParallelism = errors.New("parallel: parallelism must be > 0")
	ErrNilFunc            = errors.New("parallel: nil function")
)

// Options configure a parallelized function.
type Options struct {
	Parallelism int    // number of batches / concurrent workers; required
	Prefer      Prefer // Goroutines (default) or Threads
	Engine      Engine // nil => ErrGroup{}
	Logger      orchid.Logger
	Name        string // used in log fields only
}

// Parallelize wraps fn so that one call runs fn once per batch of the input.
// The returned slice holds one result per batch, in batch order.
func Parallelize[T, R any](opts Options, fn func(context.Context, []T) (R, error)) (func(context.Context, []T) ([]R, error), error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	inner, err := ParallelizeKw(opts, func(ctx context.Context, batch []T, _ struct{}) (R, error) {
		return fn(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, items []T) ([]R, error) {
		return inner(ctx, items, struct{}{})
	}, nil
}

// ParallelizeKw is Parallelize for functions that also take a shared
// parameter value; every batch receives the same kw.
func ParallelizeKw[T, K, R any](opts Options, fn func(context.Context, []T, K) (R, error)) (func(context.Context, []T, K) ([]R, error), error) {
	if opts.Parallelism <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParallelism, opts.Parallelism)
	}
	if fn == nil {
		return nil, ErrNilFunc
	}
	engine := orchid.Coalesce[Engine](opts.Engine, ErrGroup{})
	log := orchid.Coalesce[orchid.Logger](opts.Logger, orchid.NopLogger{})
	n := opts.Parallelism

	return func(ctx context.Context, items []T, kw K) ([]R, error) {
		batches := Split(items, n)
		results := make([]R, len(batches))
		tasks := make([]Task, len(batches))
		for i, batch := range batches {
			tasks[i] = func(ctx context.Context) error {
				r, err := fn(ctx, batch, kw)
				if err != nil {
					return err
				}
				results[i] = r // each task owns its slot
				return nil
			}
		}

		start := time.Now()
		if err := engine.Run(ctx, n, opts.Prefer, tasks); err != nil {
			log.Debug("parallel call failed", orchid.Fields{
				"func": opts.Name, "items": len(items), "batches": len(batches), "err": err,
			})
			return nil, err
		}
		log.Debug("parallel call finished", orchid.Fields{
			"func": opts.Name, "items": len(items), "batches": len(batches),
			"prefer": opts.Prefer.String(), "elapsed": time.Since(start),
		})
		return results, nil
	}, nil
}
