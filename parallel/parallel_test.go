package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/orchid"
)

const unit = 40 * time.Millisecond

// sleeper sleeps unit per item and echoes the batch back.
func sleeper(_ context.Context, batch []int) ([]int, error) {
	for range batch {
		time.Sleep(unit)
	}
	return batch, nil
}

func mustParallelize[T, R any](t *testing.T, opts Options, fn func(context.Context, []T) (R, error)) func(context.Context, []T) ([]R, error) {
	t.Helper()
	p, err := Parallelize(opts, fn)
	if err != nil {
		t.Fatalf("Parallelize: %v", err)
	}
	return p
}

func timed(t *testing.T, f func() error) time.Duration {
	t.Helper()
	start := time.Now()
	if err := f(); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	return time.Since(start)
}

func TestSpeedUp(t *testing.T) {
	ctx := context.Background()
	items := []int{1, 1, 1, 1, 1, 1}

	cases := []struct {
		name    string
		opts    Options
		batches int
		lo, hi  time.Duration
	}{
		{"one per item", Options{Parallelism: 6}, 6, unit, 3 * unit},
		{"two workers", Options{Parallelism: 2}, 2, 3 * unit, 5 * unit},
		{"one thread", Options{Parallelism: 1, Prefer: Threads}, 1, 6 * unit, 9 * unit},
		{"six threads", Options{Parallelism: 6, Prefer: Threads}, 6, unit, 3 * unit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParallelize(t, tc.opts, sleeper)
			var out [][]int
			elapsed := timed(t, func() (err error) {
				out, err = p(ctx, items)
				return err
			})
			if elapsed < tc.lo || elapsed > tc.hi {
				t.Fatalf("took %v, want within [%v, %v]", elapsed, tc.lo, tc.hi)
			}
			if len(out) != tc.batches {
				t.Fatalf("got %d batch results want %d", len(out), tc.batches)
			}
		})
	}
}

func TestResultsInBatchOrderNotCompletionOrder(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var finished []int

	// earlier batches sleep longer, so they complete last
	p := mustParallelize(t, Options{Parallelism: 4}, func(_ context.Context, batch []int) (string, error) {
		time.Sleep(time.Duration(10-batch[0]) * 5 * time.Millisecond)
		mu.Lock()
		finished = append(finished, batch[0])
		mu.Unlock()
		return fmt.Sprint(batch), nil
	})
	out, err := p(ctx, seq(8))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"[0 1]", "[2 3]", "[4 5]", "[6 7]"}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v want %v", out, want)
		}
	}
	if finished[0] != 6 {
		t.Fatalf("expected the last batch to finish first, finish order %v", finished)
	}
}

type batchError struct{ first int }

func (e *batchError) Error() string { return fmt.Sprintf("batch starting at %d failed", e.first) }

func TestFirstFailurePropagates(t *testing.T) {
	ctx := context.Background()
	var siblingsCancelled atomic.Int64
	p := mustParallelize(t, Options{Parallelism: 3}, func(ctx context.Context, batch []int) ([]int, error) {
		if batch[0] == 2 {
			return nil, &batchError{first: batch[0]}
		}
		select {
		case <-ctx.Done():
			siblingsCancelled.Add(1)
		case <-time.After(time.Second):
		}
		return batch, nil
	})

	out, err := p(ctx, seq(6))
	var be *batchError
	if !errors.As(err, &be) || be.first != 2 {
		t.Fatalf("expected *batchError from batch 2, got %v", err)
	}
	if out != nil {
		t.Fatalf("partial results must be discarded, got %v", out)
	}
	if siblingsCancelled.Load() != 2 {
		t.Fatalf("siblings observing cancellation = %d want 2", siblingsCancelled.Load())
	}
}

func TestPanicBecomesError(t *testing.T) {
	p := mustParallelize(t, Options{Parallelism: 2}, func(_ context.Context, batch []int) (int, error) {
		if batch[0] == 0 {
			panic("bad batch")
		}
		return len(batch), nil
	})
	_, err := p(context.Background(), seq(4))
	var pe *orchid.PanicError
	if !errors.As(err, &pe) || pe.Value != "bad batch" {
		t.Fatalf("expected PanicError, got %v", err)
	}
}

func TestKwReachesEveryBatch(t *testing.T) {
	type scale struct{ By int }
	p, err := ParallelizeKw(Options{Parallelism: 3}, func(_ context.Context, batch []int, kw scale) ([]int, error) {
		out := make([]int, len(batch))
		for i, x := range batch {
			out[i] = x * kw.By
		}
		return out, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := p(context.Background(), seq(7), scale{By: 10})
	if err != nil {
		t.Fatal(err)
	}
	flat := Flatten(out)
	for i, v := range flat {
		if v != i*10 {
			t.Fatalf("flat = %v", flat)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	var calls int
	p := mustParallelize(t, Options{Parallelism: 4}, func(_ context.Context, batch []int) (int, error) {
		calls++
		return 0, nil
	})
	out, err := p(context.Background(), nil)
	if err != nil || len(out) != 0 || calls != 0 {
		t.Fatalf("out=%v err=%v calls=%d", out, err, calls)
	}
}

func TestSequentialEngine(t *testing.T) {
	var order []int
	p := mustParallelize(t, Options{Parallelism: 3, Engine: Sequential{}}, func(_ context.Context, batch []int) (int, error) {
		order = append(order, batch[0])
		if batch[0] == 2 {
			return 0, errors.New("stop")
		}
		return batch[0], nil
	})
	if _, err := p(context.Background(), seq(6)); err == nil || err.Error() != "stop" {
		t.Fatalf("expected stop error, got %v", err)
	}
	if len(order) != 2 || order[0] != 0 || order[1] != 2 {
		t.Fatalf("sequential engine ran %v", order)
	}
}

func TestInvalidOptions(t *testing.T) {
	fn := func(context.Context, []int) (int, error) { return 0, nil }
	if _, err := Parallelize(Options{}, fn); !errors.Is(err, ErrInvalidParallelism) {
		t.Fatalf("expected ErrInvalidParallelism, got %v", err)
	}
	if _, err := Parallelize[int, int](Options{Parallelism: 1}, nil); !errors.Is(err, ErrNilFunc) {
		t.Fatalf("expected ErrNilFunc, got %v", err)
	}
}

func TestParsePrefer(t *testing.T) {
	for in, want := range map[string]Prefer{"processes": Goroutines, "Threads": Threads, "": Goroutines} {
		got, err := ParsePrefer(in)
		if err != nil || got != want {
			t.Fatalf("ParsePrefer(%q) = %v,%v", in, got, err)
		}
	}
	if _, err := ParsePrefer("fibers"); err == nil {
		t.Fatalf("expected error")
	}
}
