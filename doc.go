// Package orchid is a small set of generic function wrappers that each add one
// cross-cutting behavior to a plain Go function without touching its body.
//
// Packages:
//   - memo: memoization behind an explicit, bounded Cache[V] (no eviction by default).
//   - parallel: split a slice into contiguous batches and fan them out to workers,
//     collecting per-batch results in submission order.
//   - timer: report how long a call took, to a Logger or stdout.
//   - catch: intercept errors of one exact dynamic type and dispatch callbacks.
//   - hermes: post "calling/finished/failed" progress to a chat webhook.
//
// The root package holds what they share: the Logger abstraction and PanicError.
//
// Typical composition:
//
//	c, _ := memo.New[int](memo.Options[int]{Namespace: "fib", MaxSize: 1024})
//	fib := memo.Memoize(c, slowFib)
//	timed := timer.Wrap(timer.Options{Name: "fib"}, fib)
//	v, err := timed(ctx, 40)
package orchid
