// Package parallel fans a slice out to workers in contiguous batches.
//
// A function whose first parameter is a slice is wrapped so that a call
// splits the slice into at most Parallelism batches of ceil(len/Parallelism)
// items, runs the function once per batch concurrently, and returns the
// per-batch results in batch order (not completion order):
//
//	square, _ := parallel.Parallelize(parallel.Options{Parallelism: 4},
//	    func(ctx context.Context, batch []int) ([]int, error) {
//	        out := make([]int, len(batch))
//	        for i, x := range batch {
//	            out[i] = x * x
//	        }
//	        return out, nil
//	    })
//	perBatch, err := square(ctx, []int{1, 2, 3, 4, 5})
//	flat := parallel.Flatten(perBatch) // [1 4 9 16 25]
//
// The first failing batch fails the call; results of the other batches are
// discarded. Execution is delegated to an Engine (errgroup by default).
package parallel
