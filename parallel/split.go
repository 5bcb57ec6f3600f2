package parallel

// Split cuts items into contiguous batches of ceil(len(items)/n) elements; the
// last batch may be shorter. That yields at most n batches (fewer when the
// sizes round up, e.g. 6 items over 4 workers gives 3 batches of 2). n < 1 is
// treated as 1; empty input yields no batches.
//
// Batches alias items. Their capacity is clipped, so appending inside a
// worker never writes into the neighbouring batch.
func Split[T any](items []T, n int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := len(items) / n
	if len(items)%n != 0 {
		size++
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		out = append(out, items[i:end:end])
	}
	return out
}

// Flatten concatenates per-batch results back into one slice, in order.
func Flatten[T any](batches [][]T) []T {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	out := make([]T, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
