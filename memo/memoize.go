package memo

import "context"

// Memoize wraps fn so repeated calls with an equal argument reuse the result
// stored in c. An unhashable argument (e.g. a slice) makes every call go
// straight to fn.
func Memoize[A, V any](c Cache[V], fn func(context.Context, A) (V, error)) func(context.Context, A) (V, error) {
	return func(ctx context.Context, a A) (V, error) {
		compute := func(ctx context.Context) (V, error) { return fn(ctx, a) }
		key, ok := keyOf1(c.Namespace(), a)
		if !ok {
			return c.Bypass(ctx, compute)
		}
		return c.GetOrCompute(ctx, key, compute)
	}
}

// Memoize2 is Memoize for two positional arguments.
func Memoize2[A, B, V any](c Cache[V], fn func(context.Context, A, B) (V, error)) func(context.Context, A, B) (V, error) {
	return func(ctx context.Context, a A, b B) (V, error) {
		compute := func(ctx context.Context) (V, error) { return fn(ctx, a, b) }
		key, ok := KeyOf(c.Namespace(), Args{Positional: []any{a, b}})
		if !ok {
			return c.Bypass(ctx, compute)
		}
		return c.GetOrCompute(ctx, key, compute)
	}
}

// MemoizeArgs wraps a function taking a free-form argument list, for callers
// that need named arguments as part of the key.
func MemoizeArgs[V any](c Cache[V], fn func(context.Context, Args) (V, error)) func(context.Context, Args) (V, error) {
	return func(ctx context.Context, args Args) (V, error) {
		compute := func(ctx context.Context) (V, error) { return fn(ctx, args) }
		key, ok := KeyOf(c.Namespace(), args)
		if !ok {
			return c.Bypass(ctx, compute)
		}
		return c.GetOrCompute(ctx, key, compute)
	}
}
