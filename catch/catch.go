// Package catch intercepts errors of one exact dynamic type (or one exact
// sentinel value), runs callbacks for them and substitutes a fallback result.
//
// Matching is deliberately exact: a handler for *fs.PathError does not match
// an error that merely wraps one, and a handler for a type does not match
// other types implementing the same interface. Unmatched errors pass through
// unchanged.
package catch

import (
	"context"
	"fmt"
	"reflect"
)

// Call is what a callback receives.
type Call struct {
	Err     error // the intercepted error; nil unless Options.Intercept
	Args    []any
	Keyword map[string]any
}

type Callback func(Call)

// Options configure one handler. R is the wrapped function's result type.
type Options[R any] struct {
	Callbacks []Callback // run in order
	Args      []any
	Keyword   map[string]any
	Intercept bool // pass the error to callbacks as Call.Err
	Return    R    // returned, with a nil error, once the error is handled
}

type Handler[R any] struct {
	typ    reflect.Type // exact dynamic type, or nil for value handlers
	target error        // exact value, for OnValue handlers
	opts   Options[R]
}

// On handles errors whose dynamic type is exactly E. E must be a concrete
// type (e.g. *MyError); On panics for interface types, which no dynamic type
// can equal.
func On[E error, R any](opts Options[R]) Handler[R] {
	t := reflect.TypeFor[E]()
	if t.Kind() == reflect.Interface {
		panic(fmt.Sprintf("catch: On needs a concrete error type, got interface %s", t))
	}
	return Handler[R]{typ: t, opts: opts}
}

// OnValue handles errors equal (==) to target, e.g. io.EOF. Use it for
// sentinels: every errors.New value shares one dynamic type.
func OnValue[R any](target error, opts Options[R]) Handler[R] {
	if target == nil {
		panic("catch: OnValue with nil target")
	}
	return Handler[R]{target: target, opts: opts}
}

// Matches reports whether h handles err.
func (h Handler[R]) Matches(err error) bool {
	if err == nil {
		return false
	}
	if h.target != nil {
		return sameValue(err, h.target)
	}
	return reflect.TypeOf(err) == h.typ
}

func (h Handler[R]) handle(err error) R {
	call := Call{Args: h.opts.Args, Keyword: h.opts.Keyword}
	if h.opts.Intercept {
		call.Err = err
	}
	for _, cb := range h.opts.Callbacks {
		cb(call)
	}
	return h.opts.Return
}

// sameValue compares with == but never panics on uncomparable error types.
func sameValue(a, b error) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// Handle runs the first handler matching err. ok=false means no handler
// matched and err should be returned as is.
func Handle[R any](err error, handlers ...Handler[R]) (r R, ok bool) {
	for _, h := range handlers {
		if h.Matches(err) {
			return h.handle(err), true
		}
	}
	return r, false
}

// Wrap returns fn with handlers applied to its error.
func Wrap[A, R any](fn func(context.Context, A) (R, error), handlers ...Handler[R]) func(context.Context, A) (R, error) {
	return func(ctx context.Context, a A) (R, error) {
		r, err := fn(ctx, a)
		if err == nil {
			return r, nil
		}
		if hr, ok := Handle(err, handlers...); ok {
			return hr, nil
		}
		return r, err
	}
}

// Do calls fn once with handlers applied.
func Do[R any](fn func() (R, error), handlers ...Handler[R]) (R, error) {
	r, err := fn()
	if err == nil {
		return r, nil
	}
	if hr, ok := Handle(err, handlers...); ok {
		return hr, nil
	}
	return r, err
}
