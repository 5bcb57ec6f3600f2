package orchid

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a panic recovered inside a wrapped call so it can travel
// back to the caller as an ordinary error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("orchid: recovered panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recover converts a panic into *PanicError stored in errp. Use as
// `defer orchid.Recover(&err)`.
func Recover(errp *error) {
	if r := recover(); r != nil {
		*errp = &PanicError{Value: r, Stack: debug.Stack()}
	}
}
