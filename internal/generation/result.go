package generation

import "errors"

// ErrEmptyResponse reports a call that succeeded but returned no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Result is the outcome of a generation call.
//
// Value is always usable: it holds either the model output or the fixed
// fallback for the operation. Err is set when the fallback was substituted.
type Result[T any] struct {
	Value T
	Err   error
}

// Degraded reports whether Value is a fallback.
func (r Result[T]) Degraded() bool {
	return r.Err != nil
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fallback[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}
