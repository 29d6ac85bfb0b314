package domain

// Outcome is the result of one remote attempt: either a value or a
// failure with the HTTP status that caused it.
type Outcome[T any] struct {
	value    T
	status   int
	err      error
	ok       bool
	attempts int
}

// Success wraps a successful value.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// Failure wraps a failed attempt. A zero status means no response was received.
func Failure[T any](status int, err error) Outcome[T] {
	if err == nil {
		err = &RemoteError{Status: status, Message: "failed"}
	}
	return Outcome[T]{status: status, err: err}
}

// FailureFrom builds a failure from an error, taking the status from its chain.
func FailureFrom[T any](err error) Outcome[T] {
	return Failure[T](StatusOf(err), err)
}

// OK reports whether the outcome is a success.
func (o Outcome[T]) OK() bool { return o.ok }

// Value returns the success payload, or the zero value on failure.
func (o Outcome[T]) Value() T { return o.value }

// Status returns the failure status. It is 0 on success.
func (o Outcome[T]) Status() int { return o.status }

// Err returns the failure cause, or nil on success.
func (o Outcome[T]) Err() error { return o.err }

// Attempts returns how many tries produced this outcome.
func (o Outcome[T]) Attempts() int { return o.attempts }

// WithAttempts returns a copy recording the number of tries.
func (o Outcome[T]) WithAttempts(n int) Outcome[T] {
	o.attempts = n
	return o
}
