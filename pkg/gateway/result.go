package gateway

// Result is either a decoded payload or a session-expired marker. The
// payload is only reachable through Value, so an expired session can never
// be mistaken for data.
type Result[T any] struct {
	value   T
	expired bool
}

// Ok wraps a payload.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// SessionExpired marks a call whose session could not be renewed.
func SessionExpired[T any]() Result[T] {
	return Result[T]{expired: true}
}

// Expired reports whether the session was torn down during the call.
func (r Result[T]) Expired() bool { return r.expired }

// Value returns the payload; ok is false when the session expired.
func (r Result[T]) Value() (v T, ok bool) {
	if r.expired {
		var zero T
		return zero, false
	}
	return r.value, true
}
