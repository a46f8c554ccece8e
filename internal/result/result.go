// Package result provides the success/failure envelope returned to API clients.
package result

import "github.com/iudanet/shortify/internal/apperr"

// Result carries either a typed payload or a list of human-readable errors.
type Result[T any] struct {
	Value   T        `json:"result"`
	Errors  []string `json:"errors,omitempty"`
	Success bool     `json:"success"`
}

// Ok wraps a successful payload.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Success: true}
}

// Fail builds a failed result with the given messages.
func Fail[T any](messages ...string) Result[T] {
	return Result[T]{Errors: messages}
}

// From converts the (value, error) pair returned by a service call.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](apperr.Messages(err)...)
	}
	return Ok(v)
}
