package memory

import (
	"errors"
	"fmt"

	"github.com/five82/mnemo/internal/metrics"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindUnreachable means no response was received at all.
	KindUnreachable Kind = iota + 1
	// KindRejected means the backend answered with a non-2xx status.
	KindRejected
	// KindMalformed means a 2xx body could not be decoded, or the request
	// body could not be encoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return metrics.OutcomeUnreachable
	case KindRejected:
		return metrics.OutcomeRejected
	case KindMalformed:
		return metrics.OutcomeMalformed
	default:
		return "unknown"
	}
}

const (
	unreachableMessage = "backend unreachable"
	unknownMessage     = "Unknown error"
)

// RequestError is the failure half of an Outcome. Message is always human
// readable and is what Error returns.
type RequestError struct {
	Kind    Kind
	Status  int // HTTP status for KindRejected, zero otherwise
	Message string
	Err     error // underlying transport or decode error, if any
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func unreachable(err error) *RequestError {
	return &RequestError{Kind: KindUnreachable, Message: unreachableMessage, Err: err}
}

func rejected(status int, message string) *RequestError {
	if message == "" {
		message = unknownMessage
	}
	return &RequestError{Kind: KindRejected, Status: status, Message: message}
}

func malformed(context string, err error) *RequestError {
	return &RequestError{Kind: KindMalformed, Message: fmt.Sprintf("%s: %v", context, err), Err: err}
}

// IsUnreachable reports whether err is a request that never got a response.
func IsUnreachable(err error) bool {
	return kindOf(err) == KindUnreachable
}

// IsRejected reports whether err is a non-2xx backend response.
func IsRejected(err error) bool {
	return kindOf(err) == KindRejected
}

// IsMalformed reports whether err is an undecodable response.
func IsMalformed(err error) bool {
	return kindOf(err) == KindMalformed
}

func kindOf(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return 0
}

// Outcome is the result of one API call: either Success(value) or
// Failure(*RequestError). The zero value is a failure with no detail and
// should not be constructed directly.
type Outcome[T any] struct {
	value T
	err   *RequestError
}

// Success wraps a decoded response.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Failure wraps a request error. A nil err is replaced by a generic
// rejection so the outcome never loses its message.
func Failure[T any](err *RequestError) Outcome[T] {
	if err == nil {
		err = rejected(0, unknownMessage)
	}
	return Outcome[T]{err: err}
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool {
	return o.err == nil
}

// Value returns the decoded response; the zero value on failure.
func (o Outcome[T]) Value() T {
	return o.value
}

// Err returns the failure, or nil on success.
func (o Outcome[T]) Err() *RequestError {
	return o.err
}

// Message returns the failure message, or "" on success.
func (o Outcome[T]) Message() string {
	if o.err == nil {
		return ""
	}
	return o.err.Message
}

// Unpack converts the outcome to the (value, error) pair.
func (o Outcome[T]) Unpack() (T, error) {
	if o.err != nil {
		var zero T
		return zero, o.err
	}
	return o.value, nil
}

// Notice returns user-facing copy for a failed call. A backend that could not
// be reached gets different wording from one that refused the request.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return err.Error()
	}
	switch reqErr.Kind {
	case KindUnreachable:
		return "Backend not reachable. Is it running at the configured URL?"
	case KindMalformed:
		return "Backend sent an unexpected response: " + reqErr.Message
	default:
		return "Request failed: " + reqErr.Message
	}
}
