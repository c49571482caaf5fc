// Package client implements the TCP execution client for the remote host.
//
// This file defines sentinel errors and an error wrapper classifying a
// command round trip. The sentinels enable callers to use errors.Is for
// typed assertions rather than string matching; the retry policy decides
// retryability from them.
package client

import (
	"errors"
	"fmt"
	"net"

	"github.com/bricklab/sceneflow/wire"
)

// Sentinel errors for round-trip failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrTransport indicates a socket-level failure (refused, reset,
	// unreachable).
	ErrTransport = errors.New("transport failure")

	// ErrTimeout indicates the deadline expired awaiting bytes.
	ErrTimeout = errors.New("deadline exceeded")

	// ErrDecode indicates bytes were received but did not form a
	// well-formed response.
	ErrDecode = errors.New("malformed response")

	// ErrApplication indicates a well-formed response with an error status.
	// Not retried unless the command is marked retryable.
	ErrApplication = errors.New("host reported error")
)

// ExecError wraps an underlying failure with round-trip classification.
// It preserves the original error in the chain for inspection via errors.As.
type ExecError struct {
	// Kind is the sentinel error for classification (e.g. ErrTimeout).
	Kind error
	// Op is the round-trip phase that failed: dial, send, receive.
	Op string
	// Err is the underlying error.
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *ExecError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Retryable reports whether the failure may clear on a re-attempt.
// Transport, timeout and decode failures are retryable: the host may have
// been restarting, slow, or mid-write. Application errors and command
// validation failures are not.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrDecode)
}

// classify determines the appropriate sentinel for an underlying error.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	var decodeErr *wire.DecodeError
	if errors.As(err, &decodeErr) {
		return ErrDecode
	}
	return ErrTransport
}
