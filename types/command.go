// Package types defines core domain types for the sceneflow client.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// CommandKind identifies the remote operation requested from the host.
type CommandKind string

const (
	// KindExecuteCode asks the host to execute an inline script payload.
	KindExecuteCode CommandKind = "execute_code"
	// KindExecuteFile asks the host to execute a script file by host-side path.
	KindExecuteFile CommandKind = "execute_file"
)

// Command is one request to execute a script payload on the remote host.
// Commands are immutable once constructed and consumed exactly once per
// round trip.
type Command struct {
	// Kind selects the remote operation.
	Kind CommandKind
	// Payload is the script text (execute_code) or the host-side file path
	// (execute_file). The client attaches no semantics to its content.
	Payload string
	// Label is a human-readable description used in logs and reports.
	Label string
	// Retryable marks the command as safe to re-run after an
	// application-level failure. Off by default: re-executing a
	// scene-mutating script is not generally safe.
	Retryable bool
}

// ExecuteCode builds a command carrying an inline script payload.
func ExecuteCode(code, label string) Command {
	return Command{Kind: KindExecuteCode, Payload: code, Label: label}
}

// ExecuteFile builds a command referencing a script file on the host.
func ExecuteFile(path, label string) Command {
	return Command{Kind: KindExecuteFile, Payload: path, Label: label}
}

// Validate checks the command before any network call.
// A validation failure is never retried.
func (c Command) Validate() error {
	switch c.Kind {
	case KindExecuteCode, KindExecuteFile:
	default:
		return fmt.Errorf("unknown command kind %q", c.Kind)
	}
	if c.Payload == "" {
		return errors.New("command payload is empty")
	}
	return nil
}

// Describe returns the label if set, falling back to the kind.
func (c Command) Describe() string {
	if c.Label != "" {
		return c.Label
	}
	return string(c.Kind)
}
