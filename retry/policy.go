// Package retry implements bounded re-attempt execution of a single command.
//
// The policy wraps one execution client call with a fixed attempt budget,
// per-attempt timeouts that grow multiplicatively, and exponential backoff
// between attempts, so total wall-clock cost is bounded and predictable.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/bricklab/sceneflow/client"
	"github.com/bricklab/sceneflow/types"
)

// Policy defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseTimeout = 10 * time.Second
	DefaultMaxTimeout  = 60 * time.Second
	DefaultBaseBackoff = 500 * time.Millisecond
	DefaultMaxBackoff  = 8 * time.Second
)

// Status is the verdict of a policy run.
type Status string

const (
	// StatusSuccess indicates some attempt decoded a success response.
	StatusSuccess Status = "success"
	// StatusFailed indicates the attempt budget was exhausted or a
	// non-retryable failure occurred.
	StatusFailed Status = "failed"
)

// Outcome is the result of running one command through the policy.
type Outcome struct {
	// Status is the verdict.
	Status Status
	// Attempts is the number of execution client calls actually made.
	Attempts int
	// Response is the decoded host response, when one was received.
	Response *types.Response
	// Err is the last error observed when Status is failed.
	Err error
}

// Success reports whether the run succeeded.
func (o Outcome) Success() bool {
	return o.Status == StatusSuccess
}

// Policy bounds retries of a single command execution.
// The zero value uses the package defaults.
type Policy struct {
	// MaxAttempts is the attempt budget (default 3).
	MaxAttempts int
	// BaseTimeout is the deadline for attempt 1 (default 10s). Attempt n
	// waits BaseTimeout doubled n-1 times, capped at MaxTimeout.
	BaseTimeout time.Duration
	// MaxTimeout caps the per-attempt deadline (default 60s).
	MaxTimeout time.Duration
	// BaseBackoff is the pause before attempt 2 (default 500ms). The pause
	// doubles on each further attempt, capped at MaxBackoff.
	BaseBackoff time.Duration
	// MaxBackoff caps the inter-attempt pause (default 8s).
	MaxBackoff time.Duration
	// Debug halves the attempt budget and the base timeout for fast local
	// iteration. The algorithm is identical in both modes; only the knobs
	// scale.
	Debug bool
}

// Attempts returns the attempt budget after debug scaling. Never below 1.
func (p Policy) Attempts() int {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	if p.Debug {
		attempts /= 2
	}
	if attempts < 1 {
		attempts = 1
	}
	return attempts
}

// Timeout returns the deadline for attempt n (1-indexed).
func (p Policy) Timeout(attempt int) time.Duration {
	base := p.BaseTimeout
	if base <= 0 {
		base = DefaultBaseTimeout
	}
	if p.Debug {
		base /= 2
	}
	maxTimeout := p.MaxTimeout
	if maxTimeout <= 0 {
		maxTimeout = DefaultMaxTimeout
	}
	return scaled(base, maxTimeout, attempt-1)
}

// Backoff returns the pause taken before attempt n (n >= 2).
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseBackoff
	if base <= 0 {
		base = DefaultBaseBackoff
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}
	return scaled(base, maxBackoff, attempt-2)
}

// scaled doubles base n times, capping at limit and guarding overflow.
func scaled(base, limit time.Duration, n int) time.Duration {
	d := base
	for i := 0; i < n; i++ {
		d *= 2
		if d >= limit || d < 0 {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}

// Run executes cmd through runner until success or the attempt budget is
// exhausted.
//
// Stop conditions:
//   - success on any attempt: returned immediately, no further attempts
//   - non-retryable failure (invalid command, application error on a
//     command not marked retryable): returned immediately
//   - budget exhausted with only retryable failures: failed with the last
//     error observed
func (p Policy) Run(ctx context.Context, runner client.Runner, cmd types.Command) Outcome {
	// Reject malformed commands before any network call.
	if err := cmd.Validate(); err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("invalid command: %w", err)}
	}

	attempts := p.Attempts()
	var lastErr error
	var lastResp *types.Response

	for i := 1; i <= attempts; i++ {
		if i > 1 {
			select {
			case <-ctx.Done():
				return Outcome{Status: StatusFailed, Attempts: i - 1, Response: lastResp, Err: ctx.Err()}
			case <-time.After(p.Backoff(i)):
			}
		}

		resp, err := runner.Execute(ctx, cmd, p.Timeout(i))
		if err != nil {
			lastErr = err
			if !client.Retryable(err) {
				return Outcome{Status: StatusFailed, Attempts: i, Err: err}
			}
			continue
		}

		if resp.OK() {
			return Outcome{Status: StatusSuccess, Attempts: i, Response: resp}
		}

		// Application-level failure. Re-running a script with side effects
		// is only safe when the caller marked the command retryable.
		lastResp = resp
		lastErr = fmt.Errorf("%w: %s", client.ErrApplication, resp.Message)
		if !cmd.Retryable {
			return Outcome{Status: StatusFailed, Attempts: i, Response: resp, Err: lastErr}
		}
	}

	return Outcome{Status: StatusFailed, Attempts: attempts, Response: lastResp, Err: lastErr}
}
