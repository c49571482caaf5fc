package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bricklab/sceneflow/client"
	"github.com/bricklab/sceneflow/types"
)

// fakeRunner scripts per-attempt behavior and records call counts.
type fakeRunner struct {
	calls int
	fn    func(call int) (*types.Response, error)
}

func (f *fakeRunner) Execute(_ context.Context, _ types.Command, _ time.Duration) (*types.Response, error) {
	f.calls++
	return f.fn(f.calls)
}

// fastPolicy keeps inter-attempt pauses negligible for tests.
func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseTimeout: time.Second,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	}
}

func transportErr() error {
	return &client.ExecError{Kind: client.ErrTransport, Op: "dial", Err: errors.New("connection refused")}
}

func successResp() *types.Response {
	return &types.Response{Status: types.StatusSuccess}
}

func errorResp(msg string) *types.Response {
	return &types.Response{Status: types.StatusError, Message: msg}
}

func TestRun_SuccessFirstAttempt(t *testing.T) {
	runner := &fakeRunner{fn: func(int) (*types.Response, error) {
		return successResp(), nil
	}}

	outcome := fastPolicy(3).Run(context.Background(), runner, types.ExecuteCode("x", "ok"))

	if !outcome.Success() {
		t.Fatalf("outcome = %+v, want success", outcome)
	}
	if outcome.Attempts != 1 || runner.calls != 1 {
		t.Errorf("attempts = %d (calls %d), want exactly 1", outcome.Attempts, runner.calls)
	}
}

func TestRun_RetryBound(t *testing.T) {
	runner := &fakeRunner{fn: func(int) (*types.Response, error) {
		return nil, transportErr()
	}}

	outcome := fastPolicy(4).Run(context.Background(), runner, types.ExecuteCode("x", "never up"))

	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if runner.calls != 4 {
		t.Errorf("calls = %d, want exactly the attempt budget (4)", runner.calls)
	}
	if outcome.Attempts != 4 {
		t.Errorf("attempts = %d, want 4", outcome.Attempts)
	}
	if !errors.Is(outcome.Err, client.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", outcome.Err)
	}
}

func TestRun_StopsOnFirstSuccess(t *testing.T) {
	runner := &fakeRunner{fn: func(call int) (*types.Response, error) {
		if call < 3 {
			return nil, transportErr()
		}
		return successResp(), nil
	}}

	outcome := fastPolicy(5).Run(context.Background(), runner, types.ExecuteCode("x", "flaky"))

	if !outcome.Success() {
		t.Fatalf("outcome = %+v, want success", outcome)
	}
	if outcome.Attempts != 3 || runner.calls != 3 {
		t.Errorf("attempts = %d (calls %d), want 3", outcome.Attempts, runner.calls)
	}
}

func TestRun_ApplicationErrorNotRetried(t *testing.T) {
	runner := &fakeRunner{fn: func(int) (*types.Response, error) {
		return errorResp("scene is locked"), nil
	}}

	outcome := fastPolicy(3).Run(context.Background(), runner, types.ExecuteCode("x", "mutating"))

	if runner.calls != 1 {
		t.Errorf("calls = %d, application errors must not be retried by default", runner.calls)
	}
	if !errors.Is(outcome.Err, client.ErrApplication) {
		t.Errorf("err = %v, want ErrApplication", outcome.Err)
	}
	if outcome.Response == nil || outcome.Response.Message != "scene is locked" {
		t.Error("failed outcome lost the host response")
	}
}

func TestRun_ApplicationErrorRetriedWhenOptedIn(t *testing.T) {
	runner := &fakeRunner{fn: func(int) (*types.Response, error) {
		return errorResp("still busy"), nil
	}}

	cmd := types.ExecuteCode("x", "idempotent")
	cmd.Retryable = true
	outcome := fastPolicy(3).Run(context.Background(), runner, cmd)

	if runner.calls != 3 {
		t.Errorf("calls = %d, want full budget for retryable command", runner.calls)
	}
	if outcome.Success() {
		t.Fatal("expected failure")
	}
}

func TestRun_InvalidCommandNoNetworkCall(t *testing.T) {
	runner := &fakeRunner{fn: func(int) (*types.Response, error) {
		t.Fatal("runner must not be called for an invalid command")
		return nil, nil
	}}

	outcome := fastPolicy(3).Run(context.Background(), runner, types.Command{Kind: "bogus"})

	if outcome.Success() {
		t.Fatal("invalid command reported success")
	}
	if outcome.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", outcome.Attempts)
	}
}

func TestRun_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := &fakeRunner{fn: func(int) (*types.Response, error) {
		cancel()
		return nil, transportErr()
	}}

	policy := fastPolicy(3)
	policy.BaseBackoff = 10 * time.Second
	policy.MaxBackoff = 10 * time.Second
	outcome := policy.Run(ctx, runner, types.ExecuteCode("x", "canceled"))

	if runner.calls != 1 {
		t.Errorf("calls = %d, want 1 (canceled before retry)", runner.calls)
	}
	if !errors.Is(outcome.Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", outcome.Err)
	}
}

func TestTimeout_GrowsAndCaps(t *testing.T) {
	policy := Policy{BaseTimeout: 10 * time.Second, MaxTimeout: 60 * time.Second}

	want := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second, 60 * time.Second, 60 * time.Second}
	for i, expected := range want {
		if got := policy.Timeout(i + 1); got != expected {
			t.Errorf("Timeout(%d) = %v, want %v", i+1, got, expected)
		}
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	policy := Policy{BaseBackoff: 500 * time.Millisecond, MaxBackoff: 2 * time.Second}

	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 2 * time.Second}
	for i, expected := range want {
		if got := policy.Backoff(i + 2); got != expected {
			t.Errorf("Backoff(%d) = %v, want %v", i+2, got, expected)
		}
	}
}

func TestDebugMode_Monotonicity(t *testing.T) {
	base := Policy{MaxAttempts: 3, BaseTimeout: 10 * time.Second}
	debug := base
	debug.Debug = true

	if debug.Attempts() > base.Attempts() {
		t.Errorf("debug attempts %d > normal %d", debug.Attempts(), base.Attempts())
	}
	if debug.Timeout(1) > base.Timeout(1) {
		t.Errorf("debug timeout %v > normal %v", debug.Timeout(1), base.Timeout(1))
	}
	if debug.Attempts() < 1 {
		t.Errorf("debug attempts = %d, want at least 1", debug.Attempts())
	}
}

func TestDebugMode_SingleAttemptFloor(t *testing.T) {
	policy := Policy{MaxAttempts: 1, Debug: true}
	if got := policy.Attempts(); got != 1 {
		t.Errorf("Attempts() = %d, want floor of 1", got)
	}
}

func TestDefaults(t *testing.T) {
	var policy Policy
	if policy.Attempts() != DefaultMaxAttempts {
		t.Errorf("Attempts() = %d, want %d", policy.Attempts(), DefaultMaxAttempts)
	}
	if policy.Timeout(1) != DefaultBaseTimeout {
		t.Errorf("Timeout(1) = %v, want %v", policy.Timeout(1), DefaultBaseTimeout)
	}
	if policy.Backoff(2) != DefaultBaseBackoff {
		t.Errorf("Backoff(2) = %v, want %v", policy.Backoff(2), DefaultBaseBackoff)
	}
}
