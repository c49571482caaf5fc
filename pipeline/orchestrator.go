// Package pipeline orchestrates an ordered list of script stages against
// the remote execution host.
//
// Stages run strictly sequentially: later stages depend on scene state
// produced by earlier ones, so ordering is a correctness requirement. The
// orchestrator is fail-fast: the first stage that exhausts its retry
// budget halts the run, and no later stage's command is ever sent.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bricklab/sceneflow/client"
	"github.com/bricklab/sceneflow/log"
	"github.com/bricklab/sceneflow/retry"
)

// Pinger reports host reachability before the first stage runs.
// client.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config configures a pipeline orchestrator.
type Config struct {
	// Stages is the ordered stage list (required, non-empty).
	Stages []Stage
	// Runner executes each stage's command (required).
	Runner client.Runner
	// Pinger backs Preflight. Optional; when nil Preflight is a no-op.
	Pinger Pinger
	// Policy supplies the retry defaults. Stage Attempts/Timeout override
	// the corresponding knobs per stage.
	Policy retry.Policy
	// Logger receives run progress. A nil logger disables logging.
	Logger *log.Logger
}

// Orchestrator runs a fixed ordered stage list through the retry policy.
type Orchestrator struct {
	config *Config
	logger *log.Logger
	runID  string
	state  Status
}

// New creates an orchestrator. Returns an error if the stage list is
// empty, a stage definition is invalid, or no runner is configured.
func New(config *Config) (*Orchestrator, error) {
	if config.Runner == nil {
		return nil, errors.New("pipeline requires a runner")
	}
	if len(config.Stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}

	seen := make(map[string]bool, len(config.Stages))
	for _, stage := range config.Stages {
		if err := stage.Validate(); err != nil {
			return nil, fmt.Errorf("invalid stage: %w", err)
		}
		if seen[stage.Name] {
			return nil, fmt.Errorf("duplicate stage name %q", stage.Name)
		}
		seen[stage.Name] = true
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Nop()
	}
	runID := uuid.NewString()

	return &Orchestrator{
		config: config,
		logger: logger.WithRun(runID),
		runID:  runID,
		state:  StatusPending,
	}, nil
}

// RunID returns the run identity assigned at construction.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// State returns the current state machine position.
func (o *Orchestrator) State() Status {
	return o.state
}

// Preflight verifies the host is reachable before spending any stage's
// retry budget. Returns a descriptive error when the host is absent.
func (o *Orchestrator) Preflight(ctx context.Context) error {
	if o.config.Pinger == nil {
		return nil
	}
	if err := o.config.Pinger.Ping(ctx); err != nil {
		return fmt.Errorf("host not reachable, is the execution server running? %w", err)
	}
	return nil
}

// Run executes the stages in order, halting at the first stage whose
// retry policy run fails. The returned result names the halting stage and
// the attempts consumed, so a caller can resume from that stage.
func (o *Orchestrator) Run(ctx context.Context) *Result {
	start := time.Now()
	o.state = StatusRunning

	result := &Result{
		RunID:  o.runID,
		Stages: make([]StageResult, 0, len(o.config.Stages)),
	}

	for i, stage := range o.config.Stages {
		o.logger.Info("stage starting", map[string]any{
			"stage": stage.Name,
			"index": i + 1,
			"total": len(o.config.Stages),
		})

		stageResult := o.runStage(ctx, stage)
		result.Stages = append(result.Stages, stageResult)

		if stageResult.Status == StageFailed {
			o.logger.Error("stage failed, halting pipeline", map[string]any{
				"stage":    stage.Name,
				"kind":     stageResult.Kind,
				"attempts": stageResult.Attempts,
				"error":    stageResult.Error,
			})
			o.state = StatusFailed
			result.Status = StatusFailed
			result.Halted = stage.Name
			result.Duration = time.Since(start)
			return result
		}

		o.logger.Info("stage succeeded", map[string]any{
			"stage":    stage.Name,
			"attempts": stageResult.Attempts,
		})
	}

	o.state = StatusSucceeded
	result.Status = StatusSucceeded
	result.Duration = time.Since(start)
	return result
}

// runStage runs one stage's command through the retry policy.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage) StageResult {
	cmd, err := stage.command()
	if err != nil {
		// Payload could not be assembled; no network call was made.
		return StageResult{
			Name:   stage.Name,
			Status: StageFailed,
			Kind:   "invalid",
			Error:  err.Error(),
		}
	}

	outcome := o.policyFor(stage).Run(ctx, o.config.Runner, cmd)
	if outcome.Success() {
		return StageResult{
			Name:     stage.Name,
			Status:   StageSucceeded,
			Attempts: outcome.Attempts,
		}
	}

	return StageResult{
		Name:     stage.Name,
		Status:   StageFailed,
		Attempts: outcome.Attempts,
		Kind:     kindOf(outcome.Err),
		Error:    outcome.Err.Error(),
	}
}

// policyFor applies per-stage overrides to the pipeline's retry defaults.
func (o *Orchestrator) policyFor(stage Stage) retry.Policy {
	policy := o.config.Policy
	if stage.Attempts > 0 {
		policy.MaxAttempts = stage.Attempts
	}
	if stage.Timeout > 0 {
		policy.BaseTimeout = stage.Timeout
	}
	return policy
}

// kindOf maps a stage failure to its error taxonomy kind.
func kindOf(err error) string {
	switch {
	case errors.Is(err, client.ErrTimeout):
		return "timeout"
	case errors.Is(err, client.ErrTransport):
		return "transport"
	case errors.Is(err, client.ErrDecode):
		return "decode"
	case errors.Is(err, client.ErrApplication):
		return "application"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "invalid"
	}
}
