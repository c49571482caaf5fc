package pipeline

import "time"

// Status is the pipeline state machine position.
type Status string

const (
	// StatusPending indicates no stage has started.
	StatusPending Status = "pending"
	// StatusRunning indicates a stage is executing.
	StatusRunning Status = "running"
	// StatusSucceeded indicates every stage succeeded. Terminal.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates a stage exhausted its retries. Terminal.
	StatusFailed Status = "failed"
)

// StageStatus is the outcome of one stage.
type StageStatus string

const (
	// StageSucceeded indicates the stage's command completed.
	StageSucceeded StageStatus = "succeeded"
	// StageFailed indicates the stage exhausted its retry budget.
	StageFailed StageStatus = "failed"
)

// StageResult reports one stage's outcome. A failed pipeline contains
// exactly one entry per stage that ran; stages after the failure never
// appear.
type StageResult struct {
	// Name is the stage name.
	Name string
	// Status is succeeded or failed.
	Status StageStatus
	// Attempts is the number of execution client calls consumed.
	Attempts int
	// Kind is the error taxonomy kind when the stage failed:
	// transport, timeout, decode, application, or invalid.
	Kind string
	// Error is the last error message when the stage failed.
	Error string
}

// Result is the finalized report of one pipeline run.
type Result struct {
	// RunID is the pipeline run identity.
	RunID string
	// Status is the terminal pipeline status.
	Status Status
	// Stages lists per-stage outcomes in execution order.
	Stages []StageResult
	// Halted names the stage that stopped the pipeline. Empty on success.
	// A caller can resume by re-running from this stage.
	Halted string
	// Duration is the total wall-clock time of the run.
	Duration time.Duration
}

// AttemptsUsed returns the total execution client calls across all stages.
func (r *Result) AttemptsUsed() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Attempts
	}
	return total
}
