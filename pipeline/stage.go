package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bricklab/sceneflow/types"
)

// Stage is one named pipeline step wrapping exactly one command and its
// retry parameters. Stages are defined once at construction time and are
// immutable; no stage carries state between runs.
type Stage struct {
	// Name identifies the stage in results and logs.
	Name string
	// Label is the human-readable description attached to the command.
	// Defaults to Name.
	Label string
	// Script is a path to a local script file whose content becomes the
	// command payload. Mutually exclusive with Code.
	Script string
	// Code is an inline script payload. Mutually exclusive with Script.
	Code string
	// Attempts overrides the pipeline's retry budget for this stage.
	Attempts int
	// Timeout overrides the pipeline's base timeout for this stage.
	Timeout time.Duration
	// Retryable marks the stage's command safe to re-run after an
	// application-level error.
	Retryable bool
}

// Validate checks the stage definition.
func (s Stage) Validate() error {
	if s.Name == "" {
		return errors.New("stage has no name")
	}
	if s.Script == "" && s.Code == "" {
		return fmt.Errorf("stage %q has neither script nor code", s.Name)
	}
	if s.Script != "" && s.Code != "" {
		return fmt.Errorf("stage %q has both script and code", s.Name)
	}
	return nil
}

// command builds the stage's command. Script files are read fresh on
// every pipeline run so each execution is a stateless pass.
func (s Stage) command() (types.Command, error) {
	label := s.Label
	if label == "" {
		label = s.Name
	}

	payload := s.Code
	if s.Script != "" {
		data, err := os.ReadFile(s.Script)
		if err != nil {
			return types.Command{}, fmt.Errorf("read script %q: %w", filepath.Clean(s.Script), err)
		}
		payload = string(data)
	}

	cmd := types.ExecuteCode(payload, label)
	cmd.Retryable = s.Retryable
	return cmd, nil
}
