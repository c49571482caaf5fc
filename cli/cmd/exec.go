package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/bricklab/sceneflow/client"
	"github.com/bricklab/sceneflow/log"
	"github.com/bricklab/sceneflow/retry"
	"github.com/bricklab/sceneflow/types"
)

// ExecCommand returns the exec command: run one script outside any pipeline.
func ExecCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "script",
			Aliases: []string{"s"},
			Usage:   "Path to a local script file to execute",
		},
		&cli.StringFlag{
			Name:  "code",
			Usage: "Inline script payload to execute",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Human-readable label for logs",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-attempt timeout",
			Value: retry.DefaultBaseTimeout,
		},
		&cli.IntFlag{
			Name:  "attempts",
			Usage: "Retry attempt budget",
			Value: retry.DefaultMaxAttempts,
		},
		&cli.BoolFlag{
			Name:  "retryable",
			Usage: "Retry even on application-level errors (idempotent scripts only)",
		},
	}
	flags = append(flags, connectionFlags()...)

	return &cli.Command{
		Name:   "exec",
		Usage:  "Execute a single script on the execution server",
		Flags:  flags,
		Action: execAction,
	}
}

func execAction(c *cli.Context) error {
	cmd, err := buildExecCommand(c)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	logger := log.New(c.Bool("debug"))
	execClient := buildClient(c, logger)

	policy := retry.Policy{
		MaxAttempts: c.Int("attempts"),
		BaseTimeout: c.Duration("timeout"),
		Debug:       c.Bool("debug"),
	}

	ctx, stop := signalContext()
	defer stop()

	sugar := logger.Sugar()
	outcome := policy.Run(ctx, execClient, cmd)
	if !outcome.Success() {
		sugar.Errorf("%s failed after %d attempt(s): %v", cmd.Describe(), outcome.Attempts, outcome.Err)
		return cli.Exit("", failureExitCode(outcome.Err))
	}

	sugar.Infof("%s succeeded after %d attempt(s)", cmd.Describe(), outcome.Attempts)
	if text := outcome.Response.ResultText(); text != "" {
		fmt.Println(text)
	}
	return nil
}

// failureExitCode maps a command failure to its exit code. Transport
// failures mean the execution server is unreachable and exit 2, matching
// the preflight path; everything else exits 1.
func failureExitCode(err error) int {
	if errors.Is(err, client.ErrTransport) {
		return exitHostUnreachable
	}
	return exitFailure
}

// buildExecCommand assembles the command from --script or --code.
// Script files are read client-side and submitted as inline payloads,
// matching how pipeline stages are delivered.
func buildExecCommand(c *cli.Context) (types.Command, error) {
	script := c.String("script")
	code := c.String("code")

	switch {
	case script == "" && code == "":
		return types.Command{}, fmt.Errorf("one of --script or --code is required")
	case script != "" && code != "":
		return types.Command{}, fmt.Errorf("--script and --code are mutually exclusive")
	}

	label := c.String("label")
	if script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return types.Command{}, fmt.Errorf("read script %q: %w", script, err)
		}
		code = string(data)
		if label == "" {
			label = filepath.Base(script)
		}
	}

	cmd := types.ExecuteCode(code, label)
	cmd.Retryable = c.Bool("retryable")
	return cmd, nil
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
