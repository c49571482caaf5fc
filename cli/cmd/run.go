package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bricklab/sceneflow/cli/config"
	"github.com/bricklab/sceneflow/journal"
	"github.com/bricklab/sceneflow/log"
	"github.com/bricklab/sceneflow/pipeline"
	"github.com/bricklab/sceneflow/retry"
)

// RunCommand returns the run command: execute the configured pipeline.
func RunCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to pipeline config file",
			Value:   "sceneflow.yaml",
		},
		&cli.DurationFlag{
			Name:  "base-timeout",
			Usage: "Per-attempt base timeout (overrides config)",
			Value: retry.DefaultBaseTimeout,
		},
		&cli.IntFlag{
			Name:  "attempts",
			Usage: "Retry attempt budget per stage (overrides config)",
			Value: retry.DefaultMaxAttempts,
		},
		&cli.StringFlag{
			Name:  "journal",
			Usage: "Journal file for run history (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "no-journal",
			Usage: "Skip writing the run to the journal",
		},
		&cli.BoolFlag{
			Name:  "skip-preflight",
			Usage: "Skip the host reachability check before stage 1",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress the per-stage report",
		},
	}
	flags = append(flags, connectionFlags()...)

	return &cli.Command{
		Name:   "run",
		Usage:  "Run the generation pipeline against the execution server",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}
	if len(cfg.Stages) == 0 {
		return cli.Exit(fmt.Sprintf("no stages defined in %s", c.String("config")), exitInvalidInput)
	}

	// CLI flags override config values.
	if !c.IsSet("host") && cfg.Host != "" {
		_ = c.Set("host", cfg.Host)
	}
	if !c.IsSet("port") && cfg.Port != 0 {
		_ = c.Set("port", fmt.Sprintf("%d", cfg.Port))
	}
	debug := c.Bool("debug") || cfg.Debug

	logger := log.New(debug)
	execClient := buildClient(c, logger)

	policy := retry.Policy{
		MaxAttempts: intOr(c, "attempts", cfg.MaxAttempts),
		BaseTimeout: durationOr(c, "base-timeout", cfg.BaseTimeout.Duration),
		Debug:       debug,
	}

	orchestrator, err := pipeline.New(&pipeline.Config{
		Stages: stagesFromConfig(cfg.Stages),
		Runner: execClient,
		Pinger: execClient,
		Policy: policy,
		Logger: logger,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid pipeline: %v", err), exitInvalidInput)
	}

	ctx, stop := signalContext()
	defer stop()

	if !c.Bool("skip-preflight") {
		if err := orchestrator.Preflight(ctx); err != nil {
			return cli.Exit(err.Error(), exitHostUnreachable)
		}
	}

	startedAt := time.Now()
	result := orchestrator.Run(ctx)

	journalPath := c.String("journal")
	if journalPath == "" {
		journalPath = cfg.Journal
	}
	if journalPath != "" && !c.Bool("no-journal") {
		if err := journal.Append(journalPath, recordFromResult(result, startedAt)); err != nil {
			logger.Warn("journal append failed", map[string]any{"error": err.Error()})
		}
	}

	if !c.Bool("quiet") {
		printPipelineResult(result)
	}

	if result.Status != pipeline.StatusSucceeded {
		return cli.Exit("", exitFailure)
	}
	return cli.Exit("", exitSuccess)
}

// stagesFromConfig converts config stage entries into pipeline stages.
func stagesFromConfig(entries []config.StageConfig) []pipeline.Stage {
	stages := make([]pipeline.Stage, 0, len(entries))
	for _, entry := range entries {
		stages = append(stages, pipeline.Stage{
			Name:      entry.Name,
			Label:     entry.Label,
			Script:    entry.Script,
			Code:      entry.Code,
			Attempts:  entry.Attempts,
			Timeout:   entry.Timeout.Duration,
			Retryable: entry.Retryable,
		})
	}
	return stages
}

// recordFromResult converts a pipeline result into its journal form.
func recordFromResult(result *pipeline.Result, startedAt time.Time) journal.RunRecord {
	stages := make([]journal.StageRecord, 0, len(result.Stages))
	for _, s := range result.Stages {
		stages = append(stages, journal.StageRecord{
			Name:     s.Name,
			Status:   string(s.Status),
			Attempts: s.Attempts,
			Kind:     s.Kind,
			Error:    s.Error,
		})
	}
	return journal.RunRecord{
		RunID:      result.RunID,
		StartedAt:  startedAt,
		DurationMS: result.Duration.Milliseconds(),
		Status:     string(result.Status),
		Halted:     result.Halted,
		Stages:     stages,
	}
}

func printPipelineResult(result *pipeline.Result) {
	fmt.Printf("\n=== Pipeline Result ===\n")
	fmt.Printf("Run ID:    %s\n", result.RunID)
	fmt.Printf("Status:    %s\n", result.Status)
	fmt.Printf("Duration:  %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Attempts:  %d\n", result.AttemptsUsed())
	if result.Halted != "" {
		fmt.Printf("Halted at: %s\n", result.Halted)
	}

	fmt.Printf("\n=== Stages ===\n")
	for i, s := range result.Stages {
		fmt.Printf("%d. %-24s %-9s attempts=%d\n", i+1, s.Name, s.Status, s.Attempts)
		if s.Error != "" {
			fmt.Printf("   %s: %s\n", s.Kind, s.Error)
		}
	}

	if result.Halted != "" {
		fmt.Fprintf(os.Stderr, "\nPipeline halted at stage %q; re-run from that stage after fixing the cause.\n", result.Halted)
	}
}
