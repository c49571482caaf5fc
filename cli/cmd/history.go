package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bricklab/sceneflow/journal"
)

// HistoryCommand returns the history command: list journaled runs.
// Read-only; it never contacts the execution server.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past pipeline runs from the journal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "journal",
				Usage:    "Journal file to read",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Show only the most recent N runs (0 = all)",
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	records, err := journal.ReadFile(c.String("journal"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("read journal: %v", err), exitInvalidInput)
	}
	if len(records) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	if limit := c.Int("limit"); limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	for _, record := range records {
		printRunRecord(record)
	}
	return nil
}

func printRunRecord(record journal.RunRecord) {
	fmt.Printf("run %s  %s  %s  (%s)\n",
		record.RunID,
		record.StartedAt.Format(time.RFC3339),
		record.Status,
		time.Duration(record.DurationMS)*time.Millisecond,
	)
	for i, stage := range record.Stages {
		fmt.Printf("  %d. %-24s %-9s attempts=%d\n", i+1, stage.Name, stage.Status, stage.Attempts)
		if stage.Error != "" {
			fmt.Printf("     %s: %s\n", stage.Kind, stage.Error)
		}
	}
}
