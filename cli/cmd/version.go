package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/bricklab/sceneflow/types"
)

// VersionCommand returns the version command.
// It must not contact the execution server.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(*cli.Context) error {
			fmt.Printf("sceneflow %s (commit: %s)\n", types.Version, commit)
			return nil
		},
	}
}
