package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/bricklab/sceneflow/log"
)

// PingCommand returns the ping command: check host reachability.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check whether the execution server is reachable",
		Flags:  connectionFlags(),
		Action: pingAction,
	}
}

func pingAction(c *cli.Context) error {
	logger := log.New(c.Bool("debug"))
	execClient := buildClient(c, logger)

	ctx, stop := signalContext()
	defer stop()

	if err := execClient.Ping(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("execution server not reachable at %s: %v", execClient.Addr(), err), exitHostUnreachable)
	}

	logger.Sugar().Infof("execution server is reachable at %s", execClient.Addr())
	return nil
}
