// Package cmd provides CLI commands for the sceneflow binary.
package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bricklab/sceneflow/client"
	"github.com/bricklab/sceneflow/log"
)

// Exit codes.
const (
	exitSuccess         = 0
	exitFailure         = 1
	exitHostUnreachable = 2
	exitInvalidInput    = 3
)

// connectionFlags are shared by every command that contacts the host.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Execution server address",
			Value: client.DefaultHost,
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Execution server port",
			Value: client.DefaultPort,
		},
		&cli.DurationFlag{
			Name:  "dial-timeout",
			Usage: "Connection establishment timeout",
			Value: client.DefaultDialTimeout,
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Debug mode: verbose logs, halved attempts and timeouts",
		},
	}
}

// buildClient creates an execution client from connection flags.
func buildClient(c *cli.Context, logger *log.Logger) *client.Client {
	return client.New(client.Config{
		Host:        c.String("host"),
		Port:        c.Int("port"),
		DialTimeout: c.Duration("dial-timeout"),
	}, logger)
}

// durationOr returns the flag value when set, otherwise fallback.
func durationOr(c *cli.Context, name string, fallback time.Duration) time.Duration {
	if c.IsSet(name) || fallback <= 0 {
		return c.Duration(name)
	}
	return fallback
}

// intOr returns the flag value when set, otherwise fallback.
func intOr(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) || fallback <= 0 {
		return c.Int(name)
	}
	return fallback
}
