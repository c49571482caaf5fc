package client

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bricklab/sceneflow/iox"
	"github.com/bricklab/sceneflow/log"
	"github.com/bricklab/sceneflow/types"
	"github.com/bricklab/sceneflow/wire"
)

// Defaults for host connection parameters.
const (
	// DefaultHost is the host address of the local execution server.
	DefaultHost = "localhost"
	// DefaultPort is the port the execution server listens on.
	DefaultPort = 9876
	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 5 * time.Second
)

// Config configures the execution client.
type Config struct {
	// Host is the execution server address.
	Host string
	// Port is the execution server port.
	Port int
	// DialTimeout bounds connection establishment (default 5s).
	DialTimeout time.Duration
}

// Runner abstracts command execution for the retry policy and tests.
type Runner interface {
	Execute(ctx context.Context, cmd types.Command, timeout time.Duration) (*types.Response, error)
}

// Client executes commands against the remote host over TCP.
//
// Each Execute call owns exactly one connection for the duration of one
// round trip; no connection is shared or pooled. The design assumes at
// most one in-flight command at a time.
type Client struct {
	config Config
	logger *log.Logger
}

// New creates an execution client. A nil logger disables logging.
func New(cfg Config, logger *log.Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		config: cfg,
		logger: logger.WithEndpoint(cfg.Host, cfg.Port),
	}
}

// Addr returns the host endpoint as host:port.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Execute performs one command round trip: open a connection, send the
// encoded command, receive the response within timeout, decode, and close
// the connection on every exit path.
//
// Failure classification:
//   - dial refused/unreachable: ExecError with Kind=ErrTransport
//   - deadline expired awaiting bytes: Kind=ErrTimeout
//   - received bytes that fail to decode: Kind=ErrDecode
//   - decoded response with status=error: returned as-is with nil error;
//     the retry policy decides whether to re-run it
func (c *Client) Execute(ctx context.Context, cmd types.Command, timeout time.Duration) (*types.Response, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	msg, err := wire.EncodeCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	// Absolute deadline for the whole round trip.
	deadline := time.Now().Add(timeout)

	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Addr())
	if err != nil {
		return nil, &ExecError{Kind: classify(err), Op: "dial", Err: err}
	}
	defer iox.DiscardClose(conn)

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &ExecError{Kind: ErrTransport, Op: "dial", Err: err}
	}

	c.logger.Debug("sending command", map[string]any{
		"kind":  string(cmd.Kind),
		"label": cmd.Describe(),
		"bytes": len(msg),
	})

	if _, err := conn.Write(msg); err != nil {
		return nil, &ExecError{Kind: classify(err), Op: "send", Err: err}
	}

	resp, err := wire.ReadResponse(conn)
	if err != nil {
		return nil, &ExecError{Kind: classify(err), Op: "receive", Err: err}
	}

	c.logger.Debug("received response", map[string]any{
		"label":  cmd.Describe(),
		"status": string(resp.Status),
	})
	return resp, nil
}

// Ping reports whether the host accepts connections at all. Callers
// should invoke it before starting a pipeline to fail fast with a clear
// message instead of spending the per-stage retry budget on an absent host.
func (c *Client) Ping(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Addr())
	if err != nil {
		return &ExecError{Kind: ErrTransport, Op: "dial", Err: err}
	}
	return conn.Close()
}

// ExecuteScriptFile reads a local script file and submits its content as
// an execute_code command. When label is empty the file name is used.
func (c *Client) ExecuteScriptFile(ctx context.Context, path, label string, timeout time.Duration) (*types.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %q: %w", path, err)
	}
	if label == "" {
		label = filepath.Base(path)
	}
	return c.Execute(ctx, types.ExecuteCode(string(data), label), timeout)
}

// Verify Client implements Runner.
var _ Runner = (*Client)(nil)
