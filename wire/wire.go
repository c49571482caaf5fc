// Package wire implements the JSON message codec spoken by the remote
// execution host.
//
// Each connection carries exactly one request and one response. Requests
// are newline-terminated JSON objects; JSON string escaping guarantees
// that arbitrary script payloads (including embedded newlines, quotes and
// braces) round-trip byte-for-byte. Responses are single JSON objects
// that may arrive split across multiple reads.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bricklab/sceneflow/types"
)

// MaxResponseSize bounds a single response message (4 MiB). Larger
// responses are rejected rather than buffered without limit.
const MaxResponseSize = 4 * 1024 * 1024

// DecodeErrorKind classifies response decoding errors.
type DecodeErrorKind int

const (
	// DecodeErrorMalformed indicates bytes that are not valid JSON.
	DecodeErrorMalformed DecodeErrorKind = iota
	// DecodeErrorTruncated indicates the stream ended mid-message.
	DecodeErrorTruncated
	// DecodeErrorStatus indicates a well-formed message with a missing or
	// unrecognized status field.
	DecodeErrorStatus
)

// DecodeError represents a response decoding error. Bytes that fail to
// decode are never reported as a default success.
type DecodeError struct {
	Kind DecodeErrorKind
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// request is the wire shape of a command submission.
type request struct {
	Type   string        `json:"type"`
	Params requestParams `json:"params"`
}

type requestParams struct {
	Code  string `json:"code,omitempty"`
	Path  string `json:"path,omitempty"`
	Label string `json:"label,omitempty"`
}

// EncodeCommand serializes a command as a newline-terminated JSON message.
func EncodeCommand(cmd types.Command) ([]byte, error) {
	req := request{Type: string(cmd.Kind)}
	switch cmd.Kind {
	case types.KindExecuteCode:
		req.Params.Code = cmd.Payload
	case types.KindExecuteFile:
		req.Params.Path = cmd.Payload
	default:
		return nil, fmt.Errorf("cannot encode command kind %q", cmd.Kind)
	}
	req.Params.Label = cmd.Label

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeCommand parses an encoded request back into a command.
// Used by test hosts; the production host implements its own parser.
func DecodeCommand(data []byte) (types.Command, error) {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return types.Command{}, &DecodeError{
			Kind: DecodeErrorMalformed,
			Msg:  "failed to decode request",
			Err:  err,
		}
	}

	cmd := types.Command{Kind: types.CommandKind(req.Type), Label: req.Params.Label}
	switch cmd.Kind {
	case types.KindExecuteCode:
		cmd.Payload = req.Params.Code
	case types.KindExecuteFile:
		cmd.Payload = req.Params.Path
	default:
		return types.Command{}, &DecodeError{
			Kind: DecodeErrorStatus,
			Msg:  fmt.Sprintf("unknown request type %q", req.Type),
		}
	}
	return cmd, nil
}

// DecodeResponse parses one complete response message.
func DecodeResponse(data []byte) (*types.Response, error) {
	var resp types.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{
			Kind: DecodeErrorMalformed,
			Msg:  "failed to decode response",
			Err:  err,
		}
	}
	return validated(&resp)
}

// ReadResponse decodes a single response from a stream, reading across
// packet boundaries until one complete JSON value has arrived. The caller
// bounds the read with a connection deadline; deadline and transport
// errors from the reader pass through unwrapped so the caller can
// classify them.
func ReadResponse(r io.Reader) (*types.Response, error) {
	dec := json.NewDecoder(io.LimitReader(r, MaxResponseSize))

	var resp types.Response
	if err := dec.Decode(&resp); err != nil {
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil, &DecodeError{
				Kind: DecodeErrorTruncated,
				Msg:  "connection closed before a complete response",
				Err:  err,
			}
		default:
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				return nil, &DecodeError{
					Kind: DecodeErrorMalformed,
					Msg:  "failed to decode response",
					Err:  err,
				}
			}
			// Deadline or socket error surfaced through the reader.
			return nil, err
		}
	}
	return validated(&resp)
}

// validated rejects responses with a missing or unknown status.
func validated(resp *types.Response) (*types.Response, error) {
	switch resp.Status {
	case types.StatusSuccess, types.StatusError:
		return resp, nil
	default:
		return nil, &DecodeError{
			Kind: DecodeErrorStatus,
			Msg:  fmt.Sprintf("response has unrecognized status %q", resp.Status),
		}
	}
}
